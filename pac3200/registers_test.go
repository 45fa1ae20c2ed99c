package pac3200

import (
	"sort"
	"testing"

	"github.com/cepro/metermonitor/telemetry"
)

// The register map and the persisted reading schema must name exactly the same
// 81 parameters, otherwise polled values would be silently dropped on save.
func TestRegisterMapMatchesReadingSchema(t *testing.T) {
	registerNames := Parameters()
	if len(registerNames) != 81 {
		t.Fatalf("expected 81 registers, got %d", len(registerNames))
	}

	sorted := append([]string(nil), registerNames...)
	sort.Strings(sorted)

	schemaNames := telemetry.ParameterNames()
	if len(sorted) != len(schemaNames) {
		t.Fatalf("register map has %d names, reading schema has %d", len(sorted), len(schemaNames))
	}
	for i := range sorted {
		if sorted[i] != schemaNames[i] {
			t.Errorf("name mismatch at %d: register map %q, reading schema %q", i, sorted[i], schemaNames[i])
		}
	}
}

func TestRegisterAddressesUnique(t *testing.T) {
	seen := make(map[uint16]string, len(registers))
	for _, reg := range registers {
		if prev, ok := seen[reg.Addr]; ok {
			t.Errorf("address %d used by both %s and %s", reg.Addr, prev, reg.Name)
		}
		seen[reg.Addr] = reg.Name
	}
}

func TestRegisterAddresses(t *testing.T) {
	expected := map[string]uint16{
		"V1_N_Voltage":          1,
		"Frequency":             55,
		"Total_Active_Power":    65,
		"Total_Power_Factor":    69,
		"Maximum_Current_2":     89,
		"Minimum_Current_2":     159,
		"Total_Active_Energy":   801,
		"Total_Reactive_Energy": 805,
	}
	for name, addr := range expected {
		reg, ok := registersByAddr[addr]
		if !ok {
			t.Errorf("no register at address %d", addr)
			continue
		}
		if reg.Name != name {
			t.Errorf("address %d: expected %s, got %s", addr, name, reg.Name)
		}
	}
}
