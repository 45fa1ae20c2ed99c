package telemetry

import (
	"math"
	"testing"
	"time"
)

func pointerToFloat64(v float64) *float64 {
	return &v
}

func TestNewReadingDropsUnusableValues(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	vals := Values{
		"V1_N_Voltage":       pointerToFloat64(230.2),
		"Frequency":          pointerToFloat64(49.98),
		"Total_Active_Power": nil,
		"L1_Current":         pointerToFloat64(math.NaN()),
		"L2_Current":         pointerToFloat64(math.Inf(1)),
		"L3_Current":         pointerToFloat64(math.Inf(-1)),
		"Not_A_Parameter":    pointerToFloat64(1.0),
	}

	reading, set := NewReading("meter_1", ts, vals)

	if set != 2 {
		t.Errorf("expected 2 fields set, got %d", set)
	}
	if reading.MeterID != "meter_1" {
		t.Errorf("expected meter_1, got %q", reading.MeterID)
	}
	if !reading.Timestamp.Equal(ts) {
		t.Errorf("expected timestamp %v, got %v", ts, reading.Timestamp)
	}
	if reading.V1NVoltage == nil || *reading.V1NVoltage != 230.2 {
		t.Errorf("expected V1NVoltage 230.2, got %v", reading.V1NVoltage)
	}
	if reading.Frequency == nil || *reading.Frequency != 49.98 {
		t.Errorf("expected Frequency 49.98, got %v", reading.Frequency)
	}
	for _, name := range []string{"Total_Active_Power", "L1_Current", "L2_Current", "L3_Current"} {
		if v := reading.Value(name); v != nil {
			t.Errorf("expected %s to be dropped, got %v", name, *v)
		}
	}
}

func TestNewReadingEmpty(t *testing.T) {
	_, set := NewReading("meter_1", time.Now(), Values{})
	if set != 0 {
		t.Errorf("expected no fields set, got %d", set)
	}
}

// Every parameter name must round-trip through NewReading and Value, proving
// the name-to-field map covers the full measurement schema.
func TestValueRoundTripsAllParameters(t *testing.T) {
	names := ParameterNames()
	if len(names) != 81 {
		t.Fatalf("expected 81 parameters, got %d", len(names))
	}

	vals := make(Values, len(names))
	for i, name := range names {
		vals[name] = pointerToFloat64(float64(i) + 0.5)
	}

	reading, set := NewReading("meter_1", time.Now(), vals)
	if set != len(names) {
		t.Fatalf("expected %d fields set, got %d", len(names), set)
	}

	for i, name := range names {
		v := reading.Value(name)
		if v == nil {
			t.Errorf("parameter %s did not round-trip", name)
			continue
		}
		if expected := float64(i) + 0.5; *v != expected {
			t.Errorf("parameter %s: expected %v, got %v", name, expected, *v)
		}
	}
}

func TestValueUnknownName(t *testing.T) {
	reading, _ := NewReading("meter_1", time.Now(), Values{"Frequency": pointerToFloat64(50)})
	if v := reading.Value("No_Such_Parameter"); v != nil {
		t.Errorf("expected nil for unknown name, got %v", *v)
	}
}
