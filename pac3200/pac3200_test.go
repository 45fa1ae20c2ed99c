package pac3200

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

// fakeSource scripts the behaviour of a meter session for testing.
type fakeSource struct {
	connectErr error
	values     map[uint16]float64
	readErrs   map[uint16]error
	closed     int
}

func (f *fakeSource) Connect() error { return f.connectErr }

func (f *fakeSource) Close() { f.closed++ }

func (f *fakeSource) ReadFloat32(addr uint16) (float64, error) {
	if err, ok := f.readErrs[addr]; ok {
		return 0, err
	}
	if v, ok := f.values[addr]; ok {
		return v, nil
	}
	return 0, errors.New("no such register")
}

func testConfig() Config {
	return Config{
		MeterID: "meter_1",
		Name:    "Test Meter",
		Host:    "localhost",
		Port:    502,
		UnitID:  1,
		Timeout: time.Second,
	}
}

func TestConnectFailure(t *testing.T) {
	source := &fakeSource{connectErr: errors.New("connection refused")}
	meter := NewMeter(testConfig(), source)

	if meter.Connect() {
		t.Error("expected Connect to fail")
	}
	if meter.Connected() {
		t.Error("expected meter to be disconnected")
	}
}

func TestConnectProbeFailure(t *testing.T) {
	// the session opens but the probe register is unreadable
	source := &fakeSource{readErrs: map[uint16]error{probeRegister: errors.New("timeout")}}
	meter := NewMeter(testConfig(), source)

	if meter.Connect() {
		t.Error("expected Connect to fail when the probe read fails")
	}
	if meter.Connected() {
		t.Error("expected meter to be disconnected after probe failure")
	}
	if source.closed < 2 {
		t.Errorf("expected the failed session to be closed, got %d closes", source.closed)
	}
}

func TestConnectSuccess(t *testing.T) {
	source := &fakeSource{values: map[uint16]float64{probeRegister: 230.1}}
	meter := NewMeter(testConfig(), source)

	if !meter.Connect() {
		t.Fatal("expected Connect to succeed")
	}
	if !meter.Connected() {
		t.Error("expected meter to report connected")
	}

	meter.Disconnect()
	if meter.Connected() {
		t.Error("expected meter to report disconnected")
	}
	meter.Disconnect() // safe to repeat
}

func TestReadRegister(t *testing.T) {
	source := &fakeSource{values: map[uint16]float64{
		probeRegister: 230.1,
		55:            49.97,
		87:            math.NaN(),
		99:            math.Inf(1),
	}}
	meter := NewMeter(testConfig(), source)

	// reads before connecting fail
	if _, ok := meter.ReadRegister(55); ok {
		t.Error("expected read to fail before Connect")
	}

	if !meter.Connect() {
		t.Fatal("expected Connect to succeed")
	}

	if v, ok := meter.ReadRegister(55); !ok || v != 49.97 {
		t.Errorf("expected 49.97, got %v (ok=%v)", v, ok)
	}
	if _, ok := meter.ReadRegister(87); ok {
		t.Error("expected NaN register to read as absent")
	}
	if _, ok := meter.ReadRegister(99); ok {
		t.Error("expected infinite register to read as absent")
	}
	if _, ok := meter.ReadRegister(999); ok {
		t.Error("expected errored register to read as absent")
	}
}

func TestReadAll(t *testing.T) {
	source := &fakeSource{values: map[uint16]float64{
		1:  230.1, // V1_N_Voltage
		55: 49.97, // Frequency
		65: 2304,  // Total_Active_Power
	}}
	meter := NewMeter(testConfig(), source)
	if !meter.Connect() {
		t.Fatal("expected Connect to succeed")
	}

	before := time.Now()
	vals, ts := meter.ReadAll(context.Background())
	if ts.Before(before) {
		t.Errorf("expected batch timestamp at or after %v, got %v", before, ts)
	}

	// one entry per register regardless of per-register failures
	if len(vals) != len(registers) {
		t.Fatalf("expected %d entries, got %d", len(registers), len(vals))
	}

	if v := vals["Frequency"]; v == nil || *v != 49.97 {
		t.Errorf("expected Frequency 49.97, got %v", v)
	}
	if v := vals["Total_Active_Power"]; v == nil || *v != 2304 {
		t.Errorf("expected Total_Active_Power 2304, got %v", v)
	}
	if v := vals["L1_Current"]; v != nil {
		t.Errorf("expected unreadable L1_Current to be nil, got %v", *v)
	}

	lastVals, lastTs := meter.LastReading()
	if !lastTs.Equal(ts) {
		t.Errorf("expected last reading time %v, got %v", ts, lastTs)
	}
	if v := lastVals["Frequency"]; v == nil || *v != 49.97 {
		t.Errorf("expected last reading Frequency 49.97, got %v", v)
	}
}

// slowSource answers every read, but slowly, like a meter on a congested link.
type slowSource struct {
	delay time.Duration
}

func (s slowSource) Connect() error { return nil }

func (s slowSource) Close() {}

func (s slowSource) ReadFloat32(uint16) (float64, error) {
	time.Sleep(s.delay)
	return 230.0, nil
}

func TestReadAllStopsWhenContextDone(t *testing.T) {
	meter := NewMeter(testConfig(), slowSource{delay: 5 * time.Millisecond})
	if !meter.Connect() {
		t.Fatal("expected Connect to succeed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()

	start := time.Now()
	vals, _ := meter.ReadAll(ctx)
	elapsed := time.Since(start)

	// a full batch would take ~81 * 5ms; the deadline must cut it short
	if limit := 200 * time.Millisecond; elapsed > limit {
		t.Errorf("expected batch to stop within %v of the deadline, took %v", limit, elapsed)
	}
	if len(vals) != len(registers) {
		t.Fatalf("expected %d entries even when cut short, got %d", len(registers), len(vals))
	}

	read := 0
	for _, v := range vals {
		if v != nil {
			read++
		}
	}
	if read == 0 {
		t.Error("expected some registers to be read before the deadline")
	}
	if read == len(registers) {
		t.Error("expected the deadline to leave some registers unread")
	}
}

func TestNewMeterDefaultsTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.Timeout = 0
	meter := NewMeter(cfg, &fakeSource{})
	if got := meter.Config().Timeout; got != DefaultTimeout {
		t.Errorf("expected default timeout %v, got %v", DefaultTimeout, got)
	}
}
