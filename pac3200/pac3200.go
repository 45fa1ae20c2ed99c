package pac3200

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/cepro/metermonitor/telemetry"
)

// DefaultTimeout bounds each register read when no timeout is configured.
const DefaultTimeout = 3 * time.Second

// probeRegister is read after opening a session to confirm the meter is
// actually answering; a TCP connect alone can succeed against a half-dead
// gateway. Register 1 holds the V1-N voltage.
const probeRegister uint16 = 1

// Config holds the connection settings for one SENTRON PAC3200 meter. It
// mirrors the persisted meter configuration row and is everything needed to
// rebuild a session at startup.
type Config struct {
	MeterID     string
	Name        string
	Host        string
	Port        int
	UnitID      uint8
	Timeout     time.Duration
	Location    string
	Description string
}

// Meter handles communications with a single SENTRON PAC3200 three phase
// meter. Connection and decode failures never escape as errors: they surface
// as a false Connect result or as absent values in a reading.
type Meter struct {
	cfg    Config
	source Source
	logger *slog.Logger

	mu              sync.Mutex
	connected       bool
	lastReading     telemetry.Values
	lastReadingTime time.Time
}

// NewMeter wraps the given source for one meter. The source decides whether
// readings come from a live Modbus session or the simulated generator.
func NewMeter(cfg Config, source Source) *Meter {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Meter{
		cfg:    cfg,
		source: source,
		logger: slog.Default().With("meter", cfg.MeterID, "host", cfg.Host),
	}
}

// Config returns the settings the meter was built from.
func (m *Meter) Config() Config {
	return m.cfg
}

// Connect (re)establishes the meter session: any prior session is closed, a
// new one is opened and validated by reading a known register pair. It never
// returns an error; false means the meter is not live.
func (m *Meter) Connect() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.source.Close()
	m.connected = false

	if err := m.source.Connect(); err != nil {
		m.logger.Warn("Failed to connect meter", "error", err)
		return false
	}

	if _, err := m.source.ReadFloat32(probeRegister); err != nil {
		m.logger.Warn("Meter connected but probe read failed", "error", err)
		m.source.Close()
		return false
	}

	m.connected = true
	m.logger.Info("Connected meter")
	return true
}

// Disconnect releases the session. Safe to call when already disconnected.
func (m *Meter) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.source.Close()
	m.connected = false
}

// Connected reports whether the last connect attempt left the session live.
func (m *Meter) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// ReadRegister reads the two 16-bit registers at addr and decodes them as a
// big-endian binary32 value. The second return is false when the session is
// not live, the read fails, or the decoded value is NaN or infinite.
func (m *Meter) ReadRegister(addr uint16) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readRegisterLocked(addr)
}

func (m *Meter) readRegisterLocked(addr uint16) (float64, bool) {
	if !m.connected {
		return 0, false
	}
	val, err := m.source.ReadFloat32(addr)
	if err != nil {
		m.logger.Debug("Register read failed", "addr", addr, "error", err)
		return 0, false
	}
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, false
	}
	return val, true
}

// ReadAll polls every parameter in the register map in one batch. The result
// always holds one entry per parameter; a nil value marks a parameter that
// could not be read this cycle. Individual failures never abort the batch.
// Once ctx is done the remaining registers are left nil rather than read, so
// a batch can be bounded by a deadline or cut short on shutdown. The returned
// time is the wall-clock timestamp of the batch.
func (m *Meter) ReadAll(ctx context.Context) (telemetry.Values, time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	vals := make(telemetry.Values, len(registers))
	for _, reg := range registers {
		if ctx.Err() != nil {
			vals[reg.Name] = nil
			continue
		}
		if v, ok := m.readRegisterLocked(reg.Addr); ok {
			val := v
			vals[reg.Name] = &val
		} else {
			vals[reg.Name] = nil
		}
	}

	now := time.Now()
	m.lastReading = vals
	m.lastReadingTime = now
	return vals, now
}

// LastReading returns the most recent ReadAll snapshot and its timestamp.
// The values are nil until the first batch completes.
func (m *Meter) LastReading() (telemetry.Values, time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastReading, m.lastReadingTime
}
