package registry

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/cepro/metermonitor/pac3200"
	"github.com/cepro/metermonitor/repository"
	"github.com/cepro/metermonitor/telemetry"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *repository.Repository {
	t.Helper()
	repo, err := repository.New(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	require.NoError(t, repo.Init())
	return repo
}

func simulatedFactory(cfg pac3200.Config) pac3200.Source {
	return pac3200.NewSimulatedSource(cfg.MeterID)
}

func testMeterConfig(meterID string) pac3200.Config {
	return pac3200.Config{
		MeterID:  meterID,
		Name:     "Meter " + meterID,
		Host:     "192.168.1.10",
		Port:     502,
		UnitID:   2,
		Timeout:  5 * time.Second,
		Location: "Plant Room",
	}
}

func TestAddAndLoadAllRoundTrip(t *testing.T) {
	repo := newTestRepository(t)

	reg := New(repo, simulatedFactory, 0)
	_, err := reg.Add(testMeterConfig("meter_1"))
	require.NoError(t, err)
	_, err = reg.Add(testMeterConfig("meter_2"))
	require.NoError(t, err)

	// a fresh registry against the same database must rebuild both meters
	// with their persisted settings intact
	fresh := New(repo, simulatedFactory, 0)
	require.NoError(t, fresh.LoadAll())

	meters := fresh.List()
	require.Len(t, meters, 2)
	require.Equal(t, "meter_1", meters[0].Config().MeterID)
	require.Equal(t, "meter_2", meters[1].Config().MeterID)

	cfg := meters[0].Config()
	require.Equal(t, "192.168.1.10", cfg.Host)
	require.Equal(t, 502, cfg.Port)
	require.Equal(t, uint8(2), cfg.UnitID)
	require.Equal(t, 5*time.Second, cfg.Timeout)
	require.Equal(t, "Plant Room", cfg.Location)
}

func TestAddReplacesExisting(t *testing.T) {
	repo := newTestRepository(t)
	reg := New(repo, simulatedFactory, 0)

	first, err := reg.Add(testMeterConfig("meter_1"))
	require.NoError(t, err)
	require.True(t, first.Connect())

	updated := testMeterConfig("meter_1")
	updated.Host = "192.168.1.99"
	second, err := reg.Add(updated)
	require.NoError(t, err)

	require.False(t, first.Connected(), "the replaced meter must be disconnected")

	got, err := reg.Get("meter_1")
	require.NoError(t, err)
	require.Same(t, second, got)
	require.Equal(t, "192.168.1.99", got.Config().Host)
	require.Len(t, reg.List(), 1)
}

func TestRemoveKeepsReadings(t *testing.T) {
	repo := newTestRepository(t)
	reg := New(repo, simulatedFactory, 0)

	_, err := reg.Add(testMeterConfig("meter_1"))
	require.NoError(t, err)

	freq := 50.0
	_, err = repo.SaveReading("meter_1", time.Now(), telemetry.Values{"Frequency": &freq})
	require.NoError(t, err)

	require.NoError(t, reg.Remove("meter_1"))

	_, err = reg.Get("meter_1")
	require.ErrorIs(t, err, ErrUnknownMeter)

	_, found, err := repo.GetMeterConfig("meter_1")
	require.NoError(t, err)
	require.False(t, found)

	rows, err := repo.ReadingsSince("meter_1", time.Hour)
	require.NoError(t, err)
	require.Len(t, rows, 1, "readings must survive meter removal")
}

func TestGetUnknownMeter(t *testing.T) {
	repo := newTestRepository(t)
	reg := New(repo, simulatedFactory, 0)

	_, err := reg.Get("no_such_meter")
	require.True(t, errors.Is(err, ErrUnknownMeter))
}

func TestAddDefaultsTimeout(t *testing.T) {
	repo := newTestRepository(t)
	reg := New(repo, simulatedFactory, 0)

	cfg := testMeterConfig("meter_1")
	cfg.Timeout = 0
	meter, err := reg.Add(cfg)
	require.NoError(t, err)
	require.Equal(t, pac3200.DefaultTimeout, meter.Config().Timeout)

	// the default must also be persisted, not just applied in memory
	stored, found, err := repo.GetMeterConfig("meter_1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, int(pac3200.DefaultTimeout/time.Second), stored.TimeoutSecs)
}

func TestConfiguredDefaultTimeout(t *testing.T) {
	repo := newTestRepository(t)
	reg := New(repo, simulatedFactory, 7*time.Second)

	cfg := testMeterConfig("meter_1")
	cfg.Timeout = 0
	meter, err := reg.Add(cfg)
	require.NoError(t, err)
	require.Equal(t, 7*time.Second, meter.Config().Timeout)

	stored, found, err := repo.GetMeterConfig("meter_1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 7, stored.TimeoutSecs)

	// the configured default also covers stored rows with no timeout
	require.NoError(t, repo.UpsertMeterConfig(repository.StoredMeterConfig{
		MeterID: "meter_2",
		Name:    "Legacy",
		Host:    "192.168.1.11",
		Port:    502,
		UnitID:  1,
	}))
	require.NoError(t, reg.LoadAll())
	loaded, err := reg.Get("meter_2")
	require.NoError(t, err)
	require.Equal(t, 7*time.Second, loaded.Config().Timeout)
}

func TestDisconnectAll(t *testing.T) {
	repo := newTestRepository(t)
	reg := New(repo, simulatedFactory, 0)

	for _, id := range []string{"meter_1", "meter_2"} {
		meter, err := reg.Add(testMeterConfig(id))
		require.NoError(t, err)
		require.True(t, meter.Connect())
	}

	reg.DisconnectAll()
	for _, meter := range reg.List() {
		require.False(t, meter.Connected())
	}
}
