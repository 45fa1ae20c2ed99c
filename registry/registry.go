package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/cepro/metermonitor/pac3200"
	"github.com/cepro/metermonitor/repository"
)

// ErrUnknownMeter is returned when an operation names a meter id with no
// registered connection.
var ErrUnknownMeter = errors.New("unknown meter")

// SourceFactory builds the data source for a meter: a live Modbus session or
// the simulated generator. The choice is made once, when the registry is
// constructed, not per call.
type SourceFactory func(cfg pac3200.Config) pac3200.Source

// Registry owns the runtime connection for every configured meter, backed by
// the persisted meter configuration table. It is constructed once and passed
// by reference to anything that needs meter access.
type Registry struct {
	repo           *repository.Repository
	newSource      SourceFactory
	defaultTimeout time.Duration
	logger         *slog.Logger

	mu     sync.RWMutex
	meters map[string]*pac3200.Meter
}

// New builds a registry. defaultTimeout is applied to meters configured
// without one; zero falls back to the device default.
func New(repo *repository.Repository, newSource SourceFactory, defaultTimeout time.Duration) *Registry {
	if defaultTimeout <= 0 {
		defaultTimeout = pac3200.DefaultTimeout
	}
	return &Registry{
		repo:           repo,
		newSource:      newSource,
		defaultTimeout: defaultTimeout,
		logger:         slog.Default(),
		meters:         make(map[string]*pac3200.Meter),
	}
}

// Add upserts the meter's configuration row and (re)builds its runtime
// connection, disconnecting and replacing any prior instance with the same
// id. The new connection is returned unconnected.
func (r *Registry) Add(cfg pac3200.Config) (*pac3200.Meter, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = r.defaultTimeout
	}

	if err := r.repo.UpsertMeterConfig(storedFromConfig(cfg)); err != nil {
		return nil, fmt.Errorf("persist meter config: %w", err)
	}

	meter := pac3200.NewMeter(cfg, r.newSource(cfg))

	r.mu.Lock()
	if prev, ok := r.meters[cfg.MeterID]; ok {
		prev.Disconnect()
	}
	r.meters[cfg.MeterID] = meter
	r.mu.Unlock()

	r.logger.Info("Added meter", "meter", cfg.MeterID, "host", cfg.Host, "port", cfg.Port)
	return meter, nil
}

// Remove disconnects the meter's connection (when present) and deletes its
// configuration row. Historical readings for the meter are kept.
func (r *Registry) Remove(meterID string) error {
	r.mu.Lock()
	if meter, ok := r.meters[meterID]; ok {
		meter.Disconnect()
		delete(r.meters, meterID)
	}
	r.mu.Unlock()

	if err := r.repo.DeleteMeterConfig(meterID); err != nil {
		return fmt.Errorf("delete meter config: %w", err)
	}

	r.logger.Info("Removed meter", "meter", meterID)
	return nil
}

// LoadAll rebuilds the connection for every persisted meter configuration,
// replacing any existing instances. A database without the configuration
// table yields an empty registry.
func (r *Registry) LoadAll() error {
	cfgs, err := r.repo.ListMeterConfigs()
	if err != nil {
		return fmt.Errorf("list meter configs: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range cfgs {
		cfg := r.configFromStored(stored)
		if prev, ok := r.meters[cfg.MeterID]; ok {
			prev.Disconnect()
		}
		r.meters[cfg.MeterID] = pac3200.NewMeter(cfg, r.newSource(cfg))
	}

	r.logger.Info("Loaded meters from configuration", "count", len(cfgs))
	return nil
}

// Get returns the connection for one meter id.
func (r *Registry) Get(meterID string) (*pac3200.Meter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	meter, ok := r.meters[meterID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMeter, meterID)
	}
	return meter, nil
}

// List returns every registered connection, ordered by meter id.
func (r *Registry) List() []*pac3200.Meter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	meters := make([]*pac3200.Meter, 0, len(r.meters))
	for _, meter := range r.meters {
		meters = append(meters, meter)
	}
	sort.Slice(meters, func(i, j int) bool {
		return meters[i].Config().MeterID < meters[j].Config().MeterID
	})
	return meters
}

// DisconnectAll closes every live session, e.g. on shutdown.
func (r *Registry) DisconnectAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, meter := range r.meters {
		meter.Disconnect()
	}
}

func storedFromConfig(cfg pac3200.Config) repository.StoredMeterConfig {
	return repository.StoredMeterConfig{
		MeterID:     cfg.MeterID,
		Name:        cfg.Name,
		Host:        cfg.Host,
		Port:        cfg.Port,
		UnitID:      int(cfg.UnitID),
		TimeoutSecs: int(cfg.Timeout / time.Second),
		Location:    cfg.Location,
		Description: cfg.Description,
	}
}

func (r *Registry) configFromStored(stored repository.StoredMeterConfig) pac3200.Config {
	timeout := time.Duration(stored.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = r.defaultTimeout
	}
	return pac3200.Config{
		MeterID:     stored.MeterID,
		Name:        stored.Name,
		Host:        stored.Host,
		Port:        stored.Port,
		UnitID:      uint8(stored.UnitID),
		Timeout:     timeout,
		Location:    stored.Location,
		Description: stored.Description,
	}
}
