package poller

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cepro/metermonitor/pac3200"
	"github.com/cepro/metermonitor/registry"
	"github.com/cepro/metermonitor/repository"
	"github.com/cepro/metermonitor/telemetry"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const defaultMaxConcurrent = 4

// Poller drives regular acquisition cycles across every registered meter.
// Each meter is polled by its own goroutine, bounded by maxConcurrent, and
// its reading is written by that same goroutine, so there is exactly one
// writer per meter. Each meter's batch carries a deadline of one poll
// interval, so a responsive-but-slow meter cannot push back the next cycle
// or hold up shutdown.
//
// Stored readings are fanned out on Readings for optional consumers (upload,
// publish); the channel is drop-on-full so a slow consumer cannot stall
// acquisition.
type Poller struct {
	Readings chan telemetry.Reading

	registry      *registry.Registry
	repo          *repository.Repository
	interval      time.Duration
	maxConcurrent int
	logger        *slog.Logger
}

func New(reg *registry.Registry, repo *repository.Repository, interval time.Duration, maxConcurrent int) *Poller {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	return &Poller{
		Readings:      make(chan telemetry.Reading, 25), // a small buffer to absorb consumer hiccups
		registry:      reg,
		repo:          repo,
		interval:      interval,
		maxConcurrent: maxConcurrent,
		logger:        slog.Default(),
	}
}

// Run polls on a ticker until the context is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.PollOnce(ctx)
		}
	}
}

// PollOnce reads every registered meter once and persists whatever was
// readable. Per-meter failures are absorbed and logged; the return is the
// number of meters whose poll produced a stored reading.
func (p *Poller) PollOnce(ctx context.Context) int {
	cycle := uuid.New()
	meters := p.registry.List()

	var saved atomic.Int32
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxConcurrent)

	for _, meter := range meters {
		meter := meter
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			// budget the whole batch, not just each register read
			meterCtx, cancel := context.WithTimeout(ctx, p.interval)
			defer cancel()
			if p.pollMeter(meterCtx, meter, cycle) {
				saved.Add(1)
			}
			return nil
		})
	}

	// pollMeter never returns an error, Wait only gathers the goroutines
	g.Wait() //nolint:errcheck

	n := int(saved.Load())
	p.logger.Debug("Poll cycle complete", "cycle", cycle, "meters", len(meters), "saved", n)
	return n
}

func (p *Poller) pollMeter(ctx context.Context, meter *pac3200.Meter, cycle uuid.UUID) bool {
	cfg := meter.Config()
	logger := p.logger.With("meter", cfg.MeterID, "cycle", cycle)

	if !meter.Connected() && !meter.Connect() {
		logger.Warn("Meter unreachable, skipping poll")
		return false
	}

	values, ts := meter.ReadAll(ctx)
	stored, err := p.repo.SaveReading(cfg.MeterID, ts, values)
	if err != nil {
		logger.Error("Failed to persist reading", "error", err)
		return false
	}
	if stored == nil {
		logger.Warn("No readable values this cycle, nothing saved")
		return false
	}

	select {
	case p.Readings <- stored.Reading:
	default:
		logger.Debug("Readings channel full, reading not fanned out", "reading", stored.ID)
	}
	return true
}
