package dataplatform

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cepro/metermonitor/telemetry"

	supa "github.com/nedpals/supabase-go"
)

const (
	// uploadTimeout bounds one supabase HTTP request; the client library has
	// no timeout support of its own, so the call is wrapped.
	uploadTimeout = 10 * time.Second

	// uploadChunkLimit is how many readings go into one supabase request.
	uploadChunkLimit = 100

	// maxBacklog caps the readings kept in memory awaiting upload. The local
	// database is the canonical history, so dropping the oldest pending
	// uploads loses nothing durable.
	maxBacklog = 5000
)

// DataPlatform streams stored readings to Supabase. Put readings onto the
// Readings channel; they are batched and uploaded on a ticker, and a failed
// batch is kept for retry up to a bounded backlog.
type DataPlatform struct {
	Readings chan telemetry.Reading

	url            string
	anonKey        string
	schema         string
	table          string
	uploadInterval time.Duration
	logger         *slog.Logger

	subClient       *supa.Client // the raw client of the underlying supabase library we are using
	shouldReconnect bool         // when true, the subClient is 'dirty' and will be re-created before the next upload
	pending         []telemetry.Reading
}

func New(url, anonKey, schema string, uploadInterval time.Duration) *DataPlatform {
	return &DataPlatform{
		Readings:        make(chan telemetry.Reading, 25), // a small buffer so acquisition isn't stalled by uploads
		url:             url,
		anonKey:         anonKey,
		schema:          schema,
		table:           "pac3200_readings",
		uploadInterval:  uploadInterval,
		shouldReconnect: true, // connect lazily on the first upload
		logger:          slog.Default().With("host", url),
	}
}

// Run loops forever buffering readings and uploading them in chunks.
func (d *DataPlatform) Run(ctx context.Context) {
	ticker := time.NewTicker(d.uploadInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case reading := <-d.Readings:
			d.buffer(reading)
		case <-ticker.C:
			d.attemptUpload()
		}
	}
}

func (d *DataPlatform) buffer(reading telemetry.Reading) {
	d.pending = append(d.pending, reading)
	if overflow := len(d.pending) - maxBacklog; overflow > 0 {
		d.logger.Warn("Upload backlog full, dropping oldest pending readings", "dropped", overflow)
		d.pending = d.pending[overflow:]
	}
}

// attemptUpload drains the pending readings in chunks, stopping at the first
// failure so the remainder is retried on a later tick.
func (d *DataPlatform) attemptUpload() {
	for len(d.pending) > 0 {
		chunk := d.pending
		if len(chunk) > uploadChunkLimit {
			chunk = chunk[:uploadChunkLimit]
		}

		if err := d.upload(chunk); err != nil {
			d.logger.Error("Upload failed, keeping readings for retry", "error", err, "pending", len(d.pending))
			return
		}

		d.pending = d.pending[len(chunk):]
		d.logger.Info("Uploaded readings", "db_table", d.table, "db_records", len(chunk))
	}
}

func (d *DataPlatform) upload(chunk []telemetry.Reading) error {
	if err := d.reconnectIfNecessary(); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- d.subClient.DB.From(d.table).Insert(chunk).Execute(nil)
	}()

	select {
	case <-time.After(uploadTimeout):
		d.shouldReconnect = true
		return errors.New("timed out")
	case err := <-errCh:
		if err != nil {
			d.shouldReconnect = true
		}
		return err
	}
}

// reconnectIfNecessary re-creates the supabase client after an error left it
// in an unknown state.
func (d *DataPlatform) reconnectIfNecessary() error {
	if !d.shouldReconnect {
		return nil
	}

	subClient := supa.CreateClient(d.url, d.anonKey)

	// The supabase client library doesn't have a fully featured interface,
	// here we specify the schema directly via postgrest request headers.
	subClient.DB.AddHeader("Accept-Profile", d.schema)
	subClient.DB.AddHeader("Content-Profile", d.schema)

	d.subClient = subClient
	d.shouldReconnect = false

	d.logger.Info("Created supabase client")
	return nil
}
