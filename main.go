package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/cepro/metermonitor/config"
	"github.com/cepro/metermonitor/dataplatform"
	"github.com/cepro/metermonitor/pac3200"
	"github.com/cepro/metermonitor/poller"
	"github.com/cepro/metermonitor/publisher"
	"github.com/cepro/metermonitor/registry"
	"github.com/cepro/metermonitor/repository"
	"github.com/cepro/metermonitor/telemetry"
)

const supabaseKeyEnvVar = "METERMONITOR_SUPABASE_KEY"

func main() {

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	configPath := flag.String("config", "config.json", "Path to the JSON configuration file")
	flag.Parse()

	slog.Info("Starting meter monitor...")

	cfg, err := config.Read(*configPath)
	if err != nil {
		slog.Error("Failed to read config", "error", err)
		return
	}

	repo, err := repository.New(cfg.Database.Path)
	if err != nil {
		slog.Error("Failed to open database", "error", err, "path", cfg.Database.Path)
		return
	}
	if err := repo.Init(); err != nil {
		slog.Error("Failed to initialise database schema", "error", err)
		return
	}

	var newSource registry.SourceFactory
	switch cfg.Source.Mode {
	case config.ModeSimulated:
		newSource = func(c pac3200.Config) pac3200.Source {
			return pac3200.NewSimulatedSource(c.MeterID)
		}
	default:
		newSource = pac3200.NewModbusSource
	}
	slog.Info("Meter data source selected", "mode", cfg.Source.Mode)

	defaultMeterTimeout := time.Duration(cfg.Poll.TimeoutSecs) * time.Second
	reg := registry.New(repo, newSource, defaultMeterTimeout)
	if err := reg.LoadAll(); err != nil {
		slog.Error("Failed to load meter configurations", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	pollInterval := time.Duration(cfg.Poll.IntervalSecs) * time.Second
	pol := poller.New(reg, repo, pollInterval, cfg.Poll.MaxConcurrent)
	go pol.Run(ctx)

	// optional consumers of the stored readings
	var uploadReadings, publishReadings chan telemetry.Reading

	if cfg.Supabase != nil {
		supabaseKey := os.Getenv(supabaseKeyEnvVar)
		if supabaseKey == "" {
			slog.Error("Supabase configured but key env var is not set", "env_var", supabaseKeyEnvVar)
			return
		}
		uploadInterval := time.Duration(cfg.Supabase.UploadIntervalSecs) * time.Second
		dataPlatform := dataplatform.New(cfg.Supabase.Url, supabaseKey, cfg.Supabase.Schema, uploadInterval)
		go dataPlatform.Run(ctx)
		uploadReadings = dataPlatform.Readings
	}

	if cfg.Mqtt != nil {
		pub, err := publisher.New(cfg.Mqtt.Broker, cfg.Mqtt.ClientID, cfg.Mqtt.TopicPrefix)
		if err != nil {
			// publishing is best-effort, run without it
			slog.Error("Failed to create MQTT publisher, continuing without", "error", err)
		} else {
			go pub.Run(ctx)
			publishReadings = pub.Readings
		}
	}

	// stored readings are fanned out to whichever consumers are configured
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case reading := <-pol.Readings:
				if uploadReadings != nil {
					uploadReadings <- reading
				}
				if publishReadings != nil {
					publishReadings <- reading
				}
			}
		}
	}()

	// wait for a ctrl-c interrupt before exiting
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt)
	<-signalChan

	// cancel any open go-routines and give them up to 100ms to gracefully shutdown
	cancel()
	reg.DisconnectAll()
	time.Sleep(time.Millisecond * 100)

	slog.Info("Exiting")
	os.Exit(0)
}
