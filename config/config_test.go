package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestReadAppliesDefaults(t *testing.T) {
	cfg, err := Read(writeConfig(t, `{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Database.Path != "pac3200_data.sqlite" {
		t.Errorf("unexpected default database path: %q", cfg.Database.Path)
	}
	if cfg.Poll.IntervalSecs != 10 || cfg.Poll.TimeoutSecs != 3 || cfg.Poll.MaxConcurrent != 4 {
		t.Errorf("unexpected poll defaults: %+v", cfg.Poll)
	}
	if cfg.Source.Mode != ModeModbus {
		t.Errorf("expected default source mode %q, got %q", ModeModbus, cfg.Source.Mode)
	}
	if cfg.Supabase != nil || cfg.Mqtt != nil {
		t.Error("expected optional sections to be absent")
	}
}

func TestReadFullConfig(t *testing.T) {
	cfg, err := Read(writeConfig(t, `{
		"database": {"path": "/var/lib/meters.sqlite"},
		"poll": {"intervalSecs": 5, "timeoutSecs": 2, "maxConcurrent": 8},
		"source": {"mode": "simulated"},
		"supabase": {"url": "https://example.supabase.co", "schema": "metering"},
		"mqtt": {"broker": "tcp://localhost:1883", "clientId": "metermon", "topicPrefix": "meters"}
	}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Database.Path != "/var/lib/meters.sqlite" {
		t.Errorf("unexpected database path: %q", cfg.Database.Path)
	}
	if cfg.Poll.IntervalSecs != 5 || cfg.Poll.MaxConcurrent != 8 {
		t.Errorf("unexpected poll config: %+v", cfg.Poll)
	}
	if cfg.Source.Mode != ModeSimulated {
		t.Errorf("expected simulated mode, got %q", cfg.Source.Mode)
	}
	if cfg.Supabase == nil || cfg.Supabase.Url != "https://example.supabase.co" {
		t.Errorf("unexpected supabase config: %+v", cfg.Supabase)
	}
	if cfg.Supabase.UploadIntervalSecs != 30 {
		t.Errorf("expected default upload interval 30, got %d", cfg.Supabase.UploadIntervalSecs)
	}
	if cfg.Mqtt == nil || cfg.Mqtt.Broker != "tcp://localhost:1883" {
		t.Errorf("unexpected mqtt config: %+v", cfg.Mqtt)
	}
}

func TestReadRejectsUnknownSourceMode(t *testing.T) {
	_, err := Read(writeConfig(t, `{"source": {"mode": "telepathy"}}`))
	if err == nil {
		t.Fatal("expected an error for an unknown source mode")
	}
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
