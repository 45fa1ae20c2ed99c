package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Source modes.
const (
	ModeModbus    = "modbus"
	ModeSimulated = "simulated"
)

type DatabaseConfig struct {
	Path string `json:"path"`
}

type PollConfig struct {
	IntervalSecs  int `json:"intervalSecs"`
	TimeoutSecs   int `json:"timeoutSecs"`
	MaxConcurrent int `json:"maxConcurrent"`
}

type SourceConfig struct {
	Mode string `json:"mode"`
}

type SupabaseConfig struct {
	Url string `json:"url"`
	// key is specified via env var
	Schema             string `json:"schema"`
	UploadIntervalSecs int    `json:"uploadIntervalSecs"`
}

type MqttConfig struct {
	Broker      string `json:"broker"`
	ClientID    string `json:"clientId"`
	TopicPrefix string `json:"topicPrefix"`
}

type Config struct {
	Database DatabaseConfig  `json:"database"`
	Poll     PollConfig      `json:"poll"`
	Source   SourceConfig    `json:"source"`
	Supabase *SupabaseConfig `json:"supabase"`
	Mqtt     *MqttConfig     `json:"mqtt"`
}

func Read(path string) (Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var config Config
	err = json.Unmarshal(content, &config)
	if err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := config.applyDefaults(); err != nil {
		return Config{}, err
	}

	return config, nil
}

func (c *Config) applyDefaults() error {
	if c.Database.Path == "" {
		c.Database.Path = "pac3200_data.sqlite"
	}
	if c.Poll.IntervalSecs <= 0 {
		c.Poll.IntervalSecs = 10
	}
	if c.Poll.TimeoutSecs <= 0 {
		c.Poll.TimeoutSecs = 3
	}
	if c.Poll.MaxConcurrent <= 0 {
		c.Poll.MaxConcurrent = 4
	}
	switch c.Source.Mode {
	case "":
		c.Source.Mode = ModeModbus
	case ModeModbus, ModeSimulated:
	default:
		return fmt.Errorf("unknown source mode: %q", c.Source.Mode)
	}
	if c.Supabase != nil && c.Supabase.UploadIntervalSecs <= 0 {
		c.Supabase.UploadIntervalSecs = 30
	}
	return nil
}
