package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so it parses from "5m"-style YAML strings.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// PeerConfig names one remote peer to reconcile with.
type PeerConfig struct {
	Name string `yaml:"name"`
	Addr string `yaml:"addr"`
}

// Config holds the daemon configuration.
type Config struct {
	NodeName     string        `yaml:"node_name"`
	DataDir      string        `yaml:"data_dir"`
	ListenAddr   string        `yaml:"listen_addr"`
	SyncInterval Duration      `yaml:"sync_interval"`
	LogLevel     string        `yaml:"log_level"`
	LogJSON      bool          `yaml:"log_json"`
	Peers        []PeerConfig  `yaml:"peers,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		NodeName:     "photosync",
		DataDir:      "/var/lib/photosync",
		ListenAddr:   ":7600",
		SyncInterval: Duration(5 * time.Minute),
		LogLevel:     "info",
	}
}

// Load reads a YAML configuration file, filling unset fields with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if c.SyncInterval <= 0 {
		return fmt.Errorf("sync_interval must be positive, got %s", time.Duration(c.SyncInterval))
	}
	seen := make(map[string]bool)
	for i, p := range c.Peers {
		if p.Name == "" {
			return fmt.Errorf("peer %d: name must not be empty", i)
		}
		if p.Addr == "" {
			return fmt.Errorf("peer %q: addr must not be empty", p.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("peer %q: duplicate name", p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}
