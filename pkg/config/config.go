// Package config loads the llad configuration file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lla-project/llad/pkg/pluginid"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// State backends.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
)

// Config is the daemon configuration.
type Config struct {
	LogLevel string         `yaml:"log_level"`
	State    StateConfig    `yaml:"state"`
	EventLog string         `yaml:"event_log"`
	Plugins  []string       `yaml:"plugins"`
	Loopback LoopbackConfig `yaml:"loopback"`
	Dummy    DummyConfig    `yaml:"dummy"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// StateConfig selects where port bindings are persisted.
type StateConfig struct {
	// Backend is "file" or "badger".
	Backend string `yaml:"backend"`

	// Path is the state file for the file backend, or the database
	// directory for badger. Empty disables persistence.
	Path string `yaml:"path"`
}

// LoopbackConfig configures the loopback plugin.
type LoopbackConfig struct {
	Pairs int `yaml:"pairs"`
}

// DummyConfig configures the dummy plugin.
type DummyConfig struct {
	Pattern  bool          `yaml:"pattern"`
	Interval time.Duration `yaml:"interval"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Listen is the HTTP listen address. Empty disables the endpoint.
	Listen string `yaml:"listen"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		State: StateConfig{
			Backend: BackendFile,
		},
		Loopback: LoopbackConfig{Pairs: 1},
		Dummy:    DummyConfig{Interval: 100 * time.Millisecond},
	}
}

// Parse parses YAML on top of the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Load reads and parses a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}

	switch c.State.Backend {
	case BackendFile, BackendBadger:
	default:
		return fmt.Errorf("%w: unknown state backend %q", ErrInvalidConfig, c.State.Backend)
	}

	for _, name := range c.Plugins {
		if id, ok := pluginid.Parse(name); !ok || id == pluginid.All {
			return fmt.Errorf("%w: unknown plugin %q", ErrInvalidConfig, name)
		}
	}

	if c.Loopback.Pairs < 1 {
		return fmt.Errorf("%w: loopback.pairs must be at least 1, got %d", ErrInvalidConfig, c.Loopback.Pairs)
	}
	if c.Dummy.Interval <= 0 {
		return fmt.Errorf("%w: dummy.interval must be positive, got %s", ErrInvalidConfig, c.Dummy.Interval)
	}
	return nil
}

// ParseLevel converts a log level name to a slog level. It accepts the
// names slog.Level.UnmarshalText does, in any case and with an optional
// offset such as "debug+2". An empty name means info.
func ParseLevel(level string) (slog.Level, error) {
	if level == "" {
		return slog.LevelInfo, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, level)
	}
	return l, nil
}
