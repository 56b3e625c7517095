// Package config loads and validates batch configuration: worker counts,
// slug policy, logging, eventing, and run-history storage.
package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config is the full configuration consumed by the CLI wrapper.
type Config struct {
	Batch   BatchConfig   `yaml:"batch"`
	Logging LoggingConfig `yaml:"logging"`
	Events  EventsConfig  `yaml:"events"`
	Store   StoreConfig   `yaml:"store"`
}

// BatchConfig tunes the processing core.
type BatchConfig struct {
	Workers            int `yaml:"workers"`              // Phase 1/2 concurrency; 0 = GOMAXPROCS
	SlugMaxLength      int `yaml:"slug_max_length"`      // max slug length in code points
	AssetSequenceWidth int `yaml:"asset_sequence_width"` // zero-padding of asset numbers
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // text|json
}

// EventsConfig enables NATS publishing of batch diagnostics.
type EventsConfig struct {
	Enabled       bool   `yaml:"enabled"`
	NATSURL       string `yaml:"nats_url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// StoreConfig enables run-history persistence.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Batch: BatchConfig{
			Workers:            runtime.GOMAXPROCS(0),
			SlugMaxLength:      80,
			AssetSequenceWidth: 3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Events: EventsConfig{
			SubjectPrefix: "docnorm",
		},
		Store: StoreConfig{
			Path: "docnorm-runs.db",
		},
	}
}

// Load reads the YAML config file, layers it over defaults, applies
// environment overrides, and validates the result. A missing file is not an
// error; defaults plus environment apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err != nil && os.IsNotExist(err):
		// fall through to env + validation
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks tunables for sane ranges, repairing soft fields and
// rejecting contradictions.
func (c *Config) Validate() error {
	if c.Batch.Workers < 0 {
		return fmt.Errorf("batch.workers must not be negative")
	}
	if c.Batch.Workers == 0 {
		c.Batch.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Batch.SlugMaxLength <= 0 {
		c.Batch.SlugMaxLength = 80
	}
	if c.Batch.AssetSequenceWidth <= 0 {
		c.Batch.AssetSequenceWidth = 3
	}
	if c.Events.Enabled && c.Events.NATSURL == "" {
		return fmt.Errorf("events.nats_url is required when events are enabled")
	}
	if c.Store.Enabled && c.Store.Path == "" {
		return fmt.Errorf("store.path is required when the store is enabled")
	}
	c.Logging.Level = string(NormalizeLogLevel(c.Logging.Level))
	c.Logging.Format = string(NormalizeLogFormat(c.Logging.Format))
	return nil
}
