// Package config loads linekv server settings from YAML and the environment.
package config

import (
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/raniellyferreira/linekv/internal/log"
)

// Defaults
const (
	DefaultAddr      = "127.0.0.1:8080"
	DefaultQueueSize = 100
	DefaultLogLevel  = "info"
)

// Environment variables that override file settings
const (
	EnvAddr        = "LINEKV_ADDR"
	EnvQueueSize   = "LINEKV_QUEUE_SIZE"
	EnvLogLevel    = "LINEKV_LOG_LEVEL"
	EnvLogFormat   = "LINEKV_LOG_FORMAT"
	EnvMetricsAddr = "LINEKV_METRICS_ADDR"
)

// Config holds the server settings
type Config struct {
	Addr      string        `yaml:"addr"`
	QueueSize int           `yaml:"queue_size"`
	Log       LogConfig     `yaml:"log"`
	Metrics   MetricsConfig `yaml:"metrics"`
}

// LogConfig selects the log level and encoding
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig configures the Prometheus endpoint. An empty Addr
// disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Addr:      DefaultAddr,
		QueueSize: DefaultQueueSize,
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: log.FormatConsole,
		},
	}
}

// Load builds a configuration from the defaults, the YAML file at path
// (skipped when path is empty) and the LINEKV_* environment variables, in
// that order of precedence. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse YAML")
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields from the environment
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAddr); ok {
		c.Addr = v
	}
	if v, ok := lookup(EnvQueueSize); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrapf(err, "invalid %s", EnvQueueSize)
		}
		c.QueueSize = n
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok {
		c.Log.Format = v
	}
	if v, ok := lookup(EnvMetricsAddr); ok {
		c.Metrics.Addr = v
	}
	return nil
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return errors.Wrapf(err, "invalid addr %q", c.Addr)
	}

	if c.QueueSize < 0 {
		return errors.New("queue_size must be non-negative")
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return errors.WithMessage(err, "invalid log.level")
	}

	switch c.Log.Format {
	case "", log.FormatConsole, log.FormatJSON:
	default:
		return errors.Errorf("log.format must be %q or %q, got %q", log.FormatConsole, log.FormatJSON, c.Log.Format)
	}

	if c.Metrics.Addr != "" {
		if _, _, err := net.SplitHostPort(c.Metrics.Addr); err != nil {
			return errors.Wrapf(err, "invalid metrics.addr %q", c.Metrics.Addr)
		}
	}

	return nil
}
