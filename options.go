package linekv

import (
	"net"

	"github.com/pkg/errors"

	"github.com/raniellyferreira/linekv/storage"
)

// DefaultAddr is the address the server binds when none is given
const DefaultAddr = "127.0.0.1:8080"

// config holds the configuration for a KV
type config struct {
	addr      string
	queueSize int

	// Observability
	logger   Logger
	metrics  MetricsCollector
	observer storage.Observer
}

// defaultConfig returns a configuration with sensible defaults
func defaultConfig() *config {
	return &config{
		addr:      DefaultAddr,
		queueSize: storage.DefaultQueueSize,
	}
}

// Option represents a configuration option for a KV
type Option func(*config) error

// WithAddr sets the TCP address the server listens on
//
// Example:
//
//	WithAddr("127.0.0.1:8080")
//	WithAddr(":0") // pick a free port
func WithAddr(addr string) Option {
	return func(c *config) error {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return errors.Wrapf(ErrInvalidConfig, "address %q: %v", addr, err)
		}
		c.addr = addr
		return nil
	}
}

// WithQueueSize sets how many operations may wait for the store owner.
// Zero makes every session wait until the owner takes its operation.
//
// Example:
//
//	WithQueueSize(1024)
func WithQueueSize(size int) Option {
	return func(c *config) error {
		if size < 0 {
			return errors.Wrapf(ErrInvalidConfig, "queue size %d", size)
		}
		c.queueSize = size
		return nil
	}
}

// WithLogger sets a custom logger
//
// Example:
//
//	WithLogger(linekv.NewZapLogger(zapLogger))
func WithLogger(logger Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return errors.Wrap(ErrInvalidConfig, "nil logger")
		}
		c.logger = logger
		return nil
	}
}

// WithMetrics enables metrics collection with the provided collector
//
// Example:
//
//	WithMetrics(metrics.New(prometheus.DefaultRegisterer))
func WithMetrics(collector MetricsCollector) Option {
	return func(c *config) error {
		c.metrics = collector
		return nil
	}
}

// WithObserver registers an observer notified of every key set, read and
// deleted. Hooks run on the store owner goroutine and must not block.
//
// Example:
//
//	WithObserver(myKeyspaceObserver)
func WithObserver(observer storage.Observer) Option {
	return func(c *config) error {
		if observer == nil {
			return errors.Wrap(ErrInvalidConfig, "nil observer")
		}
		c.observer = observer
		return nil
	}
}
