package lpht

// © 2025 oha authors. MIT License.

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var (
	// ErrInvalidLoadFactor is returned by Create when loadFactor is not in (0, 1).
	ErrInvalidLoadFactor = errors.New("lpht: load factor must satisfy 0 < load_factor < 1")
	// ErrInvalidMaxElems is returned by Create when maxElems is zero.
	ErrInvalidMaxElems = errors.New("lpht: max_elems must be greater than zero")
)

// config holds the optional knobs applied on top of Create's required
// arguments, following the functional-options shape of arena-cache's
// pkg/config.go.
type config struct {
	logger  *zap.Logger
	metrics metricsSink
}

// Option configures optional behavior of a Create call.
type Option func(*config)

func defaultConfig() config {
	return config{
		logger:  zap.NewNop(),
		metrics: noopMetrics{},
	}
}

// WithLogger attaches a structured logger. Only lifecycle events (create,
// grow) and warnings (capacity exhausted) are logged; the hot path never
// logs.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics registers the table's counters and gauges on reg. Without
// this option all metrics calls are no-ops.
func WithMetrics(reg *prometheus.Registry, subsystem string) Option {
	return func(c *config) {
		if reg != nil {
			c.metrics = newPromMetrics(reg, subsystem)
		}
	}
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
