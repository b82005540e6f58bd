package bh

// © 2025 oha authors. MIT License.

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// ErrInvalidMaxElems is returned by Create when maxElems is zero.
var ErrInvalidMaxElems = errors.New("bh: max_elems must be greater than zero")

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

// WithLogger attaches a structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics registers the heap's counters and gauges on reg.
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
