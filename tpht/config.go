package tpht

// © 2025 oha authors. MIT License.

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var (
	// ErrInvalidTimeoutSlots is returned by Create when the timeout slot
	// count is zero or exceeds MaxTimeoutSlots.
	ErrInvalidTimeoutSlots = errors.New("tpht: number of timeout slots must be between 1 and MaxTimeoutSlots")
)

// MaxTimeoutSlots bounds the number of timeout classes a TPHT can be
// configured with, mirroring OHA_MAX_TIMEOUT_SLOTS.
const MaxTimeoutSlots = 10

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

// WithLogger attaches a structured logger, propagated to the underlying
// lpht and bh instances as well.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics registers this table's own counters (assignments,
// expirations) on reg. Only these counters are registered: the underlying
// lpht and bh instances are created without metrics.
func WithMetrics(reg *prometheus.Registry) Option {
	return func(c *config) {
		if reg != nil {
			c.metrics = newPromMetrics(reg)
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
