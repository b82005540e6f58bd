package tpht

// © 2025 oha authors. MIT License.

import "github.com/prometheus/client_golang/prometheus"

type metricsSink interface {
	incAssignment()
	incExpiration()
}

type noopMetrics struct{}

func (noopMetrics) incAssignment() {}
func (noopMetrics) incExpiration() {}

type promMetrics struct {
	assignments prometheus.Counter
	expirations prometheus.Counter
}

func newPromMetrics(reg *prometheus.Registry) *promMetrics {
	m := &promMetrics{
		assignments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "oha", Subsystem: "tpht", Name: "assignments_total",
			Help: "Number of SetTimeoutSlot calls that successfully assigned an entry to a class.",
		}),
		expirations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "oha", Subsystem: "tpht", Name: "expirations_total",
			Help: "Number of times NextTimeoutEntry resolved a pending entry.",
		}),
	}
	reg.MustRegister(m.assignments, m.expirations)
	return m
}

func (m *promMetrics) incAssignment() { m.assignments.Inc() }
func (m *promMetrics) incExpiration() { m.expirations.Inc() }
