package lpht

// © 2025 oha authors. MIT License.

import "github.com/prometheus/client_golang/prometheus"

// metricsSink mirrors the split interface/noop/prom-backed shape of
// arena-cache's pkg/metrics.go, scaled down to the counters an lpht
// actually has.
type metricsSink interface {
	incHit()
	incMiss()
	incInsert()
	incRemove()
	incGrow()
	setElems(n int)
}

type noopMetrics struct{}

func (noopMetrics) incHit()        {}
func (noopMetrics) incMiss()       {}
func (noopMetrics) incInsert()     {}
func (noopMetrics) incRemove()     {}
func (noopMetrics) incGrow()       {}
func (noopMetrics) setElems(int)   {}

type promMetrics struct {
	hits    prometheus.Counter
	misses  prometheus.Counter
	inserts prometheus.Counter
	removes prometheus.Counter
	grows   prometheus.Counter
	elems   prometheus.Gauge
}

func newPromMetrics(reg *prometheus.Registry, subsystem string) *promMetrics {
	m := &promMetrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "oha", Subsystem: subsystem, Name: "hits_total",
			Help: "Number of successful lookups.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "oha", Subsystem: subsystem, Name: "misses_total",
			Help: "Number of failed lookups.",
		}),
		inserts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "oha", Subsystem: subsystem, Name: "inserts_total",
			Help: "Number of new entries inserted.",
		}),
		removes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "oha", Subsystem: subsystem, Name: "removes_total",
			Help: "Number of entries removed.",
		}),
		grows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "oha", Subsystem: subsystem, Name: "grows_total",
			Help: "Number of table growth events.",
		}),
		elems: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "oha", Subsystem: subsystem, Name: "elems_in_use",
			Help: "Current number of occupied slots.",
		}),
	}
	reg.MustRegister(m.hits, m.misses, m.inserts, m.removes, m.grows, m.elems)
	return m
}

func (m *promMetrics) incHit()      { m.hits.Inc() }
func (m *promMetrics) incMiss()     { m.misses.Inc() }
func (m *promMetrics) incInsert()   { m.inserts.Inc() }
func (m *promMetrics) incRemove()   { m.removes.Inc() }
func (m *promMetrics) incGrow()     { m.grows.Inc() }
func (m *promMetrics) setElems(n int) { m.elems.Set(float64(n)) }
