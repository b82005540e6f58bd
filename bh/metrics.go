package bh

// © 2025 oha authors. MIT License.

import "github.com/prometheus/client_golang/prometheus"

type metricsSink interface {
	incInsert()
	incDelete()
	incChangeKey()
	setElems(n int)
}

type noopMetrics struct{}

func (noopMetrics) incInsert()      {}
func (noopMetrics) incDelete()      {}
func (noopMetrics) incChangeKey()   {}
func (noopMetrics) setElems(int)    {}

type promMetrics struct {
	inserts    prometheus.Counter
	deletes    prometheus.Counter
	changeKeys prometheus.Counter
	elems      prometheus.Gauge
}

func newPromMetrics(reg *prometheus.Registry, subsystem string) *promMetrics {
	m := &promMetrics{
		inserts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "oha", Subsystem: subsystem, Name: "inserts_total",
			Help: "Number of heap insertions.",
		}),
		deletes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "oha", Subsystem: subsystem, Name: "delete_min_total",
			Help: "Number of delete-min calls.",
		}),
		changeKeys: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "oha", Subsystem: subsystem, Name: "change_key_total",
			Help: "Number of change-key calls.",
		}),
		elems: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "oha", Subsystem: subsystem, Name: "elems_in_use",
			Help: "Current number of occupied heap slots.",
		}),
	}
	reg.MustRegister(m.inserts, m.deletes, m.changeKeys, m.elems)
	return m
}

func (m *promMetrics) incInsert()      { m.inserts.Inc() }
func (m *promMetrics) incDelete()      { m.deletes.Inc() }
func (m *promMetrics) incChangeKey()   { m.changeKeys.Inc() }
func (m *promMetrics) setElems(n int)  { m.elems.Set(float64(n)) }
