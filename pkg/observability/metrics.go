// Package observability exposes Prometheus instrumentation for hosts that
// run many conversions and want visibility into throughput and failure
// modes. The core compiler works without it.
package observability

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the conversion counters and size histogram.
type Metrics struct {
	Conversions *prometheus.CounterVec
	TreeNodes   prometheus.Histogram
}

// NewMetrics creates and registers the conversion metrics against the
// given registerer (use prometheus.DefaultRegisterer for the default).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Conversions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bonsai_conversions_total",
				Help: "Tree-to-text conversions by outcome.",
			},
			[]string{"status"},
		),
		TreeNodes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bonsai_tree_nodes",
				Help:    "Live node count of converted trees.",
				Buckets: prometheus.ExponentialBuckets(4, 2, 12),
			},
		),
	}
	reg.MustRegister(m.Conversions, m.TreeNodes)
	return m
}

// ObserveSuccess records a completed conversion over a tree of the given
// node count.
func (m *Metrics) ObserveSuccess(nodes int) {
	m.Conversions.WithLabelValues("ok").Inc()
	m.TreeNodes.Observe(float64(nodes))
}

// ObserveFailure records an aborted conversion.
func (m *Metrics) ObserveFailure() {
	m.Conversions.WithLabelValues("error").Inc()
}
