// Package metrics provides observability for the transform pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics the transform layer reports. A nil
// *Metrics is valid and records nothing, so tests can skip registration.
type Metrics struct {
	// Rows entering the partitioner, by domain
	RowsProcessed *prometheus.CounterVec

	// Rows routed to quarantine, by domain and reason
	RowsQuarantined *prometheus.CounterVec

	// Silent confidence-interval bound swaps
	IntervalRepairs prometheus.Counter
}

// New creates a Metrics instance registered on the default registry.
func New() *Metrics {
	return &Metrics{
		RowsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "onetl_transform_rows_total",
			Help: "Total SKA rows processed by the transform pipeline",
		}, []string{"domain"}),

		RowsQuarantined: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "onetl_transform_rows_quarantined_total",
			Help: "Total SKA rows routed to quarantine by rejection reason",
		}, []string{"domain", "reason"}),

		IntervalRepairs: promauto.NewCounter(prometheus.CounterOpts{
			Name: "onetl_transform_interval_repairs_total",
			Help: "Total confidence-interval bound pairs swapped during normalization",
		}),
	}
}

// ObserveRow records one processed row for a domain.
func (m *Metrics) ObserveRow(domain string) {
	if m != nil {
		m.RowsProcessed.WithLabelValues(domain).Inc()
	}
}

// ObserveQuarantine records one quarantined row.
func (m *Metrics) ObserveQuarantine(domain, reason string) {
	if m != nil {
		m.RowsQuarantined.WithLabelValues(domain, reason).Inc()
	}
}

// ObserveRepair records one interval repair.
func (m *Metrics) ObserveRepair() {
	if m != nil {
		m.IntervalRepairs.Inc()
	}
}
