package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DispatchMetricsCollector handles shipper dispatch metrics
type DispatchMetricsCollector struct {
	dispatchTotal   *prometheus.CounterVec
	candidatesTried *prometheus.HistogramVec
	counterResets   *prometheus.CounterVec
}

// NewDispatchMetricsCollector creates a new dispatch metrics collector
func NewDispatchMetricsCollector() *DispatchMetricsCollector {
	return &DispatchMetricsCollector{
		// Dispatch outcomes by leg kind
		dispatchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "dispatch_total",
				Help:      "Total dispatch attempts by leg kind and outcome",
			},
			[]string{"leg", "status"},
		),

		// How many ranked candidates one dispatch consumed
		candidatesTried: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "dispatch_candidates_tried",
				Help:      "Ranked candidates consumed before a dispatch resolved",
				Buckets:   []float64{1, 2, 3, 4, 5},
			},
			[]string{"leg"},
		),

		// Daily counter reset rows per region
		counterResets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "dispatch_counter_resets_total",
				Help:      "Shipper rows reset by the daily cut-over per region",
			},
			[]string{"region"},
		),
	}
}

// Register registers all dispatch metrics with the Prometheus registry
func (c *DispatchMetricsCollector) Register() error {
	return register(c.dispatchTotal, c.candidatesTried, c.counterResets)
}

// RecordDispatch records one dispatch outcome
func (c *DispatchMetricsCollector) RecordDispatch(leg, status string, candidatesTried int) {
	c.dispatchTotal.WithLabelValues(leg, status).Inc()
	c.candidatesTried.WithLabelValues(leg).Observe(float64(candidatesTried))
}

// RecordCounterReset records the rows touched by one daily reset
func (c *DispatchMetricsCollector) RecordCounterReset(region string, rows int64) {
	c.counterResets.WithLabelValues(region).Add(float64(rows))
}
