package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ProviderMetricsCollector handles shipping-provider call metrics
type ProviderMetricsCollector struct {
	callsTotal   *prometheus.CounterVec
	callDuration *prometheus.HistogramVec
	retriesTotal *prometheus.CounterVec
	staleServed  *prometheus.CounterVec
}

// NewProviderMetricsCollector creates a new provider metrics collector
func NewProviderMetricsCollector() *ProviderMetricsCollector {
	return &ProviderMetricsCollector{
		// Provider calls by provider, operation, and outcome
		callsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "provider_calls_total",
				Help:      "Total shipping provider calls by provider, operation, and outcome",
			},
			[]string{"provider", "operation", "status"},
		),

		// Provider call duration histogram
		callDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "provider_call_duration_seconds",
				Help:      "Shipping provider call duration distribution",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 4.0, 8.0},
			},
			[]string{"provider", "operation"},
		),

		// Retry attempts per provider and operation
		retriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "provider_retries_total",
				Help:      "Total shipping provider retry attempts",
			},
			[]string{"provider", "operation"},
		),

		// Stale cache degradations served in place of a live answer
		staleServed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "provider_stale_served_total",
				Help:      "Tracking reads answered from stale cache during provider outages",
			},
			[]string{"provider"},
		),
	}
}

// Register registers all provider metrics with the Prometheus registry
func (c *ProviderMetricsCollector) Register() error {
	return register(c.callsTotal, c.callDuration, c.retriesTotal, c.staleServed)
}

// RecordCall records one provider call outcome
func (c *ProviderMetricsCollector) RecordCall(provider, operation, status string, seconds float64) {
	c.callsTotal.WithLabelValues(provider, operation, status).Inc()
	c.callDuration.WithLabelValues(provider, operation).Observe(seconds)
}

// RecordRetry records one retry attempt
func (c *ProviderMetricsCollector) RecordRetry(provider, operation string) {
	c.retriesTotal.WithLabelValues(provider, operation).Inc()
}

// RecordStaleServed records a stale-cache degradation
func (c *ProviderMetricsCollector) RecordStaleServed(provider string) {
	c.staleServed.WithLabelValues(provider).Inc()
}
