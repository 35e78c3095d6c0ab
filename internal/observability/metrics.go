package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the layer API.
type Metrics struct {
	LayerRequests     *prometheus.CounterVec   // labels: layer={temperature,sea_level,heat_island}, outcome={success,invalid,error}
	CellsGenerated    *prometheus.HistogramVec // labels: layer
	RequestDuration   *prometheus.HistogramVec // labels: layer
	RealDataFallbacks prometheus.Counter
	CacheLookups      *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all layer metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		LayerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hexclimate",
			Name:      "layer_requests_total",
			Help:      "Layer generation requests by layer and outcome.",
		}, []string{"layer", "outcome"}),
		CellsGenerated: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hexclimate",
			Name:      "cells_generated",
			Help:      "Number of hexagon features per generated layer.",
			Buckets:   []float64{10, 50, 100, 500, 1000, 5000, 10000, 50000},
		}, []string{"layer"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hexclimate",
			Name:      "request_duration_seconds",
			Help:      "End-to-end layer request duration in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"layer"}),
		RealDataFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hexclimate",
			Name:      "real_data_fallbacks_total",
			Help:      "Requests that asked for archive data and fell back to simulation.",
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hexclimate",
			Name:      "cache_lookups_total",
			Help:      "Layer cache lookups by result.",
		}, []string{"result"}),
	}

	prometheus.MustRegister(
		m.LayerRequests,
		m.CellsGenerated,
		m.RequestDuration,
		m.RealDataFallbacks,
		m.CacheLookups,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests can
// construct servers repeatedly without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		LayerRequests:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "hexclimate", Name: "layer_requests_total"}, []string{"layer", "outcome"}),
		CellsGenerated:    prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "hexclimate", Name: "cells_generated"}, []string{"layer"}),
		RequestDuration:   prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "hexclimate", Name: "request_duration_seconds"}, []string{"layer"}),
		RealDataFallbacks: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hexclimate", Name: "real_data_fallbacks_total"}),
		CacheLookups:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "hexclimate", Name: "cache_lookups_total"}, []string{"result"}),
	}
}
