// Package metrics defines the Prometheus collectors for the search index.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors for the search index.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	RebuildsTotal         *prometheus.CounterVec
	RebuildDuration       prometheus.Histogram
	MaintenanceOpsTotal   *prometheus.CounterVec
	MaintenanceErrors     *prometheus.CounterVec
	TokenizerFallbacks    prometheus.Counter
	IndexEntries          prometheus.Gauge
	CapabilityProbeFailed prometheus.Counter
}

// New creates the collectors and registers them on reg.
// Pass prometheus.NewRegistry() in tests to keep them isolated.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RebuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_index_rebuilds_total",
				Help: "Full index rebuilds by trigger reason (forced, version_mismatch, empty, manual).",
			},
			[]string{"reason"},
		),
		RebuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_index_rebuild_duration_seconds",
				Help:    "Full index rebuild latency in seconds.",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
			},
		),
		MaintenanceOpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_index_maintenance_ops_total",
				Help: "Synchronous index maintenance operations by entity kind and op.",
			},
			[]string{"kind", "op"},
		),
		MaintenanceErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_index_maintenance_errors_total",
				Help: "Index maintenance failures that aborted the triggering entity write.",
			},
			[]string{"kind", "op"},
		),
		TokenizerFallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "search_index_tokenizer_fallbacks_total",
				Help: "Times the enriched tokenizer was rejected and the plain one used.",
			},
		),
		IndexEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "search_index_entries",
				Help: "Number of index entries after the last bootstrap or rebuild.",
			},
		),
		CapabilityProbeFailed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "search_index_capability_probe_failures_total",
				Help: "Startup probes that found no full-text capability.",
			},
		),
	}

	reg.MustRegister(
		m.RebuildsTotal,
		m.RebuildDuration,
		m.MaintenanceOpsTotal,
		m.MaintenanceErrors,
		m.TokenizerFallbacks,
		m.IndexEntries,
		m.CapabilityProbeFailed,
	)

	return m
}

// ObserveRebuild records one completed rebuild.
func (m *Metrics) ObserveRebuild(reason string, took time.Duration, entries int) {
	if m == nil {
		return
	}
	m.RebuildsTotal.WithLabelValues(reason).Inc()
	m.RebuildDuration.Observe(took.Seconds())
	m.IndexEntries.Set(float64(entries))
}

// ObserveMaintenance records one maintainer call and whether it failed.
func (m *Metrics) ObserveMaintenance(kind, op string, err error) {
	if m == nil {
		return
	}
	m.MaintenanceOpsTotal.WithLabelValues(kind, op).Inc()
	if err != nil {
		m.MaintenanceErrors.WithLabelValues(kind, op).Inc()
	}
}

// ObserveFallback records a tokenizer fallback.
func (m *Metrics) ObserveFallback() {
	if m == nil {
		return
	}
	m.TokenizerFallbacks.Inc()
}

// ObserveProbeFailure records a failed capability probe.
func (m *Metrics) ObserveProbeFailure() {
	if m == nil {
		return
	}
	m.CapabilityProbeFailed.Inc()
}

// SetEntries sets the index size gauge.
func (m *Metrics) SetEntries(n int) {
	if m == nil {
		return
	}
	m.IndexEntries.Set(float64(n))
}
