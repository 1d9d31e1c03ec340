// Package metrics exposes Prometheus instrumentation for the import pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for import sessions. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	// Imports started, by outcome: ready, blocked, failed, rejected
	ImportsStarted *prometheus.CounterVec

	// Rows seen by validation, by result: valid, invalid
	RowsValidated *prometheus.CounterVec

	DuplicatesDetected prometheus.Counter

	// Committed rows by action: created, overwritten, skipped
	RowsCommitted *prometheus.CounterVec

	// Pipeline stage latency by stage: parse, match, validate, dedupe, commit
	StageDuration *prometheus.HistogramVec

	ActiveSessions prometheus.Gauge
}

// New creates a Metrics instance registered with reg. A nil reg registers
// with the default Prometheus registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		ImportsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rosterimport_imports_total",
			Help: "Total import sessions started by outcome",
		}, []string{"outcome"}),

		RowsValidated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rosterimport_rows_validated_total",
			Help: "Total rows validated by result",
		}, []string{"result"}),

		DuplicatesDetected: factory.NewCounter(prometheus.CounterOpts{
			Name: "rosterimport_duplicates_detected_total",
			Help: "Total imported rows that collided with an existing client",
		}),

		RowsCommitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rosterimport_rows_committed_total",
			Help: "Total rows committed by action",
		}, []string{"action"}),

		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rosterimport_stage_duration_seconds",
			Help:    "Duration of import pipeline stages",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"stage"}),

		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "rosterimport_active_sessions",
			Help: "Import sessions awaiting commit or discard",
		}),
	}
}

// IncrementImport records the outcome of starting an import.
func (m *Metrics) IncrementImport(outcome string) {
	if m != nil {
		m.ImportsStarted.WithLabelValues(outcome).Inc()
	}
}

// AddValidatedRows records the validation split of one run.
func (m *Metrics) AddValidatedRows(valid, invalid int) {
	if m != nil {
		m.RowsValidated.WithLabelValues("valid").Add(float64(valid))
		m.RowsValidated.WithLabelValues("invalid").Add(float64(invalid))
	}
}

// AddDuplicates records detected duplicates.
func (m *Metrics) AddDuplicates(n int) {
	if m != nil {
		m.DuplicatesDetected.Add(float64(n))
	}
}

// AddCommitted records committed rows for an action.
func (m *Metrics) AddCommitted(action string, n int) {
	if m != nil {
		m.RowsCommitted.WithLabelValues(action).Add(float64(n))
	}
}

// ObserveStage records the duration of a pipeline stage.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m != nil {
		m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// SetActiveSessions records the number of open sessions.
func (m *Metrics) SetActiveSessions(n int) {
	if m != nil {
		m.ActiveSessions.Set(float64(n))
	}
}
