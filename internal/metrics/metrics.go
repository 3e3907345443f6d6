// Package metrics holds the Prometheus collectors for the editing service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups every collector the service updates.
type Metrics struct {
	AIRequests          *prometheus.CounterVec
	AIDuration          *prometheus.HistogramVec
	AnalysisRuns        prometheus.Counter
	SuggestionsResolved *prometheus.CounterVec
	Saves               *prometheus.CounterVec
	SaveDuration        prometheus.Histogram
	Sessions            prometheus.Gauge
	RateLimited         prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AIRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "onepager_ai_requests_total",
				Help: "AI backend requests by kind (generate, refine) and outcome.",
			},
			[]string{"kind", "outcome"},
		),
		AIDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "onepager_ai_request_duration_seconds",
				Help:    "AI backend request latency.",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
			},
			[]string{"kind"},
		),
		AnalysisRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "onepager_analysis_runs_total",
			Help: "Content analysis passes. Unchanged snapshots are not re-analyzed.",
		}),
		SuggestionsResolved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "onepager_suggestions_resolved_total",
				Help: "AI suggestions resolved by outcome (accepted, rejected, superseded, dropped).",
			},
			[]string{"outcome"},
		),
		Saves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "onepager_saves_total",
				Help: "Debounced document writes by outcome.",
			},
			[]string{"outcome"},
		),
		SaveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "onepager_save_duration_seconds",
			Help:    "Document write latency.",
			Buckets: prometheus.DefBuckets,
		}),
		Sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "onepager_sessions",
			Help: "Editing sessions held in memory.",
		}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "onepager_ai_rate_limited_total",
			Help: "AI requests refused by the per-principal rate limit.",
		}),
	}

	reg.MustRegister(
		m.AIRequests,
		m.AIDuration,
		m.AnalysisRuns,
		m.SuggestionsResolved,
		m.Saves,
		m.SaveDuration,
		m.Sessions,
		m.RateLimited,
	)
	return m
}

// ObserveAI records one AI backend call.
func (m *Metrics) ObserveAI(kind string, d time.Duration, err error) {
	m.AIRequests.WithLabelValues(kind, outcome(err)).Inc()
	m.AIDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// ObserveSave records one document write.
func (m *Metrics) ObserveSave(d time.Duration, err error) {
	m.Saves.WithLabelValues(outcome(err)).Inc()
	m.SaveDuration.Observe(d.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
