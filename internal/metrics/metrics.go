// Package metrics provides Prometheus metrics for the transcription daemon.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "voicelink"

// Metrics holds all Prometheus metrics for the daemon.
type Metrics struct {
	registry *prometheus.Registry

	// Session metrics
	Toggles        *prometheus.CounterVec
	EngineRestarts prometheus.Counter
	EngineErrors   *prometheus.CounterVec

	// Transcript metrics
	FinalsAppended  prometheus.Counter
	FinalsDuplicate prometheus.Counter
	ResultLatency   prometheus.Histogram

	// Translation metrics
	Translations       *prometheus.CounterVec
	TranslationLatency prometheus.Histogram
}

// New creates all metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		Toggles: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "toggles_total",
			Help:      "Session toggles by action (start, stop, ignored)",
		}, []string{"action"}),
		EngineRestarts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "engine_restarts_total",
			Help:      "Automatic engine restarts after an end event",
		}),
		EngineErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "engine_errors_total",
			Help:      "Engine error events by kind",
		}, []string{"kind"}),

		FinalsAppended: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "finals_appended_total",
			Help:      "Final segments appended to the transcript",
		}),
		FinalsDuplicate: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "finals_duplicate_total",
			Help:      "Final segments dropped as engine replays",
		}),
		ResultLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "result_interval_seconds",
			Help:      "Time between consecutive result events",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),

		Translations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translations_total",
			Help:      "Translation responses by outcome (applied, stale, failed)",
		}, []string{"outcome"}),
		TranslationLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "translation_duration_seconds",
			Help:      "Round trip of translation requests",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
	}
}

// Registry exposes the registry for the HTTP handler and tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
