// Package observe groups the Prometheus instruments for the turn
// pipeline.
package observe

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all instruments the orchestrator records.
type Metrics struct {
	Turns           *prometheus.CounterVec
	Classifications *prometheus.CounterVec
	RecallDegraded  prometheus.Counter
	RecallSize      prometheus.Histogram
	ModelLatency    prometheus.Histogram
}

// NewMetrics registers the instruments under the given namespace on the
// default registry.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		Turns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Completed turns by outcome (persisted, failed, persist_failed, memory_write_failed).",
		}, []string{"outcome"}),
		Classifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Scope classifications by label.",
		}, []string{"scope"}),
		RecallDegraded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recall_degraded_total",
			Help:      "Turns that proceeded with empty recall after a store failure.",
		}),
		RecallSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recall_size",
			Help:      "Number of memory snippets injected per turn.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		}),
		ModelLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_latency_ms",
			Help:      "Language model call latency in milliseconds.",
			Buckets:   []float64{100, 300, 700, 1500, 3000, 6000, 12000, 30000},
		}),
	}
}

// ObserveModelLatency records one model call duration.
func (m *Metrics) ObserveModelLatency(d time.Duration) {
	m.ModelLatency.Observe(float64(d.Milliseconds()))
}

// MetricsHandler exposes the default registry for scraping.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
