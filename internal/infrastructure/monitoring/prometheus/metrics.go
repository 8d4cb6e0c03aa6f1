// Package prometheus implements pipeline metrics on the Prometheus client.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics implements reporting.Metrics.
type Metrics struct {
	registry *prometheus.Registry

	analysisDuration  *prometheus.HistogramVec
	analysisTotal     *prometheus.CounterVec
	providerFallbacks *prometheus.CounterVec
	renderDuration    *prometheus.HistogramVec
	renderTotal       *prometheus.CounterVec
	renderQueueDepth  prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		analysisDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "medmuse",
			Subsystem: "report",
			Name:      "analysis_duration_seconds",
			Help:      "Wall time of one analysis provider call.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"provider"}),
		analysisTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medmuse",
			Subsystem: "report",
			Name:      "analysis_total",
			Help:      "Analysis provider calls by outcome.",
		}, []string{"provider", "outcome"}),
		providerFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medmuse",
			Subsystem: "report",
			Name:      "provider_fallbacks_total",
			Help:      "Times a non-default provider produced the analysis.",
		}, []string{"default", "used"}),
		renderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "medmuse",
			Subsystem: "report",
			Name:      "render_duration_seconds",
			Help:      "Wall time of one artifact render.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"renderer"}),
		renderTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medmuse",
			Subsystem: "report",
			Name:      "render_total",
			Help:      "Artifact renders by outcome.",
		}, []string{"renderer", "outcome"}),
		renderQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "medmuse",
			Subsystem: "report",
			Name:      "render_queue_depth",
			Help:      "Queued, not yet started render tasks.",
		}),
	}

	m.registry.MustRegister(
		m.analysisDuration, m.analysisTotal, m.providerFallbacks,
		m.renderDuration, m.renderTotal, m.renderQueueDepth,
	)
	return m
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

func (m *Metrics) ObserveAnalysis(provider string, d time.Duration, success bool) {
	m.analysisDuration.WithLabelValues(provider).Observe(d.Seconds())
	m.analysisTotal.WithLabelValues(provider, outcome(success)).Inc()
}

func (m *Metrics) RecordProviderFallback(defaultProvider, usedProvider string) {
	m.providerFallbacks.WithLabelValues(defaultProvider, usedProvider).Inc()
}

func (m *Metrics) ObserveRender(renderer string, d time.Duration, success bool) {
	m.renderDuration.WithLabelValues(renderer).Observe(d.Seconds())
	m.renderTotal.WithLabelValues(renderer, outcome(success)).Inc()
}

func (m *Metrics) SetRenderQueueDepth(depth int) {
	m.renderQueueDepth.Set(float64(depth))
}

// Handler returns the exposition endpoint handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
