package reporting

import "time"

// Metrics receives pipeline observations.  The prometheus implementation
// lives in infrastructure/monitoring; a no-op implementation backs tests and
// metric-less deployments.
type Metrics interface {
	ObserveAnalysis(provider string, d time.Duration, success bool)
	RecordProviderFallback(defaultProvider, usedProvider string)
	ObserveRender(renderer string, d time.Duration, success bool)
	SetRenderQueueDepth(depth int)
}

type nopMetrics struct{}

func NewNopMetrics() Metrics { return nopMetrics{} }

func (nopMetrics) ObserveAnalysis(string, time.Duration, bool) {}
func (nopMetrics) RecordProviderFallback(string, string)       {}
func (nopMetrics) ObserveRender(string, time.Duration, bool)   {}
func (nopMetrics) SetRenderQueueDepth(int)                     {}
