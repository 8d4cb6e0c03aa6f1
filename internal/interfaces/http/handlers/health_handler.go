package handlers

import (
	"context"
	"net/http"
	"time"
)

// Checker verifies one dependency for readiness.
type Checker func(ctx context.Context) error

// ProviderLister reports which analysis providers currently pass their
// availability probes.
type ProviderLister interface {
	Names() []string
	ListAvailable(ctx context.Context) []string
}

// HealthHandler serves liveness, readiness, and provider diagnostics.
type HealthHandler struct {
	checkers  map[string]Checker
	providers ProviderLister
}

func NewHealthHandler(checkers map[string]Checker, providers ProviderLister) *HealthHandler {
	return &HealthHandler{checkers: checkers, providers: providers}
}

// Liveness reports process health only; it never touches dependencies.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness checks every registered dependency.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checkers))
	for name, check := range h.checkers {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}
	writeJSON(w, status, results)
}

// Providers reports registered and currently available analysis providers.
// Each call runs live probes and may be slow.
func (h *HealthHandler) Providers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	writeJSON(w, http.StatusOK, map[string]any{
		"registered": h.providers.Names(),
		"available":  h.providers.ListAvailable(ctx),
	})
}
