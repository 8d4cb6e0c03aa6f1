// Package http wires the middleware chain, handlers, and server lifecycle
// into the backend's HTTP surface.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/medmuse/medmuse-backend/internal/interfaces/http/handlers"
	"github.com/medmuse/medmuse-backend/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies of the
// route tree.
type RouterConfig struct {
	ReportHandler *handlers.ReportHandler
	HealthHandler *handlers.HealthHandler

	AuthMiddleware      *middleware.AuthMiddleware
	LoggingMiddleware   *middleware.LoggingMiddleware
	RateLimitMiddleware *middleware.RateLimitMiddleware
	CORS                func(http.Handler) http.Handler

	MetricsHandler http.Handler
	MetricsPath    string

	MaxBodySize int64
}

// NewRouter builds the complete route tree: global middleware, public health
// endpoints, the metrics endpoint, and the authenticated /api/v1 group.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if cfg.MaxBodySize > 0 {
		r.Use(chimw.RequestSize(cfg.MaxBodySize))
	}
	if cfg.CORS != nil {
		r.Use(cfg.CORS)
	}
	if cfg.LoggingMiddleware != nil {
		r.Use(cfg.LoggingMiddleware.Handler)
	}

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsHandler != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(api chi.Router) {
		if cfg.AuthMiddleware != nil {
			api.Use(cfg.AuthMiddleware.Handler)
		}
		if cfg.RateLimitMiddleware != nil {
			api.Use(cfg.RateLimitMiddleware.Handler)
		}

		if cfg.ReportHandler != nil {
			cfg.ReportHandler.RegisterRoutes(api)
		}
		if cfg.HealthHandler != nil {
			api.Get("/providers", cfg.HealthHandler.Providers)
		}
	})

	return r
}
