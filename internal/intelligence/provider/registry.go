package provider

import (
	"context"
	"fmt"

	"github.com/medmuse/medmuse-backend/internal/infrastructure/monitoring/logging"
	"github.com/medmuse/medmuse-backend/pkg/errors"
)

// Registry holds the closed set of configured analysis providers and
// implements the default-then-any-available selection policy.
//
// The registry is built once at process start from configuration and is
// read-only afterwards, so it needs no locking.
type Registry struct {
	byName      map[string]AnalysisProvider
	ordered     []AnalysisProvider // registration order; drives fallback iteration
	defaultName string
	logger      logging.Logger
}

// NewRegistry builds a Registry from the given providers in fallback order.
// defaultName selects the preferred provider; when it does not match any
// registered provider the first registered provider becomes the default, which
// keeps selection deterministic under misconfiguration.
func NewRegistry(defaultName string, providers []AnalysisProvider, logger logging.Logger) (*Registry, error) {
	if len(providers) == 0 {
		return nil, errors.New(errors.ErrCodeProviderNotRegistered, "at least one analysis provider is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	byName := make(map[string]AnalysisProvider, len(providers))
	for _, p := range providers {
		if _, dup := byName[p.Name()]; dup {
			return nil, errors.New(errors.ErrCodeProviderNotRegistered,
				fmt.Sprintf("duplicate analysis provider %q", p.Name()))
		}
		byName[p.Name()] = p
	}

	if _, ok := byName[defaultName]; !ok {
		logger.Warn("configured default analysis provider not registered, falling back to first registered",
			logging.String("configured", defaultName),
			logging.String("fallback", providers[0].Name()),
		)
		defaultName = providers[0].Name()
	}

	return &Registry{
		byName:      byName,
		ordered:     providers,
		defaultName: defaultName,
		logger:      logger.Named("provider-registry"),
	}, nil
}

// Default returns the provider bound to the configured default identifier.
func (r *Registry) Default() AnalysisProvider {
	return r.byName[r.defaultName]
}

// Get returns the provider with the given identifier.
func (r *Registry) Get(name string) (AnalysisProvider, error) {
	p, ok := r.byName[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeProviderNotRegistered,
			fmt.Sprintf("analysis provider %q is not registered", name))
	}
	return p, nil
}

// Available returns the default provider when its probe passes, otherwise the
// first provider in registration order whose probe passes.  Probes are live
// checks and may block on network I/O.
func (r *Registry) Available(ctx context.Context) (AnalysisProvider, error) {
	def := r.Default()
	if def.Available(ctx) {
		return def, nil
	}
	r.logger.Warn("default analysis provider unavailable, trying fallbacks",
		logging.String("default", def.Name()))

	for _, p := range r.ordered {
		if p.Name() == def.Name() {
			continue
		}
		if p.Available(ctx) {
			r.logger.Info("fell back to analysis provider", logging.String("provider", p.Name()))
			return p, nil
		}
	}
	return nil, errors.New(errors.ErrCodeNoProviderAvailable, "no analysis provider is currently available")
}

// ListAvailable probes every registered provider and returns the identifiers
// of those that pass, in registration order.  Intended for diagnostics
// endpoints; each call performs live checks.
func (r *Registry) ListAvailable(ctx context.Context) []string {
	names := make([]string, 0, len(r.ordered))
	for _, p := range r.ordered {
		if p.Available(ctx) {
			names = append(names, p.Name())
		}
	}
	return names
}

// Names returns all registered identifiers in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ordered))
	for _, p := range r.ordered {
		names = append(names, p.Name())
	}
	return names
}
