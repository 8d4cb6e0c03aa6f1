// Package render turns finished reports into downloadable documents.  It
// mirrors the analysis-provider side: a DocumentRenderer contract, a registry
// with availability fallback, and concrete renderer implementations.
package render

import (
	"context"
	"fmt"

	"github.com/medmuse/medmuse-backend/internal/domain/report"
	"github.com/medmuse/medmuse-backend/internal/infrastructure/monitoring/logging"
	"github.com/medmuse/medmuse-backend/pkg/errors"
)

// Canonical renderer identifiers.
const (
	NamePDF = "pdf"
)

// DocumentRenderer produces one document format from a report.
//
// Render must be deterministic: the same report yields byte-identical output,
// so re-rendering after artifact loss reproduces the original document.
type DocumentRenderer interface {
	Render(ctx context.Context, rpt *report.Report) ([]byte, error)
	Available(ctx context.Context) bool
	ContentType() string
	FileExtension() string
	Name() string
}

// Registry holds the configured renderers keyed by identifier, with the same
// default-then-registration-order fallback policy as the provider registry.
type Registry struct {
	byName      map[string]DocumentRenderer
	ordered     []DocumentRenderer
	defaultName string
	logger      logging.Logger
}

func NewRegistry(defaultName string, renderers []DocumentRenderer, logger logging.Logger) (*Registry, error) {
	if len(renderers) == 0 {
		return nil, errors.New(errors.ErrCodeRendererUnavailable, "at least one document renderer is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	byName := make(map[string]DocumentRenderer, len(renderers))
	for _, r := range renderers {
		if _, dup := byName[r.Name()]; dup {
			return nil, errors.New(errors.ErrCodeRendererUnavailable,
				fmt.Sprintf("duplicate document renderer %q", r.Name()))
		}
		byName[r.Name()] = r
	}

	if _, ok := byName[defaultName]; !ok {
		logger.Warn("configured default renderer not registered, falling back to first registered",
			logging.String("configured", defaultName),
			logging.String("fallback", renderers[0].Name()),
		)
		defaultName = renderers[0].Name()
	}

	return &Registry{
		byName:      byName,
		ordered:     renderers,
		defaultName: defaultName,
		logger:      logger.Named("render-registry"),
	}, nil
}

// Default returns the renderer bound to the configured default identifier.
func (r *Registry) Default() DocumentRenderer {
	return r.byName[r.defaultName]
}

// Get returns the renderer with the given identifier.
func (r *Registry) Get(name string) (DocumentRenderer, error) {
	ren, ok := r.byName[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeRendererUnavailable,
			fmt.Sprintf("document renderer %q is not registered", name))
	}
	return ren, nil
}

// Available returns the default renderer when available, otherwise the first
// available renderer in registration order.
func (r *Registry) Available(ctx context.Context) (DocumentRenderer, error) {
	def := r.Default()
	if def.Available(ctx) {
		return def, nil
	}
	r.logger.Warn("default renderer unavailable, trying fallbacks",
		logging.String("default", def.Name()))

	for _, ren := range r.ordered {
		if ren.Name() == def.Name() {
			continue
		}
		if ren.Available(ctx) {
			return ren, nil
		}
	}
	return nil, errors.New(errors.ErrCodeNoRendererAvailable, "no document renderer is currently available")
}

// Names returns all registered identifiers in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ordered))
	for _, ren := range r.ordered {
		names = append(names, ren.Name())
	}
	return names
}
