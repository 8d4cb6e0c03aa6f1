// Package reporting implements the report generation pipeline: gathering
// analysis input, running it through the provider registry with fallback,
// persisting the result, and rendering the downloadable artifact through a
// detached bounded worker pool.
package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/medmuse/medmuse-backend/internal/domain/report"
	"github.com/medmuse/medmuse-backend/internal/infrastructure/monitoring/logging"
	"github.com/medmuse/medmuse-backend/internal/infrastructure/storage"
	"github.com/medmuse/medmuse-backend/internal/intelligence/provider"
	"github.com/medmuse/medmuse-backend/internal/render"
	"github.com/medmuse/medmuse-backend/pkg/errors"
	"github.com/medmuse/medmuse-backend/pkg/types/common"
)

const (
	defaultMinObservations = 1
	defaultRenderTimeout   = 30 * time.Second
	weeklyPeriodDays       = 7
)

// Config carries the orchestration policy knobs.
type Config struct {
	// MinObservations is the smallest observation count a period must have
	// before analysis runs.
	MinObservations int

	// RenderWorkers and RenderQueueSize bound the detached render stage.
	RenderWorkers   int
	RenderQueueSize int

	// RenderTimeout bounds a single render plus artifact write.
	RenderTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.MinObservations <= 0 {
		c.MinObservations = defaultMinObservations
	}
	if c.RenderTimeout <= 0 {
		c.RenderTimeout = defaultRenderTimeout
	}
}

// Service orchestrates report generation end to end.
//
// Generation is synchronous through analysis and persistence; rendering is
// detached.  A report is therefore visible to reads before its artifact
// exists, and an artifact that never materialises leaves the report fully
// usable.
type Service struct {
	store        report.Store
	observations report.ObservationSource
	demographics report.DemographicsSource
	providers    *provider.Registry
	renderers    *render.Registry
	artifacts    storage.ArtifactStore

	queue   *RenderQueue
	locks   *reportLocks
	metrics Metrics
	logger  logging.Logger
	cfg     Config
	now     func() time.Time
}

func NewService(
	store report.Store,
	observations report.ObservationSource,
	demographics report.DemographicsSource,
	providers *provider.Registry,
	renderers *render.Registry,
	artifacts storage.ArtifactStore,
	cfg Config,
	metrics Metrics,
	logger logging.Logger,
) *Service {
	cfg.applyDefaults()
	if metrics == nil {
		metrics = NewNopMetrics()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &Service{
		store:        store,
		observations: observations,
		demographics: demographics,
		providers:    providers,
		renderers:    renderers,
		artifacts:    artifacts,
		queue:        NewRenderQueue(cfg.RenderWorkers, cfg.RenderQueueSize, logger, metrics),
		locks:        newReportLocks(),
		metrics:      metrics,
		logger:       logger.Named("reporting"),
		cfg:          cfg,
		now:          time.Now,
	}
}

// WithClock overrides the service clock.  Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GenerateWeekly generates a report for the trailing seven-day window ending
// today.
func (s *Service) GenerateWeekly(ctx context.Context, userID common.UserID) (*report.Report, error) {
	end := s.now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -(weeklyPeriodDays - 1))
	return s.GenerateForPeriod(ctx, userID, start, end)
}

// GenerateForPeriod runs the full pipeline for an arbitrary period: collect
// observations and demographics, analyze with provider fallback, persist, and
// schedule artifact rendering.
func (s *Service) GenerateForPeriod(ctx context.Context, userID common.UserID, start, end time.Time) (*report.Report, error) {
	if start.After(end) {
		return nil, errors.New(errors.ErrCodeReportInvalidPeriod, "period start is after period end")
	}

	obs, err := s.observations.ListObservations(ctx, userID, start, end)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list observations")
	}
	if len(obs) < s.cfg.MinObservations {
		return nil, errors.New(errors.ErrCodeReportInsufficientData,
			fmt.Sprintf("period has %d observations, at least %d required", len(obs), s.cfg.MinObservations))
	}

	// Missing demographics degrade the prompt, they do not block the report.
	demo, err := s.demographics.GetDemographics(ctx, userID)
	if err != nil {
		if !errors.IsNotFound(err) {
			return nil, err
		}
		s.logger.Warn("no demographics on file, analyzing without them",
			logging.Int64("user_id", int64(userID)))
		demo = report.Demographics{}
	}

	in := report.AnalysisInput{
		UserID:       userID,
		PeriodStart:  start,
		PeriodEnd:    end,
		Observations: obs,
		Demographics: demo,
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	res, err := s.analyze(ctx, in)
	if err != nil {
		return nil, err
	}

	saved, err := s.store.Save(ctx, report.NewReport(userID, start, end, res))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportPersistFailed, "failed to persist report")
	}

	// The report is durable before render is scheduled; a crash between the
	// two lines loses only the artifact, which fetch re-renders on demand.
	s.scheduleRender(saved)

	s.logger.Info("report generated",
		logging.Int64("report_id", int64(saved.ID)),
		logging.Int64("user_id", int64(userID)),
		logging.String("provider", saved.Provider),
	)
	return saved, nil
}

// analyze walks the provider preference order (default first, then
// registration order), skipping unavailable providers and falling through on
// call failures.  It fails only when every provider is unavailable or failed.
func (s *Service) analyze(ctx context.Context, in report.AnalysisInput) (report.AnalysisResult, error) {
	defaultName := s.providers.Default().Name()

	order := make([]string, 0, len(s.providers.Names()))
	order = append(order, defaultName)
	for _, name := range s.providers.Names() {
		if name != defaultName {
			order = append(order, name)
		}
	}

	var lastErr error
	for _, name := range order {
		p, err := s.providers.Get(name)
		if err != nil {
			continue
		}
		if !p.Available(ctx) {
			s.logger.Warn("analysis provider unavailable, skipping",
				logging.String("provider", name))
			continue
		}

		started := s.now()
		res, err := p.Analyze(ctx, in)
		if err == nil && res.Empty() {
			// A report must never carry empty analysis fields; an all-blank
			// result counts as a provider failure.
			err = errors.New(errors.ErrCodeProviderBadResponse,
				fmt.Sprintf("provider %q returned an empty analysis", name))
		}
		s.metrics.ObserveAnalysis(name, s.now().Sub(started), err == nil)
		if err != nil {
			lastErr = err
			s.logger.Error("analysis provider failed, trying next",
				logging.String("provider", name), logging.Err(err))
			continue
		}

		if name != defaultName {
			s.metrics.RecordProviderFallback(defaultName, name)
		}
		return res, nil
	}

	if lastErr != nil {
		return report.AnalysisResult{}, errors.Wrap(lastErr, errors.ErrCodeNoProviderAvailable,
			"all analysis providers failed")
	}
	return report.AnalysisResult{}, errors.New(errors.ErrCodeNoProviderAvailable,
		"no analysis provider is currently available")
}

// Get returns the report owned by userID.
func (s *Service) Get(ctx context.Context, userID common.UserID, id common.ReportID) (*report.Report, error) {
	return s.store.FindByID(ctx, userID, id)
}

// List returns the user's reports, newest first.
func (s *Service) List(ctx context.Context, userID common.UserID, page common.PageRequest) (common.Page[*report.Report], error) {
	return s.store.ListByUser(ctx, userID, page)
}

// Delete removes a report and, best effort, its artifact.  Deleting a report
// that does not exist (or was already deleted) fails with a not-found error.
func (s *Service) Delete(ctx context.Context, userID common.UserID, id common.ReportID) error {
	rpt, err := s.store.FindByID(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, userID, id); err != nil {
		// Lost a race with a concurrent delete; the report is gone either way.
		if !errors.IsNotFound(err) {
			return err
		}
	}

	if rpt.HasArtifact() {
		if err := s.artifacts.Delete(ctx, rpt.ArtifactRef); err != nil {
			s.logger.Warn("failed to delete report artifact",
				logging.Int64("report_id", int64(id)), logging.Err(err))
		}
	}
	return nil
}

// FetchArtifact returns the rendered document for a report, rendering it on
// demand when the detached stage has not produced it yet or the stored object
// is gone.  The per-report lock guarantees at most one render in flight per
// report even under concurrent fetches.
func (s *Service) FetchArtifact(ctx context.Context, userID common.UserID, id common.ReportID) (*Artifact, error) {
	rpt, err := s.store.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if rpt.HasArtifact() {
		data, err := s.artifacts.Get(ctx, rpt.ArtifactRef)
		if err == nil {
			return s.artifactResponse(rpt, data), nil
		}
		if !errors.IsCode(err, errors.ErrCodeArtifactNotFound) {
			return nil, err
		}
		s.logger.Warn("artifact reference is dangling, re-rendering",
			logging.Int64("report_id", int64(id)),
			logging.String("ref", rpt.ArtifactRef))
	}

	release := s.locks.Lock(id)
	defer release()

	// Another fetch or the detached stage may have rendered while we waited.
	rpt, err = s.store.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if rpt.HasArtifact() {
		if data, err := s.artifacts.Get(ctx, rpt.ArtifactRef); err == nil {
			return s.artifactResponse(rpt, data), nil
		}
	}

	// On-demand renders are bounded by the same timeout as detached ones.
	renderCtx, cancel := context.WithTimeout(ctx, s.cfg.RenderTimeout)
	defer cancel()

	data, err := s.renderLocked(renderCtx, rpt)
	if err != nil {
		return nil, err
	}
	return s.artifactResponse(rpt, data), nil
}

// Artifact is a fetched rendered document.
type Artifact struct {
	Data        []byte
	ContentType string
	Filename    string
}

func (s *Service) artifactResponse(rpt *report.Report, data []byte) *Artifact {
	ext := "pdf"
	if i := strings.LastIndexByte(rpt.ArtifactRef, '.'); i >= 0 && i < len(rpt.ArtifactRef)-1 {
		ext = rpt.ArtifactRef[i+1:]
	}
	return &Artifact{
		Data:        data,
		ContentType: contentTypeForExtension(ext),
		Filename:    fmt.Sprintf("medmuse-report-%d.%s", rpt.ID, ext),
	}
}

func contentTypeForExtension(ext string) string {
	switch ext {
	case "pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// scheduleRender hands the freshly persisted report to the detached stage.
func (s *Service) scheduleRender(rpt *report.Report) {
	snapshot := *rpt
	ok := s.queue.Enqueue(func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, s.cfg.RenderTimeout)
		defer cancel()

		release := s.locks.Lock(snapshot.ID)
		defer release()

		if _, err := s.renderLocked(ctx, &snapshot); err != nil {
			s.logger.Error("detached render failed",
				logging.Int64("report_id", int64(snapshot.ID)), logging.Err(err))
		}
	})
	if !ok {
		s.logger.Warn("render not scheduled, will render on first fetch",
			logging.Int64("report_id", int64(rpt.ID)))
	}
}

// renderLocked renders the report, stores the artifact, and attaches the
// reference.  Callers must hold the report's lock.
func (s *Service) renderLocked(ctx context.Context, rpt *report.Report) ([]byte, error) {
	renderer, err := s.renderers.Available(ctx)
	if err != nil {
		return nil, err
	}

	started := s.now()
	data, err := renderer.Render(ctx, rpt)
	s.metrics.ObserveRender(renderer.Name(), s.now().Sub(started), err == nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRenderFailed, "failed to render report")
	}

	key := artifactKey(rpt, renderer.FileExtension())
	if err := s.artifacts.Put(ctx, key, data, renderer.ContentType()); err != nil {
		return nil, err
	}
	if err := s.store.AttachArtifact(ctx, rpt.ID, key); err != nil {
		return nil, err
	}
	rpt.ArtifactRef = key

	s.logger.Info("report artifact rendered",
		logging.Int64("report_id", int64(rpt.ID)),
		logging.String("renderer", renderer.Name()),
		logging.Int("bytes", len(data)),
	)
	return data, nil
}

// artifactKey builds the server-assigned object key.  No user-supplied string
// is ever part of the key.
func artifactKey(rpt *report.Report, ext string) string {
	return fmt.Sprintf("reports/%d/%d.%s", rpt.UserID, rpt.ID, ext)
}

// Providers exposes the provider registry for diagnostics endpoints.
func (s *Service) Providers() *provider.Registry { return s.providers }

// Shutdown drains the detached render stage.
func (s *Service) Shutdown(ctx context.Context) error {
	return s.queue.Drain(ctx)
}
