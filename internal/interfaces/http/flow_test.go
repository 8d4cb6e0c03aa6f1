package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medmuse/medmuse-backend/internal/application/reporting"
	"github.com/medmuse/medmuse-backend/internal/domain/report"
	"github.com/medmuse/medmuse-backend/internal/infrastructure/storage"
	"github.com/medmuse/medmuse-backend/internal/intelligence/provider"
	httpiface "github.com/medmuse/medmuse-backend/internal/interfaces/http"
	"github.com/medmuse/medmuse-backend/internal/interfaces/http/handlers"
	"github.com/medmuse/medmuse-backend/internal/interfaces/http/middleware"
	"github.com/medmuse/medmuse-backend/internal/render"
	"github.com/medmuse/medmuse-backend/pkg/errors"
	"github.com/medmuse/medmuse-backend/pkg/types/common"
)

// reportStore is an in-memory report.Store for exercising the stack without
// a database.
type reportStore struct {
	mu      sync.Mutex
	nextID  common.ReportID
	records map[common.ReportID]*report.Report
}

func newReportStore() *reportStore {
	return &reportStore{nextID: 1, records: make(map[common.ReportID]*report.Report)}
}

func (s *reportStore) Save(_ context.Context, r *report.Report) (*report.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := *r
	saved.ID = s.nextID
	saved.GeneratedAt = time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	s.nextID++
	s.records[saved.ID] = &saved
	out := saved
	return &out, nil
}

func (s *reportStore) AttachArtifact(_ context.Context, id common.ReportID, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok {
		return errors.New(errors.ErrCodeReportNotFound, "report not found")
	}
	r.ArtifactRef = ref
	return nil
}

func (s *reportStore) FindByID(_ context.Context, userID common.UserID, id common.ReportID) (*report.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok || r.UserID != userID {
		return nil, errors.New(errors.ErrCodeReportNotFound, "report not found")
	}
	out := *r
	return &out, nil
}

func (s *reportStore) ListByUser(_ context.Context, userID common.UserID, page common.PageRequest) (common.Page[*report.Report], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	page = page.Normalize()

	var items []*report.Report
	for _, r := range s.records {
		if r.UserID == userID {
			out := *r
			items = append(items, &out)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID > items[j].ID })

	total := int64(len(items))
	lo := page.Page * page.PageSize
	if lo > len(items) {
		lo = len(items)
	}
	hi := lo + page.PageSize
	if hi > len(items) {
		hi = len(items)
	}
	return common.Page[*report.Report]{
		Items: items[lo:hi], Page: page.Page, PageSize: page.PageSize, TotalItems: total,
	}, nil
}

func (s *reportStore) Delete(_ context.Context, userID common.UserID, id common.ReportID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok || r.UserID != userID {
		return errors.New(errors.ErrCodeReportNotFound, "report not found")
	}
	delete(s.records, id)
	return nil
}

type fixedObservations struct{ obs []report.SymptomObservation }

func (f fixedObservations) ListObservations(context.Context, common.UserID, time.Time, time.Time) ([]report.SymptomObservation, error) {
	return f.obs, nil
}

type fixedDemographics struct{}

func (fixedDemographics) GetDemographics(context.Context, common.UserID) (report.Demographics, error) {
	return report.Demographics{Age: 34, Gender: "female", Weight: 62, Height: "168cm"}, nil
}

// startStack wires the real service, registries, renderer, and an fs-backed
// artifact store behind the full router.
func startStack(t *testing.T) *httptest.Server {
	t.Helper()

	artifacts, err := storage.NewFSStore(t.TempDir(), nil)
	require.NoError(t, err)

	providers, err := provider.NewRegistry("heuristic",
		[]provider.AnalysisProvider{provider.NewHeuristicProvider()}, nil)
	require.NoError(t, err)
	renderers, err := render.NewRegistry(render.NamePDF,
		[]render.DocumentRenderer{render.NewPDFRenderer()}, nil)
	require.NoError(t, err)

	obs := fixedObservations{obs: []report.SymptomObservation{
		{SymptomName: "Headache", Category: "Neurological", Severity: 6, ObservedAt: time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)},
		{SymptomName: "Fatigue", Category: "General", Severity: 4, ObservedAt: time.Date(2026, 8, 21, 9, 0, 0, 0, time.UTC)},
		{SymptomName: "Headache", Category: "Neurological", Severity: 5, ObservedAt: time.Date(2026, 8, 22, 9, 0, 0, 0, time.UTC)},
	}}

	svc := reporting.NewService(
		newReportStore(), obs, fixedDemographics{},
		providers, renderers, artifacts,
		reporting.Config{}, nil, nil,
	)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = svc.Shutdown(ctx)
	})

	router := httpiface.NewRouter(httpiface.RouterConfig{
		ReportHandler:  handlers.NewReportHandler(svc, nil),
		HealthHandler:  handlers.NewHealthHandler(nil, providers),
		AuthMiddleware: middleware.NewAuthMiddleware(nil),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, method, url, body string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("X-User-ID", "42")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeReport(t *testing.T, resp *http.Response) report.Report {
	t.Helper()
	var env struct {
		Data report.Report `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env.Data
}

func TestReportLifecycleOverHTTP(t *testing.T) {
	t.Parallel()

	srv := startStack(t)

	// Generate.
	resp := call(t, http.MethodPost, srv.URL+"/api/v1/reports/generate/custom",
		`{"start_date":"2026-08-17","end_date":"2026-08-23"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	rpt := decodeReport(t, resp)
	assert.Equal(t, "heuristic", rpt.Provider)
	assert.Contains(t, rpt.HealthSummary, "Total symptom entries recorded: 3")

	// List.
	resp = call(t, http.MethodGet, srv.URL+"/api/v1/reports/my", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listEnv struct {
		Data common.Page[report.Report] `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listEnv))
	require.Len(t, listEnv.Data.Items, 1)

	// Get.
	resp = call(t, http.MethodGet, fmt.Sprintf("%s/api/v1/reports/%d", srv.URL, rpt.ID), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Download renders a real PDF, on demand if the detached render has not
	// landed yet.
	resp = call(t, http.MethodGet, fmt.Sprintf("%s/api/v1/reports/%d/pdf", srv.URL, rpt.ID), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	pdf, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, len(pdf) > 4 && string(pdf[:4]) == "%PDF")

	// Delete, then reads report not found.
	resp = call(t, http.MethodDelete, fmt.Sprintf("%s/api/v1/reports/%d", srv.URL, rpt.ID), "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = call(t, http.MethodGet, fmt.Sprintf("%s/api/v1/reports/%d", srv.URL, rpt.ID), "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProvidersEndpoint(t *testing.T) {
	t.Parallel()

	srv := startStack(t)

	resp := call(t, http.MethodGet, srv.URL+"/api/v1/providers", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Registered []string `json:"registered"`
		Available  []string `json:"available"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, []string{"heuristic"}, out.Registered)
	assert.Equal(t, []string{"heuristic"}, out.Available)
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	srv := startStack(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
