package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medmuse/medmuse-backend/internal/application/reporting"
	"github.com/medmuse/medmuse-backend/internal/domain/report"
	httpiface "github.com/medmuse/medmuse-backend/internal/interfaces/http"
	"github.com/medmuse/medmuse-backend/internal/interfaces/http/handlers"
	"github.com/medmuse/medmuse-backend/internal/interfaces/http/middleware"
	"github.com/medmuse/medmuse-backend/pkg/errors"
	"github.com/medmuse/medmuse-backend/pkg/types/common"
)

// stubService is a function-field double for the report service.
type stubService struct {
	generateWeekly    func(ctx context.Context, userID common.UserID) (*report.Report, error)
	generateForPeriod func(ctx context.Context, userID common.UserID, start, end time.Time) (*report.Report, error)
	get               func(ctx context.Context, userID common.UserID, id common.ReportID) (*report.Report, error)
	list              func(ctx context.Context, userID common.UserID, page common.PageRequest) (common.Page[*report.Report], error)
	del               func(ctx context.Context, userID common.UserID, id common.ReportID) error
	fetchArtifact     func(ctx context.Context, userID common.UserID, id common.ReportID) (*reporting.Artifact, error)
}

func (s *stubService) GenerateWeekly(ctx context.Context, userID common.UserID) (*report.Report, error) {
	return s.generateWeekly(ctx, userID)
}
func (s *stubService) GenerateForPeriod(ctx context.Context, userID common.UserID, start, end time.Time) (*report.Report, error) {
	return s.generateForPeriod(ctx, userID, start, end)
}
func (s *stubService) Get(ctx context.Context, userID common.UserID, id common.ReportID) (*report.Report, error) {
	return s.get(ctx, userID, id)
}
func (s *stubService) List(ctx context.Context, userID common.UserID, page common.PageRequest) (common.Page[*report.Report], error) {
	return s.list(ctx, userID, page)
}
func (s *stubService) Delete(ctx context.Context, userID common.UserID, id common.ReportID) error {
	return s.del(ctx, userID, id)
}
func (s *stubService) FetchArtifact(ctx context.Context, userID common.UserID, id common.ReportID) (*reporting.Artifact, error) {
	return s.fetchArtifact(ctx, userID, id)
}

func newTestServer(t *testing.T, svc handlers.ReportService) *httptest.Server {
	t.Helper()

	router := httpiface.NewRouter(httpiface.RouterConfig{
		ReportHandler:  handlers.NewReportHandler(svc, nil),
		AuthMiddleware: middleware.NewAuthMiddleware(nil),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doRequest(t *testing.T, method, url, userID, body string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func sampleReport(id common.ReportID, userID common.UserID) *report.Report {
	return &report.Report{
		ID:            id,
		UserID:        userID,
		PeriodStart:   time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC),
		PeriodEnd:     time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC),
		GeneratedAt:   time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC),
		HealthSummary: "summary",
		Provider:      "heuristic",
	}
}

func TestGenerateEndpoint(t *testing.T) {
	t.Parallel()

	svc := &stubService{
		generateWeekly: func(_ context.Context, userID common.UserID) (*report.Report, error) {
			return sampleReport(1, userID), nil
		},
	}
	srv := newTestServer(t, svc)

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/reports/generate", "42", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var env struct {
		Success bool          `json:"success"`
		Data    report.Report `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.True(t, env.Success)
	assert.Equal(t, common.UserID(42), env.Data.UserID)
	assert.Equal(t, "heuristic", env.Data.Provider)
}

func TestGenerateRequiresAuth(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubService{})

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/reports/generate", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doRequest(t, http.MethodPost, srv.URL+"/api/v1/reports/generate", "not-a-number", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGenerateCustomEndpoint(t *testing.T) {
	t.Parallel()

	var gotStart, gotEnd time.Time
	svc := &stubService{
		generateForPeriod: func(_ context.Context, userID common.UserID, start, end time.Time) (*report.Report, error) {
			gotStart, gotEnd = start, end
			return sampleReport(2, userID), nil
		},
	}
	srv := newTestServer(t, svc)

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/reports/generate/custom", "42",
		`{"start_date":"2026-08-01","end_date":"2026-08-07"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), gotStart)
	assert.Equal(t, time.Date(2026, 8, 7, 0, 0, 0, 0, time.UTC), gotEnd)
}

func TestGenerateCustomRejectsBadDates(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubService{})

	for _, body := range []string{
		`not json`,
		`{"start_date":"2026/08/01","end_date":"2026-08-07"}`,
		`{"start_date":"2026-08-01"}`,
	} {
		resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/reports/generate/custom", "42", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}
}

func TestGenerateCustomMapsDomainErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid period", errors.New(errors.ErrCodeReportInvalidPeriod, "start after end"), http.StatusBadRequest},
		{"insufficient data", errors.New(errors.ErrCodeReportInsufficientData, "no observations"), http.StatusBadRequest},
		{"providers exhausted", errors.New(errors.ErrCodeNoProviderAvailable, "none available"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubService{
				generateForPeriod: func(context.Context, common.UserID, time.Time, time.Time) (*report.Report, error) {
					return nil, tt.err
				},
			}
			srv := newTestServer(t, svc)

			resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/reports/generate/custom", "42",
				`{"start_date":"2026-08-01","end_date":"2026-08-07"}`)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestListEndpoint(t *testing.T) {
	t.Parallel()

	var gotPage common.PageRequest
	svc := &stubService{
		list: func(_ context.Context, userID common.UserID, page common.PageRequest) (common.Page[*report.Report], error) {
			gotPage = page
			return common.Page[*report.Report]{
				Items:      []*report.Report{sampleReport(1, userID)},
				Page:       page.Page,
				PageSize:   page.PageSize,
				TotalItems: 1,
			}, nil
		},
	}
	srv := newTestServer(t, svc)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/reports/my?page=2&page_size=10", "42", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, common.PageRequest{Page: 2, PageSize: 10}, gotPage)
}

func TestGetEndpoint(t *testing.T) {
	t.Parallel()

	svc := &stubService{
		get: func(_ context.Context, userID common.UserID, id common.ReportID) (*report.Report, error) {
			if id != 7 {
				return nil, errors.New(errors.ErrCodeReportNotFound, "report not found")
			}
			return sampleReport(id, userID), nil
		},
	}
	srv := newTestServer(t, svc)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/reports/7", "42", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, srv.URL+"/api/v1/reports/8", "42", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, srv.URL+"/api/v1/reports/abc", "42", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDownloadEndpoint(t *testing.T) {
	t.Parallel()

	svc := &stubService{
		fetchArtifact: func(_ context.Context, _ common.UserID, id common.ReportID) (*reporting.Artifact, error) {
			return &reporting.Artifact{
				Data:        []byte("%PDF fake"),
				ContentType: "application/pdf",
				Filename:    "medmuse-report-7.pdf",
			}, nil
		},
	}
	srv := newTestServer(t, svc)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/reports/7/pdf", "42", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="medmuse-report-7.pdf"`, resp.Header.Get("Content-Disposition"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF fake"), body)
}

func TestDeleteEndpoint(t *testing.T) {
	t.Parallel()

	svc := &stubService{
		del: func(context.Context, common.UserID, common.ReportID) error { return nil },
	}
	srv := newTestServer(t, svc)

	resp := doRequest(t, http.MethodDelete, srv.URL+"/api/v1/reports/7", "42", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestDeleteEndpointMissingReport(t *testing.T) {
	t.Parallel()

	svc := &stubService{
		del: func(context.Context, common.UserID, common.ReportID) error {
			return errors.New(errors.ErrCodeReportNotFound, "report not found")
		},
	}
	srv := newTestServer(t, svc)

	resp := doRequest(t, http.MethodDelete, srv.URL+"/api/v1/reports/7", "42", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
