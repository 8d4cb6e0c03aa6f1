package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/medmuse/medmuse-backend/internal/application/reporting"
	"github.com/medmuse/medmuse-backend/internal/domain/report"
	"github.com/medmuse/medmuse-backend/internal/infrastructure/monitoring/logging"
	"github.com/medmuse/medmuse-backend/pkg/errors"
	"github.com/medmuse/medmuse-backend/pkg/types/common"
)

// ReportService is the application surface the handler drives.
type ReportService interface {
	GenerateWeekly(ctx context.Context, userID common.UserID) (*report.Report, error)
	GenerateForPeriod(ctx context.Context, userID common.UserID, start, end time.Time) (*report.Report, error)
	Get(ctx context.Context, userID common.UserID, id common.ReportID) (*report.Report, error)
	List(ctx context.Context, userID common.UserID, page common.PageRequest) (common.Page[*report.Report], error)
	Delete(ctx context.Context, userID common.UserID, id common.ReportID) error
	FetchArtifact(ctx context.Context, userID common.UserID, id common.ReportID) (*reporting.Artifact, error)
}

// ReportHandler serves the report endpoints.
type ReportHandler struct {
	service ReportService
	logger  logging.Logger
}

func NewReportHandler(service ReportService, logger logging.Logger) *ReportHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ReportHandler{service: service, logger: logger.Named("report-handler")}
}

// RegisterRoutes mounts the report routes on the given router.
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Post("/generate", h.Generate)
		r.Post("/generate/custom", h.GenerateCustom)
		r.Get("/my", h.ListMy)
		r.Get("/{id}", h.GetByID)
		r.Get("/{id}/pdf", h.Download)
		r.Delete("/{id}", h.Delete)
	})
}

// Generate creates a report for the trailing week.
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	rpt, err := h.service.GenerateWeekly(r.Context(), userID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeData(w, r, http.StatusCreated, rpt)
}

const periodDateLayout = "2006-01-02"

type customPeriodRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// GenerateCustom creates a report for a caller-supplied period.
func (h *ReportHandler) GenerateCustom(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req customPeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, r, errors.New(errors.ErrCodeBadRequest, "invalid request body"))
		return
	}
	start, err := time.ParseInLocation(periodDateLayout, req.StartDate, time.UTC)
	if err != nil {
		writeAppError(w, r, errors.New(errors.ErrCodeBadRequest, "start_date must be YYYY-MM-DD"))
		return
	}
	end, err := time.ParseInLocation(periodDateLayout, req.EndDate, time.UTC)
	if err != nil {
		writeAppError(w, r, errors.New(errors.ErrCodeBadRequest, "end_date must be YYYY-MM-DD"))
		return
	}

	rpt, err := h.service.GenerateForPeriod(r.Context(), userID, start, end)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeData(w, r, http.StatusCreated, rpt)
}

// ListMy returns the caller's reports, newest first.
func (h *ReportHandler) ListMy(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	page, err := h.service.List(r.Context(), userID, parsePagination(r))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, page)
}

// GetByID returns one report.
func (h *ReportHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := reportIDParam(w, r)
	if !ok {
		return
	}

	rpt, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, rpt)
}

// Download streams the rendered document.
func (h *ReportHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := reportIDParam(w, r)
	if !ok {
		return
	}

	art, err := h.service.FetchArtifact(r.Context(), userID, id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(art.Data)
}

// Delete removes a report.  Deleting a missing or already deleted report
// responds 404.
func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := reportIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func reportIDParam(w http.ResponseWriter, r *http.Request) (common.ReportID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeAppError(w, r, errors.New(errors.ErrCodeBadRequest, "report id must be a positive integer"))
		return 0, false
	}
	return common.ReportID(id), true
}
