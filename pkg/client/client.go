// Package client is the Go SDK for the MedMuse backend HTTP API.  It is used
// by the medmuse CLI and is importable by other Go services.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultTimeout = 30 * time.Second
	userIDHeader   = "X-User-ID"

	// maxBodySize bounds how much of any response the client will read.
	maxBodySize = 32 << 20
)

// APIError is a structured error response from the backend.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("medmuse: %s (HTTP %d): %s [request_id=%s]", e.Code, e.StatusCode, e.Message, e.RequestID)
}

func (e *APIError) IsNotFound() bool     { return e.StatusCode == http.StatusNotFound }
func (e *APIError) IsUnauthorized() bool { return e.StatusCode == http.StatusUnauthorized }
func (e *APIError) IsRateLimited() bool  { return e.StatusCode == http.StatusTooManyRequests }

// Report mirrors the backend report resource.
type Report struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	PeriodStart     time.Time `json:"period_start"`
	PeriodEnd       time.Time `json:"period_end"`
	GeneratedAt     time.Time `json:"generated_at"`
	HealthSummary   string    `json:"health_summary"`
	RiskAreas       string    `json:"risk_areas"`
	Recommendations string    `json:"recommendations"`
	Provider        string    `json:"provider"`
	ArtifactRef     string    `json:"artifact_ref,omitempty"`
}

// ReportPage is one page of a report listing.
type ReportPage struct {
	Items      []Report `json:"items"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	TotalItems int64    `json:"total_items"`
}

// Document is a downloaded report artifact.
type Document struct {
	Data        []byte
	ContentType string
	Filename    string
}

// envelope mirrors the backend response wrapper.
type envelope[T any] struct {
	Success   bool `json:"success"`
	Data      T    `json:"data"`
	Error     *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	RequestID string `json:"request_id"`
}

// Client talks to one MedMuse backend on behalf of one user.
type Client struct {
	baseURL    string
	userID     int64
	httpClient *http.Client
}

// Option customises the client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// NewClient validates the base URL and constructs a client acting as userID.
func NewClient(baseURL string, userID int64, opts ...Option) (*Client, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("user id must be positive, got %d", userID)
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL scheme must be http or https, got %q", u.Scheme)
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		userID:     userID,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GenerateWeekly requests a report for the trailing week.
func (c *Client) GenerateWeekly(ctx context.Context) (*Report, error) {
	var rpt Report
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/reports/generate", nil, &rpt); err != nil {
		return nil, err
	}
	return &rpt, nil
}

// GenerateForPeriod requests a report for an explicit date range.
func (c *Client) GenerateForPeriod(ctx context.Context, start, end time.Time) (*Report, error) {
	body := map[string]string{
		"start_date": start.Format("2006-01-02"),
		"end_date":   end.Format("2006-01-02"),
	}
	var rpt Report
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/reports/generate/custom", body, &rpt); err != nil {
		return nil, err
	}
	return &rpt, nil
}

// GetReport fetches one report by ID.
func (c *Client) GetReport(ctx context.Context, id int64) (*Report, error) {
	var rpt Report
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/v1/reports/%d", id), nil, &rpt); err != nil {
		return nil, err
	}
	return &rpt, nil
}

// ListReports fetches one page of the caller's reports, newest first.
func (c *Client) ListReports(ctx context.Context, page, pageSize int) (*ReportPage, error) {
	path := fmt.Sprintf("/api/v1/reports/my?page=%d&page_size=%d", page, pageSize)
	var out ReportPage
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteReport removes a report.  Deleting a missing report fails with a
// not-found APIError.
func (c *Client) DeleteReport(ctx context.Context, id int64) error {
	resp, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/reports/%d", id), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		return c.errorFromResponse(resp)
	}
	return nil
}

// DownloadPDF fetches the rendered document for a report.
func (c *Client) DownloadPDF(ctx context.Context, id int64) (*Document, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/reports/%d/pdf", id), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, c.errorFromResponse(resp)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read document body: %w", err)
	}
	return &Document{
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
		Filename:    filenameFromDisposition(resp.Header.Get("Content-Disposition"), id),
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set(userIDHeader, strconv.FormatInt(c.userID, 10))
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

// doJSON performs a request and unwraps the response envelope into result.
func (c *Client) doJSON(ctx context.Context, method, path string, body, result any) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.errorFromResponse(resp)
	}

	var env envelope[json.RawMessage]
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if result != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}

// errorFromResponse builds an APIError from a non-2xx response, degrading
// gracefully when the body is not the standard envelope.
func (c *Client) errorFromResponse(resp *http.Response) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Code:       "UNKNOWN",
		Message:    resp.Status,
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apiErr
	}
	var env envelope[json.RawMessage]
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
		apiErr.RequestID = env.RequestID
		return apiErr
	}
	// Middleware rejections carry a bare {"code","message"} object.
	var bare struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &bare); err == nil && bare.Code != "" {
		apiErr.Code = bare.Code
		apiErr.Message = bare.Message
	}
	return apiErr
}

func filenameFromDisposition(disposition string, id int64) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if name := params["filename"]; name != "" {
				return name
			}
		}
	}
	return fmt.Sprintf("medmuse-report-%d.pdf", id)
}
