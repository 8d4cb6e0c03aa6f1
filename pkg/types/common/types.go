// Package common holds shared primitive types used across the MedMuse backend:
// identifiers, pagination, and the generic API response envelope.
package common

import (
	"time"

	"github.com/google/uuid"
)

// UserID identifies a platform user.  Values are assigned by the persistence
// layer and treated as opaque by everything above it.
type UserID int64

// ReportID identifies a persisted health report.
type ReportID int64

// NewRequestID returns a fresh UUID v4 string for request correlation.
func NewRequestID() string {
	return uuid.NewString()
}

// DefaultPageSize is the caller-independent default page size used by all
// paginated listings.
const DefaultPageSize = 20

// MaxPageSize caps caller-supplied page sizes.
const MaxPageSize = 100

// PageRequest defines parameters for paginated requests.  Page is zero-based.
type PageRequest struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// Normalize clamps the request into valid bounds, applying the platform
// defaults for unset fields.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the row offset corresponding to the page request.
func (p PageRequest) Offset() int {
	return p.Page * p.PageSize
}

// Page is a single page of results plus the paging metadata callers need to
// fetch the rest.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
}

// TotalPages derives the page count from TotalItems and PageSize.
func (p Page[T]) TotalPages() int64 {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.TotalItems + int64(p.PageSize) - 1) / int64(p.PageSize)
}

// ErrorDetail provides structured error information for API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIResponse is the generic wrapper for all API responses.
type APIResponse[T any] struct {
	Success   bool         `json:"success"`
	Data      T            `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}
