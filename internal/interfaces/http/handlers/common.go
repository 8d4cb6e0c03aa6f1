// Package handlers implements the HTTP endpoints of the report API.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/medmuse/medmuse-backend/internal/interfaces/http/middleware"
	"github.com/medmuse/medmuse-backend/pkg/errors"
	"github.com/medmuse/medmuse-backend/pkg/types/common"
)

// requireUserID extracts the authenticated user or writes a 401.
func requireUserID(w http.ResponseWriter, r *http.Request) (common.UserID, bool) {
	userID, ok := middleware.ContextGetUserID(r.Context())
	if !ok {
		writeAppError(w, r, errors.New(errors.ErrCodeUnauthorized, "authentication required"))
		return 0, false
	}
	return userID, true
}

// parsePagination extracts page and page_size query parameters.
func parsePagination(r *http.Request) common.PageRequest {
	var page common.PageRequest
	if v := r.URL.Query().Get("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			page.Page = p
		}
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		if ps, err := strconv.Atoi(v); err == nil {
			page.PageSize = ps
		}
	}
	return page.Normalize()
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeData wraps data in the standard response envelope.
func writeData(w http.ResponseWriter, r *http.Request, statusCode int, data any) {
	writeJSON(w, statusCode, common.APIResponse[any]{
		Success:   true,
		Data:      data,
		RequestID: chimw.GetReqID(r.Context()),
		Timestamp: time.Now().UTC(),
	})
}

// writeAppError maps application errors to status codes through their error
// code; everything unrecognised collapses to a masked 500.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status := code.HTTPStatus()

	message := "internal server error"
	if status < http.StatusInternalServerError {
		if appErr, ok := err.(*errors.AppError); ok {
			message = appErr.Message
		} else {
			message = err.Error()
		}
	}

	writeJSON(w, status, common.APIResponse[any]{
		Success: false,
		Error: &common.ErrorDetail{
			Code:    string(code),
			Message: message,
		},
		RequestID: chimw.GetReqID(r.Context()),
		Timestamp: time.Now().UTC(),
	})
}
