// Package middleware holds the HTTP middleware chain: identity extraction,
// request logging, rate limiting, and CORS.
package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/medmuse/medmuse-backend/internal/infrastructure/monitoring/logging"
	"github.com/medmuse/medmuse-backend/pkg/types/common"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey int

const userIDContextKey contextKey = iota

// userIDHeader carries the authenticated subject, set by the edge gateway
// after it validates the session.  The backend trusts this header; the
// gateway strips any client-supplied value.
const userIDHeader = "X-User-ID"

// AuthMiddleware resolves the request's user identity.
type AuthMiddleware struct {
	logger logging.Logger
}

func NewAuthMiddleware(logger logging.Logger) *AuthMiddleware {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &AuthMiddleware{logger: logger.Named("auth")}
}

// Handler rejects requests without a valid user identity and injects the
// user ID into the request context.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(userIDHeader)
		if raw == "" {
			http.Error(w, `{"code":"COMMON_003","message":"authentication required"}`, http.StatusUnauthorized)
			return
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			m.logger.Warn("rejected malformed user identity header")
			http.Error(w, `{"code":"COMMON_003","message":"authentication required"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDContextKey, common.UserID(id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ContextGetUserID returns the authenticated user ID, or false when the
// request was not authenticated.
func ContextGetUserID(ctx context.Context) (common.UserID, bool) {
	id, ok := ctx.Value(userIDContextKey).(common.UserID)
	return id, ok
}

// ContextWithUserID injects a user ID.  Test helper.
func ContextWithUserID(ctx context.Context, id common.UserID) context.Context {
	return context.WithValue(ctx, userIDContextKey, id)
}
