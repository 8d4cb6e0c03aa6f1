package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/medmuse/medmuse-backend/internal/infrastructure/monitoring/logging"
)

// LoggingMiddleware emits one structured log line per request.
type LoggingMiddleware struct {
	logger logging.Logger
}

func NewLoggingMiddleware(logger logging.Logger) *LoggingMiddleware {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &LoggingMiddleware{logger: logger.Named("http")}
}

func (m *LoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()

		next.ServeHTTP(ww, r)

		fields := []logging.Field{
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", ww.Status()),
			logging.Int("bytes", ww.BytesWritten()),
			logging.Duration("duration", time.Since(started)),
			logging.String("request_id", chimw.GetReqID(r.Context())),
		}
		if userID, ok := ContextGetUserID(r.Context()); ok {
			fields = append(fields, logging.Int64("user_id", int64(userID)))
		}

		switch {
		case ww.Status() >= 500:
			m.logger.Error("request completed", fields...)
		case ww.Status() >= 400:
			m.logger.Warn("request completed", fields...)
		default:
			m.logger.Info("request completed", fields...)
		}
	})
}
