package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/medmuse/medmuse-backend/internal/infrastructure/monitoring/logging"
)

// RateLimiter decides whether a request identified by key may proceed within
// the current window.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisCounter is the subset of the redis client the limiter needs.
type RedisCounter interface {
	Key(raw string) string
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

const rateLimitWindow = time.Minute

// RedisLimiter implements a fixed one-minute window on Redis so limits hold
// across backend replicas.
type RedisLimiter struct {
	counter RedisCounter
	limit   int
}

func NewRedisLimiter(counter RedisCounter, limit int) *RedisLimiter {
	return &RedisLimiter{counter: counter, limit: limit}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	window := time.Now().Unix() / int64(rateLimitWindow.Seconds())
	redisKey := l.counter.Key(fmt.Sprintf("ratelimit:%s:%d", key, window))

	n, err := l.counter.IncrWithTTL(ctx, redisKey, rateLimitWindow)
	if err != nil {
		return false, err
	}
	return n <= int64(l.limit), nil
}

// MemoryLimiter is the in-process fixed-window fallback used when Redis is
// not configured.  Limits are per replica.
type MemoryLimiter struct {
	limit int

	mu     sync.Mutex
	window int64
	counts map[string]int
}

func NewMemoryLimiter(limit int) *MemoryLimiter {
	return &MemoryLimiter{limit: limit, counts: make(map[string]int)}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	window := time.Now().Unix() / int64(rateLimitWindow.Seconds())

	l.mu.Lock()
	defer l.mu.Unlock()
	if window != l.window {
		l.window = window
		l.counts = make(map[string]int)
	}
	l.counts[key]++
	return l.counts[key] <= l.limit, nil
}

// RateLimitMiddleware throttles per authenticated user, falling back to the
// remote address for unauthenticated routes.
type RateLimitMiddleware struct {
	limiter RateLimiter
	logger  logging.Logger
}

func NewRateLimitMiddleware(limiter RateLimiter, logger logging.Logger) *RateLimitMiddleware {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &RateLimitMiddleware{limiter: limiter, logger: logger.Named("ratelimit")}
}

func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.RemoteAddr
		if userID, ok := ContextGetUserID(r.Context()); ok {
			key = "user:" + strconv.FormatInt(int64(userID), 10)
		}

		allowed, err := m.limiter.Allow(r.Context(), key)
		if err != nil {
			// A broken limiter backend must not take the API down.
			m.logger.Warn("rate limiter unavailable, allowing request", logging.Err(err))
			allowed = true
		}
		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(rateLimitWindow.Seconds())))
			http.Error(w, `{"code":"COMMON_007","message":"rate limit exceeded"}`, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
