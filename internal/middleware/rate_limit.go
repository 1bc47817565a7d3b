package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/redis/go-redis/v9"

	"github.com/olholv/contactbook/internal/auth"
	pkghttp "github.com/olholv/contactbook/pkg/http"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int
}

// DefaultAuthRateLimit returns the rate limit for auth endpoints
func DefaultAuthRateLimit() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 10,
	}
}

// RateLimitByIP creates a middleware that rate limits requests by client IP
func RateLimitByIP(config RateLimitConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		1*time.Minute,
		httprate.WithKeyByRealIP(),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"Too Many Requests","message":"Rate limit exceeded"}`))
		}),
	)
}

// UserRateLimiter throttles an operation per authenticated user, backed by
// Redis so the count survives restarts and is shared across instances. The
// counter key expires with the window; the first increment in a window sets
// the TTL.
type UserRateLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
	logger *slog.Logger
}

// NewUserRateLimiter creates a new UserRateLimiter
func NewUserRateLimiter(client *redis.Client, prefix string, limit int, window time.Duration, logger *slog.Logger) *UserRateLimiter {
	return &UserRateLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
		logger: logger,
	}
}

// Middleware limits requests per authenticated user. It must run after
// auth.RequireAuth; an unauthenticated request passes through untouched so
// the guard can reject it. If Redis is unreachable the request is allowed,
// availability wins over throttling here.
func (l *UserRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := auth.GetUserFromContext(r)
		if user == nil {
			next.ServeHTTP(w, r)
			return
		}

		key := fmt.Sprintf("%s:%s", l.prefix, user.ID)
		count, err := l.client.Incr(r.Context(), key).Result()
		if err != nil {
			l.logger.Warn("rate limiter unavailable, allowing request", slog.Any("error", err))
			next.ServeHTTP(w, r)
			return
		}
		if count == 1 {
			if err := l.client.Expire(r.Context(), key, l.window).Err(); err != nil {
				l.logger.Warn("failed to set rate limit window", slog.String("key", key), slog.Any("error", err))
			}
		}

		if count > int64(l.limit) {
			pkghttp.WriteTooManyRequests(w, "Rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}
