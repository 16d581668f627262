package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitConfig defines the per-window request thresholds for an
// operator credential. Single-tier, unlike the teacher's per-subscription
// tiers: searchd has one kind of caller, the operator, not a billing plan.
type RateLimitConfig struct {
	RequestsPerMinute int
	RequestsPerHour   int
}

// DefaultRateLimit is generous enough for interactive run management
// without letting a misbehaving client hammer the admin surface.
func DefaultRateLimit() RateLimitConfig {
	return RateLimitConfig{RequestsPerMinute: 60, RequestsPerHour: 2000}
}

// RateLimiter enforces RateLimitConfig per caller ID using Redis counters,
// grounded on the teacher's RateLimiter.Allow: a fixed window per
// (caller, endpoint), fail-open on Redis errors so a flaky cache never
// blocks legitimate operator requests.
type RateLimiter struct {
	redis   *redis.Client
	logger  *zap.Logger
	limits  RateLimitConfig
	enabled bool
}

// NewRateLimiter returns a limiter. redisClient may be nil, in which case
// every call is allowed — rate limiting degrades off rather than fails
// closed when there is no shared counter store.
func NewRateLimiter(redisClient *redis.Client, logger *zap.Logger, limits RateLimitConfig) *RateLimiter {
	return &RateLimiter{redis: redisClient, logger: logger.Named("ratelimit"), limits: limits, enabled: redisClient != nil}
}

// RateLimitResult reports whether the call is allowed and, if not, when
// the caller may retry.
type RateLimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
	Window     string
}

// Allow checks and, if permitted, counts one request from callerID against
// endpoint's per-minute and per-hour windows.
func (rl *RateLimiter) Allow(ctx context.Context, callerID, endpoint string) (RateLimitResult, error) {
	if !rl.enabled {
		return RateLimitResult{Allowed: true}, nil
	}

	now := time.Now()
	windows := []struct {
		name     string
		duration time.Duration
		limit    int
	}{
		{"minute", time.Minute, rl.limits.RequestsPerMinute},
		{"hour", time.Hour, rl.limits.RequestsPerHour},
	}

	for _, w := range windows {
		if w.limit == 0 {
			continue
		}
		key := rl.buildKey(callerID, endpoint, w.name, now, w.duration)
		countStr, err := rl.redis.Get(ctx, key).Result()
		if err != nil && err != redis.Nil {
			rl.logger.Warn("rate limit check failed, failing open", zap.Error(err), zap.String("window", w.name))
			continue
		}
		count, _ := strconv.Atoi(countStr)
		if count >= w.limit {
			resetAt := now.Truncate(w.duration).Add(w.duration)
			return RateLimitResult{Allowed: false, RetryAfter: resetAt.Sub(now), Window: w.name}, nil
		}
	}

	for _, w := range windows {
		if w.limit == 0 {
			continue
		}
		key := rl.buildKey(callerID, endpoint, w.name, now, w.duration)
		pipe := rl.redis.Pipeline()
		pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, w.duration)
		if _, err := pipe.Exec(ctx); err != nil {
			rl.logger.Warn("rate limit increment failed", zap.Error(err))
		}
	}

	return RateLimitResult{Allowed: true}, nil
}

func (rl *RateLimiter) buildKey(callerID, endpoint, windowName string, now time.Time, duration time.Duration) string {
	windowStart := now.Truncate(duration).Unix()
	return fmt.Sprintf("searchd:ratelimit:%s:%s:%s:%d", callerID, endpoint, windowName, windowStart)
}

// Middleware wraps next with a rate-limit check keyed on the JWT subject
// set by JWTMiddleware. Requests without an authenticated subject (public
// paths) pass through unchecked.
func (rl *RateLimiter) Middleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := UserID(r.Context())
		if caller == "anonymous" {
			next(w, r)
			return
		}

		result, err := rl.Allow(r.Context(), caller, endpoint)
		if err != nil {
			rl.logger.Warn("rate limiter error, allowing request", zap.Error(err))
			next(w, r)
			return
		}
		if !result.Allowed {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(result.RetryAfter.Seconds())))
			http.Error(w, fmt.Sprintf("rate limit exceeded for %s window", result.Window), http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
