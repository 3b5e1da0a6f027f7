// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/taibuivan/fitmate/internal/platform/apperr"
	"github.com/taibuivan/fitmate/internal/platform/constants"
	"github.com/taibuivan/fitmate/internal/platform/ctxutil"
	"github.com/taibuivan/fitmate/internal/platform/respond"
)

// # Rate Limiting

// Decision is the outcome of one limiter check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter counts requests per key within a policy.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// Policy describes one limiter tier: Requests per Window.
type Policy struct {
	Name     string
	Requests int
	Window   time.Duration
}

// GlobalPolicy applies to every route.
var GlobalPolicy = Policy{
	Name:     "global",
	Requests: constants.GlobalRateLimitRequests,
	Window:   constants.GlobalRateLimitWindow,
}

// APIPolicy applies on top of GlobalPolicy to the text-generation routes.
var APIPolicy = Policy{
	Name:     "api",
	Requests: constants.APIRateLimitRequests,
	Window:   constants.APIRateLimitWindow,
}

// # In-Memory Limiter

type rateLimitClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter is a per-process token bucket keyed by client.
//
// The bucket refills at Requests/Window and holds at most Requests tokens, so a
// fresh client may burst the whole window budget at once. The sustained rate is
// Requests per Window, but any single window can admit up to 2*Requests-1: the
// full burst plus the refill earned while it lasts. [RedisLimiter] is the
// strict fixed-window alternative.
type MemoryLimiter struct {
	policy  Policy
	now     func() time.Time
	mu      sync.Mutex
	clients map[string]*rateLimitClient
}

// NewMemoryLimiter creates a limiter and starts its idle-entry cleanup, which
// stops when ctx is cancelled.
func NewMemoryLimiter(ctx context.Context, policy Policy) *MemoryLimiter {
	limiter := &MemoryLimiter{
		policy:  policy,
		now:     time.Now,
		clients: make(map[string]*rateLimitClient),
	}

	go func() {
		ticker := time.NewTicker(constants.RateLimitCleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				limiter.sweep()
			case <-ctx.Done():
				return
			}
		}
	}()

	return limiter
}

// Allow implements [Limiter].
func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	client, found := l.clients[key]
	if !found {
		client = &rateLimitClient{
			limiter: rate.NewLimiter(rate.Every(l.policy.Window/time.Duration(l.policy.Requests)), l.policy.Requests),
		}
		l.clients[key] = client
	}
	client.lastSeen = now

	reservation := client.limiter.ReserveN(now, 1)
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return Decision{Limit: l.policy.Requests, RetryAfter: delay}, nil
	}

	remaining := int(math.Floor(client.limiter.TokensAt(now)))
	if remaining < 0 {
		remaining = 0
	}

	return Decision{Allowed: true, Limit: l.policy.Requests, Remaining: remaining}, nil
}

// sweep drops clients idle for longer than RateLimitClientTTL.
func (l *MemoryLimiter) sweep() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, client := range l.clients {
		if now.Sub(client.lastSeen) > constants.RateLimitClientTTL {
			delete(l.clients, key)
		}
	}
}

// # Redis Limiter

// RedisLimiter is a fixed-window counter shared by every API replica.
type RedisLimiter struct {
	client *redis.Client
	policy Policy
	now    func() time.Time
}

// NewRedisLimiter creates a limiter backed by client.
func NewRedisLimiter(client *redis.Client, policy Policy) *RedisLimiter {
	return &RedisLimiter{client: client, policy: policy, now: time.Now}
}

// Allow implements [Limiter].
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := l.now()
	windowStart := now.Truncate(l.policy.Window)
	bucket := fmt.Sprintf("%s%s:%s:%d", constants.RedisPrefixRateLimit, l.policy.Name, key, windowStart.Unix())

	// ── 1. Increment and arm the expiry atomically ───────────────────────
	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, bucket)
	pipe.Expire(ctx, bucket, l.policy.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("ratelimit: redis pipeline: %w", err)
	}

	// ── 2. Compare against the window budget ─────────────────────────────
	count := int(incr.Val())
	if count > l.policy.Requests {
		return Decision{
			Limit:      l.policy.Requests,
			RetryAfter: windowStart.Add(l.policy.Window).Sub(now),
		}, nil
	}

	return Decision{Allowed: true, Limit: l.policy.Requests, Remaining: l.policy.Requests - count}, nil
}

// # Middleware

// RateLimit rejects requests once the client exceeds the limiter's budget.
//
// A limiter backend failure is logged and the request is let through.
func RateLimit(limiter Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			decision, err := limiter.Allow(request.Context(), RealIP(request))
			if err != nil {
				ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "rate_limit_backend_failed",
					slog.Any("error", err),
				)
				next.ServeHTTP(writer, request)
				return
			}

			header := writer.Header()
			header.Set("RateLimit-Limit", strconv.Itoa(decision.Limit))
			header.Set("RateLimit-Remaining", strconv.Itoa(decision.Remaining))

			if !decision.Allowed {
				retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
				if retryAfter < 1 {
					retryAfter = 1
				}
				header.Set("Retry-After", strconv.Itoa(retryAfter))
				respond.Error(writer, request, apperr.RateLimited(retryAfter))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// NewLimiter picks the Redis limiter when client is set and the in-memory one otherwise.
func NewLimiter(ctx context.Context, policy Policy, client *redis.Client) Limiter {
	if client != nil {
		return NewRedisLimiter(client, policy)
	}
	return NewMemoryLimiter(ctx, policy)
}
