package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/davidbz/pricelab/internal/config"
	"github.com/davidbz/pricelab/internal/observability"
)

const (
	limiterIdleTTL    = 30 * time.Minute
	limiterPruneEvery = time.Minute
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// sessionLimiters hands out one token bucket per session.
type sessionLimiters struct {
	mu         sync.Mutex
	limiters   map[string]*limiterEntry
	rps        rate.Limit
	burst      int
	lastPruned time.Time
}

func (l *sessionLimiters) get(sessionID string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.pruneLocked(now)

	if entry, ok := l.limiters[sessionID]; ok {
		entry.lastUsed = now
		return entry.limiter
	}

	limiter := rate.NewLimiter(l.rps, l.burst)
	l.limiters[sessionID] = &limiterEntry{limiter: limiter, lastUsed: now}
	return limiter
}

func (l *sessionLimiters) pruneLocked(now time.Time) {
	if !l.lastPruned.IsZero() && now.Sub(l.lastPruned) < limiterPruneEvery {
		return
	}
	for id, entry := range l.limiters {
		if now.Sub(entry.lastUsed) > limiterIdleTTL {
			delete(l.limiters, id)
		}
	}
	l.lastPruned = now
}

// RateLimit rejects requests beyond the per-session rate with 429. It must
// run after Session. A nil config or non-positive rate disables it.
func RateLimit(cfg *config.ServerConfig) Middleware {
	if cfg == nil || cfg.RateLimitRPS <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	burst := cfg.RateLimitBurst
	if burst < 1 {
		burst = 1
	}
	limiters := &sessionLimiters{
		limiters: make(map[string]*limiterEntry),
		rps:      rate.Limit(cfg.RateLimitRPS),
		burst:    burst,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sessionID := observability.GetSessionID(ctx)

			if !limiters.get(sessionID).Allow() {
				observability.FromContext(ctx).Warn("rate limit exceeded",
					observability.String("path", r.URL.Path))
				w.Header().Set("Retry-After", "1")
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
