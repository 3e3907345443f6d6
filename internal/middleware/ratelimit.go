package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"onepager/internal/httputil"
	"onepager/internal/metrics"
)

// limiterEntry is one principal's token bucket.
type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per principal. Buckets idle for
// longer than ttl are dropped on the next sweep.
type RateLimiter struct {
	rps     rate.Limit
	burst   int
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time

	mu        sync.Mutex
	entries   map[string]*limiterEntry
	lastSweep time.Time
}

// NewRateLimiter creates a limiter allowing rps requests per second with
// the given burst per principal.
func NewRateLimiter(rps float64, burst int, m *metrics.Metrics, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		ttl:     10 * time.Minute,
		metrics: m,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]*limiterEntry),
	}
}

func (l *RateLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > l.ttl {
		for k, e := range l.entries {
			if now.Sub(e.lastSeen) > l.ttl {
				delete(l.entries, k)
			}
		}
		l.lastSweep = now
	}

	if e, ok := l.entries[key]; ok {
		e.lastSeen = now
		return e.limiter
	}
	e := &limiterEntry{limiter: rate.NewLimiter(l.rps, l.burst), lastSeen: now}
	l.entries[key] = e
	return e.limiter
}

// Limit wraps an AI-backed handler. Requests over budget get 429 with a
// Retry-After hint. Must run after AuthMiddleware.
func (l *RateLimiter) Limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := httputil.GetPrincipal(r).Key()

		reservation := l.get(key).ReserveN(l.now(), 1)
		if !reservation.OK() {
			httputil.RespondError(w, http.StatusTooManyRequests, "AI request budget exceeded")
			return
		}
		if delay := reservation.DelayFrom(l.now()); delay > 0 {
			reservation.CancelAt(l.now())
			l.metrics.RateLimited.Inc()

			retryAfter := int(math.Ceil(delay.Seconds()))
			l.logger.Debug("AI request rate limited", "principal", key, "retry_after_seconds", retryAfter)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			httputil.RespondErrorWithExtras(w, http.StatusTooManyRequests, "too many AI requests, slow down",
				map[string]interface{}{"retry_after_seconds": retryAfter})
			return
		}

		next(w, r)
	}
}
