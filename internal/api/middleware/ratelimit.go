// internal/api/middleware/ratelimit.go
package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"cashcard-api/internal/util"
)

// idle limiters are dropped once the table grows past this size.
const maxTrackedLimiters = 10000

type trackedLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per client IP.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*trackedLimiter
	rate     rate.Limit
	burst    int
	idle     time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewRateLimiter creates a limiter allowing requestsPerSecond with burst.
// A non-positive rate disables limiting.
func NewRateLimiter(requestsPerSecond float64, burst int, logger *slog.Logger) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*trackedLimiter),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
		idle:     10 * time.Minute,
		logger:   logger,
		now:      time.Now,
	}
}

// Allow reports whether a request for key may proceed now.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	tl, ok := rl.limiters[key]
	if !ok {
		if len(rl.limiters) >= maxTrackedLimiters {
			rl.sweep(now)
		}
		tl = &trackedLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = tl
	}
	tl.lastSeen = now
	return tl.limiter.AllowN(now, 1)
}

// sweep drops limiters not used within the idle window. Callers hold mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for key, tl := range rl.limiters {
		if now.Sub(tl.lastSeen) > rl.idle {
			delete(rl.limiters, key)
		}
	}
}

// Handler returns the rate limiting middleware.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	if rl.rate <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		if !rl.Allow(key) {
			rl.logger.Warn("Rate limit exceeded", "key", key, "path", r.URL.Path, "method", r.Method)
			w.Header().Set("Retry-After", "1")
			writeJSONError(w, http.StatusTooManyRequests, util.ErrRateLimited.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey identifies the caller by IP. The limiter runs before
// authentication, so credentials are not yet trusted.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
