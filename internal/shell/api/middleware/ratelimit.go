package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// Rate Limit Configuration
// =============================================================================

// RateLimitConfig defines the rate limiting parameters.
type RateLimitConfig struct {
	// RequestsPerWindow is the number of requests allowed in the time window.
	RequestsPerWindow int
	// Window is the time window for rate limiting.
	Window time.Duration
	// Burst allows temporary bursts above the steady rate.
	Burst int
}

// DefaultRSVPLimit throttles the public RSVP endpoints per client.
var DefaultRSVPLimit = RateLimitConfig{
	RequestsPerWindow: 30,
	Window:            time.Minute,
	Burst:             10,
}

// KeyExtractor derives the rate limit bucket for a request.
type KeyExtractor func(*http.Request) string

// IPKeyExtractor keys requests by client IP. It expects chi's RealIP
// middleware to have already rewritten RemoteAddr from proxy headers.
func IPKeyExtractor(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// =============================================================================
// Limiter
// =============================================================================

// cleanupInterval is how often idle limiters are evicted.
const cleanupInterval = 5 * time.Minute

// RateLimiter holds one token bucket per key.
type RateLimiter struct {
	config   RateLimitConfig
	key      KeyExtractor
	logger   *slog.Logger
	limiters sync.Map // map[string]*rate.Limiter
	rate     rate.Limit

	mu          sync.Mutex
	lastCleanup time.Time
}

// NewRateLimiter creates a limiter. A nil key extractor keys by IP.
func NewRateLimiter(config RateLimitConfig, key KeyExtractor, logger *slog.Logger) *RateLimiter {
	if config.RequestsPerWindow <= 0 {
		config.RequestsPerWindow = DefaultRSVPLimit.RequestsPerWindow
	}
	if config.Window <= 0 {
		config.Window = DefaultRSVPLimit.Window
	}
	if config.Burst <= 0 {
		config.Burst = 1
	}
	if key == nil {
		key = IPKeyExtractor
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RateLimiter{
		config:      config,
		key:         key,
		logger:      logger,
		rate:        rate.Limit(float64(config.RequestsPerWindow) / config.Window.Seconds()),
		lastCleanup: time.Now(),
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	if l, ok := rl.limiters.Load(key); ok {
		return l.(*rate.Limiter)
	}
	actual, _ := rl.limiters.LoadOrStore(key, rate.NewLimiter(rl.rate, rl.config.Burst))
	rl.maybeCleanup()
	return actual.(*rate.Limiter)
}

// maybeCleanup drops limiters whose bucket has refilled, i.e. idle clients.
func (rl *RateLimiter) maybeCleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if time.Since(rl.lastCleanup) < cleanupInterval {
		return
	}
	rl.lastCleanup = time.Now()
	rl.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(rl.config.Burst) {
			rl.limiters.Delete(key)
		}
		return true
	})
}

// Handler rejects requests over the limit with 429 and a Retry-After header.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rl.key(r)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}

		l := rl.limiter(key)
		if !l.Allow() {
			reservation := l.Reserve()
			delay := reservation.Delay()
			reservation.Cancel()
			retryAfter := max(int(delay.Seconds()), 1)

			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.config.RequestsPerWindow))
			w.Header().Set("X-RateLimit-Window", rl.config.Window.String())

			rl.logger.Warn("rate limit exceeded",
				"key", key,
				"path", r.URL.Path,
				"retry_after", retryAfter,
			)
			writeJSONError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.", "rate_limited")
			return
		}

		next.ServeHTTP(w, r)
	})
}
