package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultMaxRequests   = 100
	DefaultWindow        = 15 * time.Minute
	DefaultSweepInterval = time.Minute

	unknownClient = "unknown"
	msgTooMany    = "Too many requests, please try again later."
)

type fixedWindow struct {
	count   int
	resetAt time.Time
}

// RateLimiter counts requests per client in fixed windows. A window opens on a
// client's first request and resets on the first request after it closes.
// Expired windows are removed by a background sweep until Close is called.
type RateLimiter struct {
	mu          sync.Mutex
	windows     map[string]*fixedWindow
	maxRequests int
	window      time.Duration

	sweepEvery time.Duration
	now        func() time.Time
	stop       chan struct{}
	stopOnce   sync.Once

	// Rejection logs are sampled so a flood from one client does not flood the log.
	logSample rate.Sometimes
}

// RateLimiterOption customizes a RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithSweepInterval sets how often expired windows are removed. Zero or negative
// disables the background sweep.
func WithSweepInterval(d time.Duration) RateLimiterOption {
	return func(rl *RateLimiter) { rl.sweepEvery = d }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) RateLimiterOption {
	return func(rl *RateLimiter) { rl.now = now }
}

// NewRateLimiter allows maxRequests per client per window. Non-positive values fall
// back to DefaultMaxRequests and DefaultWindow.
func NewRateLimiter(maxRequests int, window time.Duration, opts ...RateLimiterOption) *RateLimiter {
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}
	if window <= 0 {
		window = DefaultWindow
	}

	rl := &RateLimiter{
		windows:     make(map[string]*fixedWindow),
		maxRequests: maxRequests,
		window:      window,
		sweepEvery:  DefaultSweepInterval,
		now:         time.Now,
		stop:        make(chan struct{}),
		logSample:   rate.Sometimes{Interval: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(rl)
	}

	if rl.sweepEvery > 0 {
		go rl.sweepLoop()
	}
	return rl
}

// Allow records a request from key. When the request is over the limit it returns
// false and the whole seconds until the client's window resets.
func (rl *RateLimiter) Allow(key string) (bool, int) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[key]
	if !ok || now.After(w.resetAt) {
		rl.windows[key] = &fixedWindow{count: 1, resetAt: now.Add(rl.window)}
		return true, 0
	}

	w.count++
	if w.count > rl.maxRequests {
		return false, int(math.Ceil(w.resetAt.Sub(now).Seconds()))
	}
	return true, 0
}

// Sweep removes every window that has already closed.
func (rl *RateLimiter) Sweep() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, w := range rl.windows {
		if now.After(w.resetAt) {
			delete(rl.windows, key)
		}
	}
}

// Close stops the background sweep. It is safe to call more than once.
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(rl.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.Sweep()
		case <-rl.stop:
			return
		}
	}
}

// Handler is the middleware form of the limiter.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)

		allowed, retryAfter := rl.Allow(key)
		if !allowed {
			rl.logSample.Do(func() {
				slog.Warn("rate limit exceeded", "client", key, "retry_after", retryAfter)
			})
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			writeJSON(w, http.StatusTooManyRequests, map[string]any{
				"message":    msgTooMany,
				"retryAfter": retryAfter,
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientKey identifies the caller by the host part of RemoteAddr. Requests with no
// resolvable address share one bucket.
func clientKey(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if ip == "" {
		return unknownClient
	}
	return ip
}
