package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/itplace/locator-backend-go/pkg/response"
)

// window counts requests for one key in the current and previous window
type window struct {
	start time.Time
	count int
	prev  int
}

// RateLimiter is a sliding-window counter keyed by client. The previous
// window's count is weighted by how much of it still overlaps the sliding
// window, so memory per key stays constant at any rate.
type RateLimiter struct {
	windows map[string]*window
	mu      sync.Mutex
	limit   int           // Maximum requests per window
	window  time.Duration // Time window
	now     func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := newRateLimiter(limit, window, time.Now)

	go rl.cleanup()

	return rl
}

func newRateLimiter(limit int, w time.Duration, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		window:  w,
		now:     now,
	}
}

// cleanup removes idle keys periodically
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := rl.now()
		for key, w := range rl.windows {
			if now.Sub(w.start) >= 2*rl.window {
				delete(rl.windows, key)
			}
		}
		rl.mu.Unlock()
	}
}

// roll advances w so that now falls inside its current window
func (rl *RateLimiter) roll(w *window, now time.Time) {
	elapsed := now.Sub(w.start)
	switch {
	case elapsed >= 2*rl.window:
		w.start, w.count, w.prev = now, 0, 0
	case elapsed >= rl.window:
		w.start, w.prev, w.count = w.start.Add(rl.window), w.count, 0
	}
}

// Allow checks if a request for the given key is allowed
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[key]
	if !ok {
		w = &window{start: now}
		rl.windows[key] = w
	}
	rl.roll(w, now)

	overlap := 1 - float64(now.Sub(w.start))/float64(rl.window)
	if float64(w.prev)*overlap+float64(w.count) >= float64(rl.limit) {
		return false
	}

	w.count++
	return true
}

// RateLimitBy limits requests per key. A non-positive limit disables
// limiting.
func RateLimitBy(limit int, window time.Duration, key func(*gin.Context) string) gin.HandlerFunc {
	if limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := NewRateLimiter(limit, window)

	return func(c *gin.Context) {
		if !limiter.Allow(key(c)) {
			response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

// RateLimit middleware limits requests per client IP
func RateLimit(limit int, window time.Duration) gin.HandlerFunc {
	return RateLimitBy(limit, window, func(c *gin.Context) string { return c.ClientIP() })
}

// RateLimitBySession limits requests per viewer session path parameter
func RateLimitBySession(limit int, window time.Duration) gin.HandlerFunc {
	return RateLimitBy(limit, window, func(c *gin.Context) string { return c.Param("id") })
}
