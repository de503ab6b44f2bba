package middleware

import (
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"palette/internal/metrics"
)

// pruneThreshold bounds the window map: once it grows past this, expired
// entries are dropped during the next Allow call.
const pruneThreshold = 4096

// Limiter keeps fixed-window counters per key (client address + endpoint
// class). It is the one shared mutable state of the middleware layer, so
// increment-and-check runs under a single mutex.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	count int
	reset time.Time
}

// NewLimiter 创建请求限流器，进程级单例
func NewLimiter() *Limiter {
	return &Limiter{windows: make(map[string]*window)}
}

// Allow records one request against key and reports whether it fits within
// limit per period, the remaining allowance, and how long until the window
// resets.
func (l *Limiter) Allow(key string, limit int, period time.Duration) (bool, int, time.Duration) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.windows) > pruneThreshold {
		for k, w := range l.windows {
			if now.After(w.reset) {
				delete(l.windows, k)
			}
		}
	}

	w, ok := l.windows[key]
	if !ok || now.After(w.reset) {
		w = &window{reset: now.Add(period)}
		l.windows[key] = w
	}
	w.count++
	if w.count > limit {
		return false, 0, w.reset.Sub(now)
	}
	return true, limit - w.count, w.reset.Sub(now)
}

// RateLimit caps requests per client IP for one endpoint class. It is the
// outermost gate: exceeding the limit short-circuits before validation,
// lockout checks or any business logic.
func RateLimit(l *Limiter, name string, limit int, period time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		key := fmt.Sprintf("rl:%s:%s", name, ip)

		ok, remaining, retryAfter := l.Allow(key, limit, period)
		if !ok {
			metrics.IncRateLimit(name)
			retry := int64(math.Ceil(retryAfter.Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", fmt.Sprintf("%d", retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "too many requests",
				"retry_after": retry,
			})
			return
		}
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		c.Next()
	}
}
