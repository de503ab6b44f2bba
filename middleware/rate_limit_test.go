package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestLimiter_Allow(t *testing.T) {
	l := NewLimiter()

	for i := 0; i < 3; i++ {
		ok, _, _ := l.Allow("k", 3, time.Minute)
		assert.True(t, ok, "request %d should pass", i+1)
	}
	ok, remaining, retry := l.Allow("k", 3, time.Minute)
	assert.False(t, ok)
	assert.Equal(t, 0, remaining)
	assert.Greater(t, retry, time.Duration(0))

	// Independent keys do not share budgets.
	ok, _, _ = l.Allow("other", 3, time.Minute)
	assert.True(t, ok)
}

func TestLimiter_WindowReset(t *testing.T) {
	l := NewLimiter()

	ok, _, _ := l.Allow("k", 1, 10*time.Millisecond)
	assert.True(t, ok)
	ok, _, _ = l.Allow("k", 1, 10*time.Millisecond)
	assert.False(t, ok)

	time.Sleep(15 * time.Millisecond)
	ok, _, _ = l.Allow("k", 1, 10*time.Millisecond)
	assert.True(t, ok, "counter should reset after the window elapses")
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", RateLimit(NewLimiter(), "test", 2, time.Minute), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	do := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do("1.2.3.4:1000")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, do("1.2.3.4:1000").Code)

	w = do("1.2.3.4:1000")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// A different client address is unaffected.
	assert.Equal(t, http.StatusOK, do("5.6.7.8:1000").Code)
}
