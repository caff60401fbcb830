package ratelimit

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_RateLimitExceeded(t *testing.T) {
	gin.SetMode(gin.TestMode)
	lim := New(0, time.Minute) // limit 0 -> always deny
	r := gin.New()
	r.Use(Middleware(lim))
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, 429, w.Code)
	require.Equal(t, "60", w.Header().Get("Retry-After"))
	var body map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &body)
	require.NoError(t, err)
	require.Equal(t, "Rate limit exceeded. Try again later.", body["error"])
	require.Contains(t, body, "retry_after")
	require.Contains(t, body, "reset_time")
}

func TestMiddleware_UnderLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	lim := New(2, time.Minute)
	r := gin.New()
	r.Use(Middleware(lim))
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/", nil)
		r.ServeHTTP(w, req)
		require.Equal(t, 200, w.Code)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, 429, w.Code)
}

func TestAllow_WindowExpiry(t *testing.T) {
	lim := New(1, 20*time.Millisecond)

	require.True(t, lim.Allow("key"))
	require.False(t, lim.Allow("key"))

	time.Sleep(30 * time.Millisecond)
	require.True(t, lim.Allow("key"))
}

func TestReset(t *testing.T) {
	lim := New(1, time.Minute)

	require.True(t, lim.Allow("key"))
	require.False(t, lim.Allow("key"))

	lim.Reset("key")
	require.True(t, lim.Allow("key"))
}
