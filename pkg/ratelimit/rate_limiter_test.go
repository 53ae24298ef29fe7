package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tixbridge/pkg/logger"
)

func newTestLimiter(t *testing.T, cfg *Config) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRateLimiter(client, cfg), mr
}

func TestIsAllowed_SlidingWindow(t *testing.T) {
	limiter, _ := newTestLimiter(t, &Config{
		Enabled:             true,
		WindowDuration:      time.Minute,
		ReservationRequests: 3,
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result, err := limiter.IsAllowed(ctx, "10.0.0.1", RateLimitTypeReservation)
		require.NoError(t, err)
		assert.True(t, result.Allowed, "request %d", i+1)
		assert.Equal(t, 3-i-1, result.Remaining)
	}

	result, err := limiter.IsAllowed(ctx, "10.0.0.1", RateLimitTypeReservation)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, 0, result.Remaining)

	// other clients have their own window
	result, err = limiter.IsAllowed(ctx, "10.0.0.2", RateLimitTypeReservation)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestIsAllowed_WindowSlides(t *testing.T) {
	limiter, _ := newTestLimiter(t, &Config{
		Enabled:         true,
		WindowDuration:  time.Minute,
		DefaultRequests: 1,
	})
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	result, err := limiter.IsAllowed(ctx, "10.0.0.1", RateLimitTypeDefault)
	require.NoError(t, err)
	assert.True(t, result.Allowed)

	result, err = limiter.IsAllowed(ctx, "10.0.0.1", RateLimitTypeDefault)
	require.NoError(t, err)
	assert.False(t, result.Allowed)

	now = now.Add(61 * time.Second)
	result, err = limiter.IsAllowed(ctx, "10.0.0.1", RateLimitTypeDefault)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestIsAllowed_DisabledAndWhitelisted(t *testing.T) {
	limiter, mr := newTestLimiter(t, &Config{
		Enabled:        true,
		PublicRequests: 1,
		WhitelistedIPs: []string{"127.0.0.1"},
	})
	for i := 0; i < 5; i++ {
		result, err := limiter.IsAllowed(context.Background(), "127.0.0.1", RateLimitTypePublic)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	}
	assert.Empty(t, mr.Keys())

	disabled := NewRateLimiter(nil, &Config{Enabled: false, PublicRequests: 1})
	result, err := disabled.IsAllowed(context.Background(), "10.0.0.1", RateLimitTypePublic)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestIsAllowed_RedisDown(t *testing.T) {
	limiter, mr := newTestLimiter(t, &Config{Enabled: true, DefaultRequests: 5})
	mr.Close()

	_, err := limiter.IsAllowed(context.Background(), "10.0.0.1", RateLimitTypeDefault)
	assert.Error(t, err)
}

func TestGetRateLimitType(t *testing.T) {
	assert.Equal(t, RateLimitTypeHealth, getRateLimitType("/health"))
	assert.Equal(t, RateLimitTypePublic, getRateLimitType("/api/v1/shows/:id"))
	assert.Equal(t, RateLimitTypeReservation, getRateLimitType("/api/v1/reservations/:id/confirm"))
	assert.Equal(t, RateLimitTypeWebhook, getRateLimitType("/api/v1/webhooks/checkout"))
	assert.Equal(t, RateLimitTypeDefault, getRateLimitType(""))
}

func TestMiddleware_RejectsOverLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t, &Config{Enabled: true, WindowDuration: time.Minute, PublicRequests: 1})

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(Middleware(limiter, logger.Discard()))
	engine.GET("/api/v1/shows", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/shows", nil)
		req.Header.Set("X-Real-IP", "203.0.113.7")
		engine.ServeHTTP(rec, req)
		return rec
	}

	rec := serve()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = serve()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
