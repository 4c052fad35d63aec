package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func buildRouterForTest(t *testing.T, cfg *Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	m, err := NewManager(cfg, nil) // nil redis -> in-memory store
	require.NoError(t, err)
	r.Use(m.Middleware())
	r.GET("/t", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func doReq(r *gin.Engine, target, ip string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	if ip != "" {
		req.Header.Set("X-Real-IP", ip)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestInMemoryGlobalRateLimit_BlocksSecondRequest(t *testing.T) {
	cfg := &Config{
		GlobalRate: RateConfig{Limit: 1, Period: time.Second},
		RouteRates: map[string]RateConfig{},
		Prefix:     "test:ratelimit:",
		MaxRetry:   1,
	}
	r := buildRouterForTest(t, cfg)

	// First request should pass
	res1 := doReq(r, "/t", "1.2.3.4")
	require.Equal(t, http.StatusOK, res1.Code)
	// Second immediate request should be blocked (same IP key)
	res2 := doReq(r, "/t", "1.2.3.4")
	require.Equal(t, http.StatusTooManyRequests, res2.Code)
}

func TestInMemoryGlobalRateLimit_KeysByClientIP(t *testing.T) {
	cfg := &Config{
		GlobalRate: RateConfig{Limit: 1, Period: time.Minute},
		RouteRates: map[string]RateConfig{},
		Prefix:     "test:ratelimit:",
		MaxRetry:   1,
	}
	r := buildRouterForTest(t, cfg)

	res1 := doReq(r, "/t", "10.0.0.1")
	require.Equal(t, http.StatusOK, res1.Code)
	// A different client IP has its own bucket
	res2 := doReq(r, "/t", "10.0.0.2")
	require.Equal(t, http.StatusOK, res2.Code)
}

func TestInMemoryGlobalRateLimit_RefillAfterPeriod(t *testing.T) {
	cfg := &Config{
		GlobalRate: RateConfig{Limit: 1, Period: 100 * time.Millisecond},
		RouteRates: map[string]RateConfig{},
		Prefix:     "test:ratelimit:",
		MaxRetry:   1,
	}
	r := buildRouterForTest(t, cfg)

	res1 := doReq(r, "/t", "5.6.7.8")
	require.Equal(t, http.StatusOK, res1.Code)
	res2 := doReq(r, "/t", "5.6.7.8")
	require.Equal(t, http.StatusTooManyRequests, res2.Code)
	// Wait for refill and try again
	time.Sleep(120 * time.Millisecond)
	res3 := doReq(r, "/t", "5.6.7.8")
	require.Equal(t, http.StatusOK, res3.Code)
}

func TestInMemoryRateLimit_SetsHeaders(t *testing.T) {
	cfg := &Config{
		GlobalRate: RateConfig{Limit: 2, Period: time.Minute},
		RouteRates: map[string]RateConfig{},
		Prefix:     "test:ratelimit:",
		MaxRetry:   1,
	}
	r := buildRouterForTest(t, cfg)
	res := doReq(r, "/t", "9.9.9.9")
	require.Equal(t, http.StatusOK, res.Code)
	require.NotEmpty(t, res.Header().Get("X-RateLimit-Limit"))
	require.NotEmpty(t, res.Header().Get("X-RateLimit-Remaining"))
	require.NotEmpty(t, res.Header().Get("X-RateLimit-Reset"))
}

func TestInMemoryRateLimit_DisableHeaders(t *testing.T) {
	cfg := &Config{
		GlobalRate:     RateConfig{Limit: 2, Period: time.Minute},
		RouteRates:     map[string]RateConfig{},
		Prefix:         "test:ratelimit:",
		MaxRetry:       1,
		DisableHeaders: true,
	}
	r := buildRouterForTest(t, cfg)
	res := doReq(r, "/t", "9.9.9.9")
	require.Equal(t, http.StatusOK, res.Code)
	require.Empty(t, res.Header().Get("X-RateLimit-Limit"))
	require.Empty(t, res.Header().Get("X-RateLimit-Remaining"))
	require.Empty(t, res.Header().Get("X-RateLimit-Reset"))
}

func TestRouteRateLimit_OverridesGlobal(t *testing.T) {
	cfg := &Config{
		GlobalRate: RateConfig{Limit: 100, Period: time.Minute},
		RouteRates: map[string]RateConfig{
			"/api/v0/users": {Limit: 1, Period: time.Minute},
		},
		Prefix:   "test:ratelimit:",
		MaxRetry: 1,
	}
	gin.SetMode(gin.TestMode)
	r := gin.New()
	m, err := NewManager(cfg, nil)
	require.NoError(t, err)
	r.Use(m.Middleware())
	r.GET("/api/v0/users", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/t", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	res1 := doReq(r, "/api/v0/users", "3.3.3.3")
	require.Equal(t, http.StatusOK, res1.Code)
	res2 := doReq(r, "/api/v0/users", "3.3.3.3")
	require.Equal(t, http.StatusTooManyRequests, res2.Code)
	// The global bucket is untouched for other routes
	res3 := doReq(r, "/t", "3.3.3.3")
	require.Equal(t, http.StatusOK, res3.Code)
}

func TestRateLimit_SkipsExcludedPaths(t *testing.T) {
	cfg := &Config{
		GlobalRate:    RateConfig{Limit: 1, Period: time.Minute},
		RouteRates:    map[string]RateConfig{},
		Prefix:        "test:ratelimit:",
		MaxRetry:      1,
		ExcludedPaths: []string{"/t"},
	}
	r := buildRouterForTest(t, cfg)
	for range 5 {
		res := doReq(r, "/t", "7.7.7.7")
		require.Equal(t, http.StatusOK, res.Code)
	}
}

func TestRateLimit_SkipsExcludedIPs(t *testing.T) {
	cfg := &Config{
		GlobalRate:  RateConfig{Limit: 1, Period: time.Minute},
		RouteRates:  map[string]RateConfig{},
		Prefix:      "test:ratelimit:",
		MaxRetry:    1,
		ExcludedIPs: []string{"8.8.8.8"},
	}
	r := buildRouterForTest(t, cfg)
	for range 5 {
		res := doReq(r, "/t", "8.8.8.8")
		require.Equal(t, http.StatusOK, res.Code)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("Should accept the default configuration", func(t *testing.T) {
		require.NoError(t, DefaultConfig().Validate())
	})
	t.Run("Should reject a non-positive global limit", func(t *testing.T) {
		cfg := &Config{GlobalRate: RateConfig{Limit: 0, Period: time.Minute}}
		require.ErrorContains(t, cfg.Validate(), "global rate limit must be positive")
	})
	t.Run("Should reject a non-positive route limit", func(t *testing.T) {
		cfg := &Config{
			GlobalRate: RateConfig{Limit: 10, Period: time.Minute},
			RouteRates: map[string]RateConfig{"/api/v0/users": {Limit: -1, Period: time.Minute}},
		}
		require.ErrorContains(t, cfg.Validate(), "route rate limit for /api/v0/users")
	})
}
