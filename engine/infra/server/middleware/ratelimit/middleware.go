package ratelimit

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rosterhq/roster/pkg/logger"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.opentelemetry.io/otel/metric"
)

// Manager owns the limiter store and resolves the limiter applied to each
// request. Route limiters take precedence over the global limiter by
// longest matching path prefix.
type Manager struct {
	cfg           *Config
	store         limiter.Store
	globalLimiter *limiter.Limiter
	routeLimiters map[string]*limiter.Limiter
	decisions     metric.Int64Counter
}

// NewManager builds a manager backed by Redis when a client is provided and
// an in-memory store otherwise.
func NewManager(cfg *Config, redisClient redis.UniversalClient) (*Manager, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rate limit config: %w", err)
	}
	store, err := buildStore(cfg, redisClient)
	if err != nil {
		return nil, err
	}
	m := &Manager{
		cfg:           cfg,
		store:         store,
		routeLimiters: make(map[string]*limiter.Limiter, len(cfg.RouteRates)),
	}
	if !cfg.GlobalRate.Disabled {
		m.globalLimiter = limiter.New(store, cfg.GlobalRate.ToLimiterRate())
	}
	for route, rate := range cfg.RouteRates {
		if rate.Disabled {
			continue
		}
		m.routeLimiters[route] = limiter.New(store, rate.ToLimiterRate())
	}
	return m, nil
}

// NewRedisClient constructs the client for the Redis-backed store when an
// address is configured. A nil return selects the in-memory store.
func (c *Config) NewRedisClient() redis.UniversalClient {
	if c == nil || c.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	})
}

func buildStore(cfg *Config, redisClient redis.UniversalClient) (limiter.Store, error) {
	options := limiter.StoreOptions{
		Prefix:          cfg.Prefix,
		MaxRetry:        cfg.MaxRetry,
		CleanUpInterval: limiter.DefaultCleanUpInterval,
	}
	if options.Prefix == "" {
		options.Prefix = limiter.DefaultPrefix
	}
	if options.MaxRetry <= 0 {
		options.MaxRetry = limiter.DefaultMaxRetry
	}
	if redisClient == nil {
		return memory.NewStoreWithOptions(options), nil
	}
	store, err := sredis.NewStoreWithOptions(redisClient, options)
	if err != nil {
		return nil, fmt.Errorf("create redis rate limit store: %w", err)
	}
	return store, nil
}

// Middleware returns a gin middleware enforcing the configured limits. Rate
// limit state lookups fail open so a degraded store never blocks traffic.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		ip := clientIP(c)
		if m.isExcludedPath(path) || m.isExcludedIP(ip) {
			c.Next()
			return
		}
		lim, scope := m.limiterFor(path)
		if lim == nil {
			c.Next()
			return
		}
		limiterCtx, err := lim.Get(c.Request.Context(), scope+":"+ip)
		if err != nil {
			logger.FromContext(c.Request.Context()).Error("Rate limit check failed", "error", err)
			c.Next()
			return
		}
		m.recordDecision(c.Request.Context(), scope, limiterCtx.Reached)
		if !m.cfg.DisableHeaders {
			c.Header("X-RateLimit-Limit", strconv.FormatInt(limiterCtx.Limit, 10))
			c.Header("X-RateLimit-Remaining", strconv.FormatInt(limiterCtx.Remaining, 10))
			c.Header("X-RateLimit-Reset", strconv.FormatInt(limiterCtx.Reset, 10))
		}
		if limiterCtx.Reached {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}

// limiterFor picks the most specific configured limiter for the path.
func (m *Manager) limiterFor(path string) (*limiter.Limiter, string) {
	var bestRoute string
	for route := range m.routeLimiters {
		if strings.HasPrefix(path, route) && len(route) > len(bestRoute) {
			bestRoute = route
		}
	}
	if bestRoute != "" {
		return m.routeLimiters[bestRoute], "route:" + bestRoute
	}
	if m.globalLimiter == nil {
		return nil, ""
	}
	return m.globalLimiter, "global"
}

func (m *Manager) isExcludedPath(path string) bool {
	for _, excluded := range m.cfg.ExcludedPaths {
		if strings.HasPrefix(path, excluded) {
			return true
		}
	}
	return false
}

func (m *Manager) isExcludedIP(ip string) bool {
	for _, excluded := range m.cfg.ExcludedIPs {
		if ip == excluded {
			return true
		}
	}
	return false
}

func clientIP(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}
