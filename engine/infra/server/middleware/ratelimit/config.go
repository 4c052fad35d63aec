package ratelimit

import (
	"fmt"
	"time"

	"github.com/ulule/limiter/v3"
)

// Config represents rate limiting configuration.
type Config struct {
	// Global rate limit applied to every request without a route override.
	GlobalRate RateConfig `yaml:"global_rate"`

	// Per-route rate limits keyed by path prefix.
	RouteRates map[string]RateConfig `yaml:"route_rates"`

	// Redis configuration. An empty address selects the in-memory store.
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	// Options
	Prefix   string `yaml:"prefix"`
	MaxRetry int    `yaml:"max_retry"`

	// Header configuration
	DisableHeaders bool `yaml:"disable_headers"`

	// Exclude patterns
	ExcludedPaths []string `yaml:"excluded_paths"`

	// Excluded IPs
	ExcludedIPs []string `yaml:"excluded_ips"`
}

// RateConfig represents a single rate limit configuration.
type RateConfig struct {
	Period   time.Duration `yaml:"period"`
	Limit    int64         `yaml:"limit"`
	Disabled bool          `yaml:"disabled,omitempty"`
}

// DefaultConfig returns default rate limiting configuration.
func DefaultConfig() *Config {
	return &Config{
		GlobalRate: RateConfig{
			Limit:    100,
			Period:   1 * time.Minute,
			Disabled: false,
		},
		RouteRates: map[string]RateConfig{
			"/api/v0/users": {
				Limit:    60,
				Period:   1 * time.Minute,
				Disabled: false,
			},
		},
		RedisAddr:      "",
		RedisPassword:  "",
		RedisDB:        0,
		Prefix:         "roster:ratelimit:",
		MaxRetry:       3,
		DisableHeaders: false,
		ExcludedPaths: []string{
			"/health",
			"/metrics",
			"/swagger",
			"/api/v0/health",
		},
		ExcludedIPs: []string{},
	}
}

// ToLimiterRate converts RateConfig to limiter.Rate.
func (rc RateConfig) ToLimiterRate() limiter.Rate {
	return limiter.Rate{
		Period: rc.Period,
		Limit:  rc.Limit,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.GlobalRate.Limit <= 0 {
		return fmt.Errorf("global rate limit must be positive")
	}
	for route, rate := range c.RouteRates {
		if rate.Limit <= 0 {
			return fmt.Errorf("route rate limit for %s must be positive", route)
		}
	}
	return nil
}
