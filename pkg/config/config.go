package config

import (
	"context"
	"fmt"
	"time"

	"github.com/rosterhq/roster/pkg/config/definition"
)

// Config is the complete application configuration. Values are resolved
// from defaults, YAML files, environment variables, and CLI flags.
type Config struct {
	Server     ServerConfig     `koanf:"server"     validate:"required"`
	Database   DatabaseConfig   `koanf:"database"   validate:"required"`
	Runtime    RuntimeConfig    `koanf:"runtime"    validate:"required"`
	RateLimit  RateLimitConfig  `koanf:"ratelimit"`
	Monitoring MonitoringConfig `koanf:"monitoring"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host        string        `koanf:"host"         validate:"required"        env:"SERVER_HOST"`
	Port        int           `koanf:"port"         validate:"min=1,max=65535" env:"SERVER_PORT"`
	CORSEnabled bool          `koanf:"cors_enabled"                            env:"SERVER_CORS_ENABLED"`
	CORS        CORSConfig    `koanf:"cors"`
	Timeouts    TimeoutConfig `koanf:"timeouts"`
}

// CORSConfig contains CORS configuration.
type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"   env:"SERVER_CORS_ALLOWED_ORIGINS"`
	AllowCredentials bool     `koanf:"allow_credentials" env:"SERVER_CORS_ALLOW_CREDENTIALS"`
	MaxAge           int      `koanf:"max_age"           env:"SERVER_CORS_MAX_AGE"`
}

// TimeoutConfig contains server lifecycle timeouts.
type TimeoutConfig struct {
	HTTPRead           time.Duration `koanf:"http_read"           env:"SERVER_HTTP_READ_TIMEOUT"`
	HTTPWrite          time.Duration `koanf:"http_write"          env:"SERVER_HTTP_WRITE_TIMEOUT"`
	HTTPIdle           time.Duration `koanf:"http_idle"           env:"SERVER_HTTP_IDLE_TIMEOUT"`
	ServerShutdown     time.Duration `koanf:"server_shutdown"     env:"SERVER_SHUTDOWN_TIMEOUT"`
	DBShutdown         time.Duration `koanf:"db_shutdown"         env:"SERVER_DB_SHUTDOWN_TIMEOUT"`
	MonitoringInit     time.Duration `koanf:"monitoring_init"     env:"SERVER_MONITORING_INIT_TIMEOUT"`
	MonitoringShutdown time.Duration `koanf:"monitoring_shutdown" env:"SERVER_MONITORING_SHUTDOWN_TIMEOUT"`
}

// DatabaseConfig contains Postgres connection configuration. Either
// ConnString or the individual host/port/user/name fields must be set.
type DatabaseConfig struct {
	ConnString       string          `koanf:"conn_string"       env:"DB_CONN_STRING"`
	Host             string          `koanf:"host"              env:"DB_HOST"`
	Port             string          `koanf:"port"              env:"DB_PORT"`
	User             string          `koanf:"user"              env:"DB_USER"`
	Password         SensitiveString `koanf:"password"          env:"DB_PASSWORD"          sensitive:"true"`
	DBName           string          `koanf:"name"              env:"DB_NAME"`
	SSLMode          string          `koanf:"ssl_mode"          env:"DB_SSL_MODE"`
	AutoMigrate      bool            `koanf:"auto_migrate"      env:"DB_AUTO_MIGRATE"`
	MigrationTimeout time.Duration   `koanf:"migration_timeout" env:"DB_MIGRATION_TIMEOUT"`
}

// minMigrationTimeout matches the advisory lock wait inside the migration
// runner; a smaller budget would cancel migrations that are still queued
// behind another instance holding the lock.
const minMigrationTimeout = 45 * time.Second

// Validate checks that the configuration identifies a reachable database.
func (d *DatabaseConfig) Validate() error {
	if d.ConnString == "" {
		if d.Host == "" || d.Port == "" || d.User == "" || d.DBName == "" {
			return fmt.Errorf("database configuration incomplete: either conn_string or host, port, user, and name are required")
		}
	}
	if d.AutoMigrate && d.MigrationTimeout > 0 && d.MigrationTimeout < minMigrationTimeout {
		return fmt.Errorf("database migration_timeout %s is below the minimum %s", d.MigrationTimeout, minMigrationTimeout)
	}
	return nil
}

// RuntimeConfig contains runtime behavior configuration.
type RuntimeConfig struct {
	Environment string `koanf:"environment" validate:"oneof=development staging production" env:"RUNTIME_ENVIRONMENT"`
	LogLevel    string `koanf:"log_level"   validate:"oneof=debug info warn error"           env:"RUNTIME_LOG_LEVEL"`
}

// RateLimitConfig contains rate limiting configuration. A GlobalRate limit
// of zero disables the rate limiter entirely.
type RateLimitConfig struct {
	GlobalRate    RateConfig      `koanf:"global_rate"`
	RedisAddr     string          `koanf:"redis_addr"     env:"RATELIMIT_REDIS_ADDR"`
	RedisPassword SensitiveString `koanf:"redis_password" env:"RATELIMIT_REDIS_PASSWORD" sensitive:"true"`
	RedisDB       int             `koanf:"redis_db"       env:"RATELIMIT_REDIS_DB"`
	Prefix        string          `koanf:"prefix"         env:"RATELIMIT_PREFIX"`
	MaxRetry      int             `koanf:"max_retry"      env:"RATELIMIT_MAX_RETRY"`
}

// RateConfig represents a single rate limit as requests per period.
type RateConfig struct {
	Limit  int64         `koanf:"limit"`
	Period time.Duration `koanf:"period"`
}

// MonitoringConfig controls the Prometheus metrics endpoint.
type MonitoringConfig struct {
	Enabled bool   `koanf:"enabled" env:"MONITORING_ENABLED"`
	Path    string `koanf:"path"    env:"MONITORING_PATH"`
}

// Service defines the configuration management service interface.
type Service interface {
	// Load loads configuration from the specified sources with precedence order.
	Load(ctx context.Context, sources ...Source) (*Config, error)
	// Watch registers a callback invoked when configuration changes.
	Watch(ctx context.Context, callback func(*Config)) error
	// Validate checks if the configuration meets all validation requirements.
	Validate(config *Config) error
	// GetSource returns which source (cli, yaml, env, default) provided a key.
	GetSource(key string) SourceType
}

// Source defines the interface for configuration sources.
type Source interface {
	// Load reads configuration from the source.
	Load() (map[string]any, error)
	// Watch monitors the source for changes.
	Watch(ctx context.Context, callback func()) error
	// Type returns the source type identifier.
	Type() SourceType
	// Close releases any resources held by the source.
	Close() error
}

// SourceType identifies the type of configuration source.
type SourceType string

const (
	SourceCLI     SourceType = "cli"
	SourceYAML    SourceType = "yaml"
	SourceEnv     SourceType = "env"
	SourceDefault SourceType = "default"
)

// Metadata records which source provided each configuration key.
type Metadata struct {
	Sources  map[string]SourceType `json:"sources"`
	LoadedAt time.Time             `json:"loaded_at"`
}

// Load loads configuration using a fresh service with defaults and
// environment variables only. Convenience for tools and tests.
func Load() (*Config, error) {
	service := NewService()
	return service.Load(context.Background())
}

// Default returns a Config populated from the field registry.
func Default() *Config {
	registry := definition.CreateRegistry()
	return &Config{
		Server:     buildServerConfig(registry),
		Database:   buildDatabaseConfig(registry),
		Runtime:    buildRuntimeConfig(registry),
		RateLimit:  buildRateLimitConfig(registry),
		Monitoring: buildMonitoringConfig(registry),
	}
}

func getString(registry *definition.Registry, path string) string {
	if val := registry.GetDefault(path); val != nil {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return ""
}

func getInt(registry *definition.Registry, path string) int {
	if val := registry.GetDefault(path); val != nil {
		if i, ok := val.(int); ok {
			return i
		}
	}
	return 0
}

func getInt64(registry *definition.Registry, path string) int64 {
	if val := registry.GetDefault(path); val != nil {
		if i, ok := val.(int64); ok {
			return i
		}
	}
	return 0
}

func getBool(registry *definition.Registry, path string) bool {
	if val := registry.GetDefault(path); val != nil {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return false
}

func getDuration(registry *definition.Registry, path string) time.Duration {
	if val := registry.GetDefault(path); val != nil {
		if d, ok := val.(time.Duration); ok {
			return d
		}
	}
	return 0
}

func getStringSlice(registry *definition.Registry, path string) []string {
	if val := registry.GetDefault(path); val != nil {
		if slice, ok := val.([]string); ok {
			return slice
		}
	}
	return []string{}
}

func buildServerConfig(registry *definition.Registry) ServerConfig {
	return ServerConfig{
		Host:        getString(registry, "server.host"),
		Port:        getInt(registry, "server.port"),
		CORSEnabled: getBool(registry, "server.cors_enabled"),
		CORS: CORSConfig{
			AllowedOrigins:   getStringSlice(registry, "server.cors.allowed_origins"),
			AllowCredentials: getBool(registry, "server.cors.allow_credentials"),
			MaxAge:           getInt(registry, "server.cors.max_age"),
		},
		Timeouts: TimeoutConfig{
			HTTPRead:           getDuration(registry, "server.timeouts.http_read"),
			HTTPWrite:          getDuration(registry, "server.timeouts.http_write"),
			HTTPIdle:           getDuration(registry, "server.timeouts.http_idle"),
			ServerShutdown:     getDuration(registry, "server.timeouts.server_shutdown"),
			DBShutdown:         getDuration(registry, "server.timeouts.db_shutdown"),
			MonitoringInit:     getDuration(registry, "server.timeouts.monitoring_init"),
			MonitoringShutdown: getDuration(registry, "server.timeouts.monitoring_shutdown"),
		},
	}
}

func buildDatabaseConfig(registry *definition.Registry) DatabaseConfig {
	return DatabaseConfig{
		ConnString:       getString(registry, "database.conn_string"),
		Host:             getString(registry, "database.host"),
		Port:             getString(registry, "database.port"),
		User:             getString(registry, "database.user"),
		Password:         SensitiveString(getString(registry, "database.password")),
		DBName:           getString(registry, "database.name"),
		SSLMode:          getString(registry, "database.ssl_mode"),
		AutoMigrate:      getBool(registry, "database.auto_migrate"),
		MigrationTimeout: getDuration(registry, "database.migration_timeout"),
	}
}

func buildRuntimeConfig(registry *definition.Registry) RuntimeConfig {
	return RuntimeConfig{
		Environment: getString(registry, "runtime.environment"),
		LogLevel:    getString(registry, "runtime.log_level"),
	}
}

func buildRateLimitConfig(registry *definition.Registry) RateLimitConfig {
	return RateLimitConfig{
		GlobalRate: RateConfig{
			Limit:  getInt64(registry, "ratelimit.global_rate.limit"),
			Period: getDuration(registry, "ratelimit.global_rate.period"),
		},
		RedisAddr:     getString(registry, "ratelimit.redis_addr"),
		RedisPassword: SensitiveString(getString(registry, "ratelimit.redis_password")),
		RedisDB:       getInt(registry, "ratelimit.redis_db"),
		Prefix:        getString(registry, "ratelimit.prefix"),
		MaxRetry:      getInt(registry, "ratelimit.max_retry"),
	}
}

func buildMonitoringConfig(registry *definition.Registry) MonitoringConfig {
	return MonitoringConfig{
		Enabled: getBool(registry, "monitoring.enabled"),
		Path:    getString(registry, "monitoring.path"),
	}
}
