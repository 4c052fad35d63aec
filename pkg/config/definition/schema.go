package definition

import (
	"reflect"
	"time"
)

var (
	stringType   = reflect.TypeOf("")
	intType      = reflect.TypeOf(0)
	int64Type    = reflect.TypeOf(int64(0))
	boolType     = reflect.TypeOf(true)
	durationType = reflect.TypeOf(time.Duration(0))
	sliceType    = reflect.TypeOf([]string{})
)

// CreateRegistry builds the registry holding every configuration field.
// Defaults declared here are the only place default values live.
func CreateRegistry() *Registry {
	registry := NewRegistry()
	registerServerFields(registry)
	registerDatabaseFields(registry)
	registerRuntimeFields(registry)
	registerRateLimitFields(registry)
	registerMonitoringFields(registry)
	return registry
}

func registerServerFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "server.host",
		Default: "0.0.0.0",
		CLIFlag: "host",
		EnvVar:  "SERVER_HOST",
		Type:    stringType,
		Help:    "Host to bind the server to",
	})
	registry.Register(&FieldDef{
		Path:    "server.port",
		Default: 8080,
		CLIFlag: "port",
		EnvVar:  "SERVER_PORT",
		Type:    intType,
		Help:    "Port to run the server on",
	})
	registry.Register(&FieldDef{
		Path:    "server.cors_enabled",
		Default: true,
		CLIFlag: "cors",
		EnvVar:  "SERVER_CORS_ENABLED",
		Type:    boolType,
		Help:    "Enable CORS",
	})
	registry.Register(&FieldDef{
		Path:    "server.cors.allowed_origins",
		Default: []string{"http://localhost:3000", "http://localhost:8080"},
		CLIFlag: "cors-allowed-origins",
		EnvVar:  "SERVER_CORS_ALLOWED_ORIGINS",
		Type:    sliceType,
		Help:    "Allowed CORS origins (comma-separated)",
	})
	registry.Register(&FieldDef{
		Path:    "server.cors.allow_credentials",
		Default: true,
		CLIFlag: "cors-allow-credentials",
		EnvVar:  "SERVER_CORS_ALLOW_CREDENTIALS",
		Type:    boolType,
		Help:    "Allow credentials in CORS requests",
	})
	registry.Register(&FieldDef{
		Path:    "server.cors.max_age",
		Default: 86400,
		CLIFlag: "cors-max-age",
		EnvVar:  "SERVER_CORS_MAX_AGE",
		Type:    intType,
		Help:    "CORS preflight max age in seconds",
	})
	registerServerTimeoutFields(registry)
}

func registerServerTimeoutFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "server.timeouts.http_read",
		Default: 15 * time.Second,
		EnvVar:  "SERVER_HTTP_READ_TIMEOUT",
		Type:    durationType,
		Help:    "HTTP server read timeout",
	})
	registry.Register(&FieldDef{
		Path:    "server.timeouts.http_write",
		Default: 15 * time.Second,
		EnvVar:  "SERVER_HTTP_WRITE_TIMEOUT",
		Type:    durationType,
		Help:    "HTTP server write timeout",
	})
	registry.Register(&FieldDef{
		Path:    "server.timeouts.http_idle",
		Default: 60 * time.Second,
		EnvVar:  "SERVER_HTTP_IDLE_TIMEOUT",
		Type:    durationType,
		Help:    "HTTP server idle timeout",
	})
	registry.Register(&FieldDef{
		Path:    "server.timeouts.server_shutdown",
		Default: 5 * time.Second,
		EnvVar:  "SERVER_SHUTDOWN_TIMEOUT",
		Type:    durationType,
		Help:    "Timeout for HTTP server graceful shutdown",
	})
	registry.Register(&FieldDef{
		Path:    "server.timeouts.db_shutdown",
		Default: 30 * time.Second,
		EnvVar:  "SERVER_DB_SHUTDOWN_TIMEOUT",
		Type:    durationType,
		Help:    "Timeout for database pool shutdown",
	})
	registry.Register(&FieldDef{
		Path:    "server.timeouts.monitoring_init",
		Default: 500 * time.Millisecond,
		EnvVar:  "SERVER_MONITORING_INIT_TIMEOUT",
		Type:    durationType,
		Help:    "Timeout for monitoring service initialization",
	})
	registry.Register(&FieldDef{
		Path:    "server.timeouts.monitoring_shutdown",
		Default: 5 * time.Second,
		EnvVar:  "SERVER_MONITORING_SHUTDOWN_TIMEOUT",
		Type:    durationType,
		Help:    "Timeout for monitoring service shutdown",
	})
}

func registerDatabaseFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "database.host",
		Default: "localhost",
		CLIFlag: "db-host",
		EnvVar:  "DB_HOST",
		Type:    stringType,
		Help:    "Database host",
	})
	registry.Register(&FieldDef{
		Path:    "database.port",
		Default: "5432",
		CLIFlag: "db-port",
		EnvVar:  "DB_PORT",
		Type:    stringType,
		Help:    "Database port",
	})
	registry.Register(&FieldDef{
		Path:    "database.user",
		Default: "postgres",
		CLIFlag: "db-user",
		EnvVar:  "DB_USER",
		Type:    stringType,
		Help:    "Database user",
	})
	registry.Register(&FieldDef{
		Path:    "database.password",
		Default: "",
		CLIFlag: "db-password",
		EnvVar:  "DB_PASSWORD",
		Type:    stringType,
		Help:    "Database password",
	})
	registry.Register(&FieldDef{
		Path:    "database.name",
		Default: "roster",
		CLIFlag: "db-name",
		EnvVar:  "DB_NAME",
		Type:    stringType,
		Help:    "Database name",
	})
	registry.Register(&FieldDef{
		Path:    "database.ssl_mode",
		Default: "disable",
		CLIFlag: "db-ssl-mode",
		EnvVar:  "DB_SSL_MODE",
		Type:    stringType,
		Help:    "Database SSL mode",
	})
	registry.Register(&FieldDef{
		Path:    "database.conn_string",
		Default: "",
		CLIFlag: "db-conn-string",
		EnvVar:  "DB_CONN_STRING",
		Type:    stringType,
		Help:    "Database connection string (overrides individual fields)",
	})
	registry.Register(&FieldDef{
		Path:    "database.auto_migrate",
		Default: true,
		CLIFlag: "db-auto-migrate",
		EnvVar:  "DB_AUTO_MIGRATE",
		Type:    boolType,
		Help:    "Automatically run database migrations on startup",
	})
	registry.Register(&FieldDef{
		Path:    "database.migration_timeout",
		Default: 2 * time.Minute,
		CLIFlag: "db-migration-timeout",
		EnvVar:  "DB_MIGRATION_TIMEOUT",
		Type:    durationType,
		Help:    "Maximum duration allowed for startup database migrations (must be >= 45s)",
	})
}

func registerRuntimeFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "runtime.environment",
		Default: "development",
		EnvVar:  "RUNTIME_ENVIRONMENT",
		Type:    stringType,
		Help:    "Runtime environment",
	})
	registry.Register(&FieldDef{
		Path:    "runtime.log_level",
		Default: "info",
		CLIFlag: "log-level",
		EnvVar:  "RUNTIME_LOG_LEVEL",
		Type:    stringType,
		Help:    "Log level (debug, info, warn, error)",
	})
}

func registerRateLimitFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "ratelimit.global_rate.limit",
		Default: int64(100),
		EnvVar:  "RATELIMIT_GLOBAL_LIMIT",
		Type:    int64Type,
		Help:    "Global rate limit (requests per period, 0 disables rate limiting)",
	})
	registry.Register(&FieldDef{
		Path:    "ratelimit.global_rate.period",
		Default: 1 * time.Minute,
		EnvVar:  "RATELIMIT_GLOBAL_PERIOD",
		Type:    durationType,
		Help:    "Global rate limit period",
	})
	registry.Register(&FieldDef{
		Path:    "ratelimit.redis_addr",
		Default: "",
		EnvVar:  "RATELIMIT_REDIS_ADDR",
		Type:    stringType,
		Help:    "Redis address for the rate limit store (empty uses in-memory)",
	})
	registry.Register(&FieldDef{
		Path:    "ratelimit.redis_password",
		Default: "",
		EnvVar:  "RATELIMIT_REDIS_PASSWORD",
		Type:    stringType,
		Help:    "Redis password for the rate limit store",
	})
	registry.Register(&FieldDef{
		Path:    "ratelimit.redis_db",
		Default: 0,
		EnvVar:  "RATELIMIT_REDIS_DB",
		Type:    intType,
		Help:    "Redis database number for the rate limit store",
	})
	registry.Register(&FieldDef{
		Path:    "ratelimit.prefix",
		Default: "roster:ratelimit:",
		EnvVar:  "RATELIMIT_PREFIX",
		Type:    stringType,
		Help:    "Key prefix for rate limit counters",
	})
	registry.Register(&FieldDef{
		Path:    "ratelimit.max_retry",
		Default: 3,
		EnvVar:  "RATELIMIT_MAX_RETRY",
		Type:    intType,
		Help:    "Max retries when incrementing rate limit counters",
	})
}

func registerMonitoringFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "monitoring.enabled",
		Default: false,
		CLIFlag: "monitoring-enabled",
		EnvVar:  "MONITORING_ENABLED",
		Type:    boolType,
		Help:    "Expose Prometheus metrics",
	})
	registry.Register(&FieldDef{
		Path:    "monitoring.path",
		Default: "/metrics",
		CLIFlag: "monitoring-path",
		EnvVar:  "MONITORING_PATH",
		Type:    stringType,
		Help:    "HTTP path for the metrics endpoint",
	})
}
