package postgres

import (
	"fmt"
	"time"
)

// Config holds PostgreSQL connection settings for the driver.
// Prefer providing a DSN via ConnString. When empty, a DSN is
// synthesized from the individual fields.
type Config struct {
	ConnString string
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string

	// Pool tuning. Zero values fall back to driver defaults.
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	ConnMaxIdleTime    time.Duration
	HealthCheckPeriod  time.Duration
	ConnectTimeout     time.Duration
	PingTimeout        time.Duration
	HealthCheckTimeout time.Duration
}

// DSN returns the connection string used for pool creation and migrations.
func (c *Config) DSN() string {
	if c.ConnString != "" {
		return c.ConnString
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		valueOrDefault(c.Host, "localhost"),
		valueOrDefault(c.Port, "5432"),
		valueOrDefault(c.User, "postgres"),
		c.Password,
		valueOrDefault(c.DBName, "postgres"),
		valueOrDefault(c.SSLMode, "disable"),
	)
}

func valueOrDefault(val, def string) string {
	if val == "" {
		return def
	}
	return val
}
