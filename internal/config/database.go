package config

import (
	"os"
	"strconv"
	"time"
)

const (
	databaseURLEnv         = "DATABASE_URL"
	databaseAutoMigrateEnv = "DATABASE_AUTO_MIGRATE"
	databaseMaxOpenEnv     = "DATABASE_MAX_OPEN_CONNS"
	databaseConnMaxLifeEnv = "DATABASE_CONN_MAX_LIFETIME"

	defaultDatabaseMaxOpen     = 10
	defaultDatabaseConnMaxLife = 30 * time.Minute
)

type DatabaseConfig struct {
	// URL is a Postgres DSN. Empty disables persistence.
	URL             string
	AutoMigrate     bool
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

func LoadDatabaseConfig() *DatabaseConfig {
	maxOpen := defaultDatabaseMaxOpen
	if v := os.Getenv(databaseMaxOpenEnv); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			maxOpen = parsed
		}
	}

	connMaxLife := defaultDatabaseConnMaxLife
	if v := os.Getenv(databaseConnMaxLifeEnv); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			connMaxLife = parsed
		}
	}

	return &DatabaseConfig{
		URL:             os.Getenv(databaseURLEnv),
		AutoMigrate:     os.Getenv(databaseAutoMigrateEnv) == "true",
		MaxOpenConns:    maxOpen,
		ConnMaxLifetime: connMaxLife,
	}
}

func (c *DatabaseConfig) Enabled() bool {
	return c != nil && c.URL != ""
}
