package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"bookit/internal/infrastructure/database"
)

// LoadDatabaseConfig reads the settings for the postgres driver. It is only
// called when DB_DRIVER=postgres; sqlite needs nothing beyond SQLITE_PATH.
//
// DATABASE_URL takes precedence over DB_HOST, DB_PORT and friends. Pool and
// retry settings apply either way. Every malformed value is reported, not
// just the first.
func LoadDatabaseConfig() (*database.DBConfig, error) {
	var p strictEnv

	cfg := &database.DBConfig{
		DSN:      os.Getenv("DATABASE_URL"),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     p.int("DB_PORT", 5432),
		Username: getEnv("DB_USER", "bookit"),
		Password: getEnv("DB_PASSWORD", ""),
		DBName:   getEnv("DB_NAME", "bookit"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),

		// A books table behind one API process needs few connections.
		MaxConns:        int32(p.int("DB_MAX_CONNECTIONS", 4)),
		MinConns:        int32(p.int("DB_MIN_CONNECTIONS", 1)),
		MaxConnLifetime: p.duration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
		MaxConnIdleTime: p.duration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),

		MaxRetries:     p.int("DB_MAX_RETRIES", 5),
		RetryDelay:     p.duration("DB_RETRY_DELAY", time.Second),
		ConnectTimeout: p.duration("DB_CONNECT_TIMEOUT", 10*time.Second),
	}
	if p.err != nil {
		return nil, p.err
	}
	if cfg.MinConns > cfg.MaxConns {
		return nil, fmt.Errorf("DB_MIN_CONNECTIONS (%d) exceeds DB_MAX_CONNECTIONS (%d)", cfg.MinConns, cfg.MaxConns)
	}
	return cfg, nil
}

// strictEnv parses typed variables and collects every parse failure, unlike
// getEnvInt which falls back to the default silently.
type strictEnv struct {
	err error
}

func (p *strictEnv) int(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.err = errors.Join(p.err, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return v
}

func (p *strictEnv) duration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		p.err = errors.Join(p.err, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return v
}
