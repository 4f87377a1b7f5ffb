package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "byfood.com", cfg.URL.RedirectHost)
}

func TestLoad_RejectsRedirectHostWithWWW(t *testing.T) {
	t.Setenv("URL_REDIRECT_HOST", "www.example.com")

	_, err := Load()

	assert.ErrorContains(t, err, "URL_REDIRECT_HOST")
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("BOOKIT_API_URL", "http://api.test:9000")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Redis.TTL)
	assert.Equal(t, 2.5, cfg.RateLimit.RPS)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "http://api.test:9000", cfg.Client.BaseURL)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")

	_, err := Load()

	assert.ErrorContains(t, err, "DB_DRIVER")
}

func TestLoadDatabaseConfig(t *testing.T) {
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_RETRY_DELAY", "250ms")

	cfg, err := LoadDatabaseConfig()
	require.NoError(t, err)
	assert.Equal(t, 6543, cfg.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryDelay)

	assert.Empty(t, cfg.DSN)

	t.Setenv("DB_PORT", "abc")
	t.Setenv("DB_CONNECT_TIMEOUT", "soon")
	_, err = LoadDatabaseConfig()
	assert.ErrorContains(t, err, "DB_PORT")
	assert.ErrorContains(t, err, "DB_CONNECT_TIMEOUT")
}

func TestLoadDatabaseConfig_DatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db.test:5432/books?sslmode=require")

	cfg, err := LoadDatabaseConfig()

	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db.test:5432/books?sslmode=require", cfg.DSN)
	assert.Equal(t, int32(4), cfg.MaxConns)
}

func TestLoadDatabaseConfig_RejectsMinAboveMax(t *testing.T) {
	t.Setenv("DB_MIN_CONNECTIONS", "8")
	t.Setenv("DB_MAX_CONNECTIONS", "2")

	_, err := LoadDatabaseConfig()

	assert.ErrorContains(t, err, "DB_MIN_CONNECTIONS")
}
