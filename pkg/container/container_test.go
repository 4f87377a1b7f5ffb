package container

import (
	"context"
	"testing"
	"time"

	"bookit/internal/config"
	infraCache "bookit/internal/infrastructure/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		App:       config.AppConfig{Environment: "test"},
		Database:  config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"},
		Redis:     config.RedisConfig{TTL: time.Minute},
		RateLimit: config.RateLimitConfig{Enabled: true, RPS: 10, Burst: 10},
	}
}

func TestNewContainer_SQLite(t *testing.T) {
	c, err := NewContainer(context.Background(), testConfig())
	require.NoError(t, err)
	t.Cleanup(c.Cleanup)

	assert.NotNil(t, c.BookHandler)
	assert.NotNil(t, c.RateLimiter)
	assert.IsType(t, &infraCache.MemoryCache{}, c.Cache)

	status, healthy := c.Health(context.Background())
	assert.True(t, healthy)
	assert.Equal(t, map[string]string{"database": "ok"}, status)
}

func TestNewContainer_RedisDownFallsBack(t *testing.T) {
	cfg := testConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.Host = "127.0.0.1:1"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := NewContainer(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(c.Cleanup)

	assert.Nil(t, c.Redis)
	assert.IsType(t, &infraCache.MemoryCache{}, c.Cache)
}
