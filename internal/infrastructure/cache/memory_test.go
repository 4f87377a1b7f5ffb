package cache

import (
	"context"
	"os"
	"testing"
	"time"

	pkgcache "bookit/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ pkgcache.Cache = (*MemoryCache)(nil)
	_ pkgcache.Cache = (*RedisCache)(nil)
)

type cached struct {
	Title string `json:"title"`
}

func exerciseCache(t *testing.T, c pkgcache.Cache) {
	ctx := context.Background()

	var out cached
	found, err := c.Get(ctx, "books:detail:1", &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "books:detail:1", cached{Title: "A"}, time.Minute))
	require.NoError(t, c.Set(ctx, "books:detail:2", cached{Title: "B"}, time.Minute))
	require.NoError(t, c.Set(ctx, "books:list", []cached{{Title: "A"}}, time.Minute))

	found, err = c.Get(ctx, "books:detail:1", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "A", out.Title)

	require.NoError(t, c.DeletePattern(ctx, "books:detail:*"))
	found, _ = c.Get(ctx, "books:detail:2", &out)
	assert.False(t, found)

	var list []cached
	found, _ = c.Get(ctx, "books:list", &list)
	assert.True(t, found)

	require.NoError(t, c.Delete(ctx, "books:list"))
	found, _ = c.Get(ctx, "books:list", &list)
	assert.False(t, found)
}

func TestMemoryCache(t *testing.T) {
	exerciseCache(t, NewMemoryCache())
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(context.Background(), "k", cached{Title: "x"}, time.Second))
	now = now.Add(2 * time.Second)

	var out cached
	found, err := c.Get(context.Background(), "k", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

// TestRedisCache runs against a real server when REDIS_TEST_ADDR is set.
func TestRedisCache(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	rc := NewRedisClient(addr, "", 15)
	require.NoError(t, rc.Connect(context.Background()))
	t.Cleanup(func() {
		_ = rc.Client.FlushDB(context.Background()).Err()
		_ = rc.Close()
	})

	exerciseCache(t, NewRedisCache(rc))
}
