package cache

import (
	"context"
	"time"
)

// Cache is the read-through cache used by services. Implementations store
// values as JSON so Redis and in-memory backends behave the same.
type Cache interface {
	// Get unmarshals the cached value into dest. found is false on a miss
	// and dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (found bool, err error)

	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	Delete(ctx context.Context, keys ...string) error

	// DeletePattern removes every key matching a glob such as "books:*".
	DeletePattern(ctx context.Context, pattern string) error

	Ping(ctx context.Context) error
}
