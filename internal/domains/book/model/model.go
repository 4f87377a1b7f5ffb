package model

import "strconv"

// Cache keys used by the books service. Every key starts with CacheKeyPrefix.
const (
	CacheKeyPrefix = "books:"
	CacheKeyList   = CacheKeyPrefix + "list"
)

// DetailCacheKey returns the cache key for a single book.
func DetailCacheKey(id int) string {
	return CacheKeyPrefix + "detail:" + strconv.Itoa(id)
}
