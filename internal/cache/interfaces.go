package cache

import (
	"context"
	"time"
)

// Cache is the read cache in front of the content repositories. The memory
// implementation serves development and single-instance deployments; Redis
// serves multi-instance production.
type Cache interface {
	// Get retrieves a value by key. Returns ErrCacheMiss if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// GetOrSet retrieves a value or computes and stores it if missing.
	GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() ([]byte, error)) ([]byte, error)

	// Clear removes all entries from the cache.
	Clear(ctx context.Context) error
}

// CacheError is a sentinel error type for cache failures.
type CacheError string

func (e CacheError) Error() string { return string(e) }

const (
	// ErrCacheMiss indicates the key was not found in cache.
	ErrCacheMiss CacheError = "cache miss"
)

// ProductHandleKey is the cache key for a product looked up by handle.
func ProductHandleKey(handle string) string {
	return "storefront:product:handle:" + handle
}

// CollectionHandleKey is the cache key for a collection looked up by handle.
func CollectionHandleKey(handle string) string {
	return "storefront:collection:handle:" + handle
}
