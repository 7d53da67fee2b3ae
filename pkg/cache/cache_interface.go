package cache

import (
	"context"
	"time"
)

// Cache is the contract of the cache layer.
// Values are stored as JSON; Redis is the production implementation.
type Cache interface {
	// Get unmarshals the cached value into dest.
	// found = false on a miss, dest untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error

	// Increment atomically adds one and returns the new value (1 for a new key)
	Increment(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}
