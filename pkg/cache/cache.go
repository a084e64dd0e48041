// Package cache provides the byte-level key/value stores used to avoid
// re-fetching POMs and re-running collections.
//
// Backends:
//   - [FileCache]: one JSON file per key under a directory, for the CLI
//   - [RedisCache]: shared cache for multi-instance serve deployments
//   - [MongoCache]: document store with a TTL index
//   - [NullCache]: caching disabled
//
// Keys are produced by a [Keyer] so every backend sees the same namespaces.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is used when a caller does not configure an expiry.
const DefaultTTL = 24 * time.Hour

// Cache stores opaque byte values by key.
//
// Get reports a miss with ok == false and a nil error; errors are reserved
// for backend failures. A ttl of zero stores the value without expiry.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by backends that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}
