// Package cache records successful renders so unchanged diagrams can be
// skipped on the next run.
//
// Two implementations are provided:
//   - FileCache: JSON entries under a directory, used by the CLI
//   - NullCache: stores nothing, used when incremental mode is off
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}
