// Package datastore provides the key/value cache store the schema registry
// writes its introspection results through. Stores are plain read/write
// with TTL expiry; concurrent writers race with last-write-wins semantics,
// which is acceptable because the cached value is derived deterministically
// from immutable schema.
package datastore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Read when the key is absent or expired.
var ErrNotFound = errors.New("datastore: key not found")

// Store is a TTL'd key/value cache.
type Store interface {
	// Exists reports whether the key holds an unexpired value.
	Exists(ctx context.Context, key string) bool
	// Read returns the value stored under key, or ErrNotFound.
	Read(ctx context.Context, key string) ([]byte, error)
	// Write stores value under key. A zero ttl means no expiry.
	Write(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
