// Package cache holds the short-lived key/value state used by the API:
// feedback rate-limit counters and duplicate-submission fingerprints.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key does not exist or has expired.
var ErrMiss = errors.New("cache: key not found")

// Provider defines the interface for cache operations
type Provider interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with expiration
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// SetNX stores value only if key is absent and reports whether it did.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Increment adds one to the counter at key and returns the new value.
	// The window starts with the first increment.
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}
