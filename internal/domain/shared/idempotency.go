package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers client-supplied idempotency keys so that a
// retried request can be answered with the result of the first attempt.
type IdempotencyStore interface {
	// Acquire claims the key for an in-flight request.
	// Returns false if the key is already claimed or completed.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Lookup returns the stored result for a completed key.
	// found is false for unknown keys and for keys still in flight.
	Lookup(ctx context.Context, key string) (value string, found bool, err error)

	// Complete records the result of the request that acquired the key
	Complete(ctx context.Context, key, value string, ttl time.Duration) error

	// Release drops an in-flight claim so the request can be retried
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a completed key is remembered. Default: 24 hours
	TTL time.Duration

	// Enabled determines whether idempotency checking is enabled
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
