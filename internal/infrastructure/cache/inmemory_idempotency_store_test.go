package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_Acquire(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("claims a new key", func(t *testing.T) {
		ok, err := store.Acquire(ctx, "key-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("rejects a key already in flight", func(t *testing.T) {
		ok, err := store.Acquire(ctx, "key-2", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.Acquire(ctx, "key-2", time.Hour)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("allows a new claim after expiration", func(t *testing.T) {
		ok, err := store.Acquire(ctx, "key-3", 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, ok)

		time.Sleep(20 * time.Millisecond)

		ok, err = store.Acquire(ctx, "key-3", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok, "expired key should be claimable")
	})
}

func TestInMemoryIdempotencyStore_CompleteAndLookup(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	_, found, err := store.Lookup(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, found)

	ok, err := store.Acquire(ctx, "checkout-1", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	_, found, err = store.Lookup(ctx, "checkout-1")
	require.NoError(t, err)
	assert.False(t, found, "in-flight key has no result yet")

	require.NoError(t, store.Complete(ctx, "checkout-1", "order-42", time.Hour))

	value, found, err := store.Lookup(ctx, "checkout-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "order-42", value)

	ok, err = store.Acquire(ctx, "checkout-1", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok, "completed key cannot be claimed again")
}

func TestInMemoryIdempotencyStore_Release(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	_, _ = store.Acquire(ctx, "pending", time.Hour)
	require.NoError(t, store.Release(ctx, "pending"))
	ok, err := store.Acquire(ctx, "pending", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok, "released key can be claimed again")

	_, _ = store.Acquire(ctx, "done", time.Hour)
	require.NoError(t, store.Complete(ctx, "done", "order-1", time.Hour))
	require.NoError(t, store.Release(ctx, "done"))
	value, found, err := store.Lookup(ctx, "done")
	require.NoError(t, err)
	assert.True(t, found, "release keeps completed results")
	assert.Equal(t, "order-1", value)
}

func TestInMemoryIdempotencyStore_Cleanup(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	_, _ = store.Acquire(ctx, "short-lived-1", 10*time.Millisecond)
	_, _ = store.Acquire(ctx, "short-lived-2", 10*time.Millisecond)
	_, _ = store.Acquire(ctx, "long-lived", time.Hour)

	assert.Equal(t, 3, store.Size())

	time.Sleep(20 * time.Millisecond)
	store.cleanup()

	assert.Equal(t, 1, store.Size())
}

func TestInMemoryIdempotencyStore_ConcurrentAccess(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()
	const numGoroutines = 100

	results := make(chan bool, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			ok, err := store.Acquire(ctx, "concurrent-key", time.Hour)
			results <- err == nil && ok
		}()
	}

	acquired := 0
	for i := 0; i < numGoroutines; i++ {
		if <-results {
			acquired++
		}
	}

	assert.Equal(t, 1, acquired, "exactly one goroutine should acquire the key")
}

func TestInMemoryIdempotencyStore_Close(t *testing.T) {
	store := NewInMemoryIdempotencyStore()

	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
