package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Redis integration test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedis_Integration(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()

	t.Run("idempotency store", func(t *testing.T) {
		store := NewRedisIdempotencyStoreWithClient(client, "test:idem:")

		ok, err := store.Acquire(ctx, "k1", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.Acquire(ctx, "k1", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)

		_, found, err := store.Lookup(ctx, "k1")
		require.NoError(t, err)
		assert.False(t, found)

		require.NoError(t, store.Complete(ctx, "k1", "order-1", time.Minute))
		require.NoError(t, store.Release(ctx, "k1"))

		value, found, err := store.Lookup(ctx, "k1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "order-1", value)

		_, _ = store.Acquire(ctx, "k2", time.Minute)
		require.NoError(t, store.Release(ctx, "k2"))
		ok, err = store.Acquire(ctx, "k2", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("cart store", func(t *testing.T) {
		store := NewRedisCartStore(client, time.Minute)

		require.NoError(t, store.Save(ctx, sampleCart("s1")))
		loaded, err := store.Load(ctx, "s1")
		require.NoError(t, err)
		require.Len(t, loaded.Lines, 1)
		assert.Equal(t, "Teh Tarik", loaded.Lines[0].Name)

		ttl, err := client.TTL(ctx, defaultCartPrefix+"s1").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))

		require.NoError(t, store.Delete(ctx, "s1"))
		empty, err := store.Load(ctx, "s1")
		require.NoError(t, err)
		assert.True(t, empty.IsEmpty())
	})

	t.Run("change feed", func(t *testing.T) {
		feed := NewRedisChangeFeed(client, WithChangeChannel("test:changes"), WithChangeFeedLogger(zap.NewNop()))
		received := make(chan Change, 1)

		go func() { _ = feed.Subscribe(ctx, func(c Change) { received <- c }) }()
		defer feed.Close()

		require.Eventually(t, func() bool {
			n, err := client.PubSubNumSub(ctx, "test:changes").Result()
			return err == nil && n["test:changes"] > 0
		}, 5*time.Second, 50*time.Millisecond)

		require.NoError(t, feed.Publish(ctx, Change{Topic: "orders", Key: "o1", Origin: "node-a"}))

		select {
		case c := <-received:
			assert.Equal(t, "orders", c.Topic)
			assert.Equal(t, "o1", c.Key)
			assert.Equal(t, "node-a", c.Origin)
			assert.NotZero(t, c.Timestamp)
		case <-time.After(5 * time.Second):
			t.Fatal("change not delivered")
		}
	})

	t.Run("rate limiter", func(t *testing.T) {
		limiter := NewRedisRateLimiter(client, 2, time.Minute, "test:rl:")

		ok, remaining, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 1, remaining)

		ok, _, err = limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, remaining, err = limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, remaining)

		ok, _, err = limiter.Allow(ctx, "10.0.0.2")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
