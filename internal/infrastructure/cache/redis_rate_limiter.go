package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRateLimitPrefix = "tehraja:ratelimit:"

// windowScript increments the window counter and starts its expiry on the
// first hit
var windowScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// RedisRateLimiter is a fixed-window limiter whose counters are shared by
// every instance.
type RedisRateLimiter struct {
	client    *redis.Client
	limit     int
	window    time.Duration
	keyPrefix string
}

// NewRedisRateLimiter allows limit requests per key per window
func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration, keyPrefix string) *RedisRateLimiter {
	if keyPrefix == "" {
		keyPrefix = defaultRateLimitPrefix
	}
	return &RedisRateLimiter{client: client, limit: limit, window: window, keyPrefix: keyPrefix}
}

// Allow counts one request for key and reports whether it fits the window
// along with the requests left.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	bucket := time.Now().UnixNano() / int64(l.window)
	redisKey := fmt.Sprintf("%s%s:%d", l.keyPrefix, key, bucket)

	n, err := windowScript.Run(ctx, l.client, []string{redisKey}, l.window.Milliseconds()).Int()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit counter: %w", err)
	}
	if n > l.limit {
		return false, 0, nil
	}
	return true, l.limit - n, nil
}

// Limit returns the per-window allowance
func (l *RedisRateLimiter) Limit() int {
	return l.limit
}
