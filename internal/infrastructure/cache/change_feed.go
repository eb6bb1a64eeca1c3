package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultChangeChannel = "tehraja:changes"
	defaultCloseTimeout  = 5 * time.Second
)

// Change tells other instances that a collection was written
type Change struct {
	// Topic is the collection that changed: products, orders or logs
	Topic string `json:"topic"`
	// Key narrows the change to one record, e.g. an order id
	Key string `json:"key,omitempty"`
	// Origin is the publishing instance; receivers skip their own messages
	Origin    string `json:"origin"`
	Timestamp int64  `json:"timestamp"`
}

// RedisChangeFeed fans change notifications out to every instance using
// Redis Pub/Sub
type RedisChangeFeed struct {
	client    *redis.Client
	channel   string
	logger    *zap.Logger
	cancelFn  context.CancelFunc
	doneCh    chan struct{}
	doneOnce  sync.Once
	mu        sync.Mutex
	isRunning bool
}

// RedisChangeFeedOption is a functional option for configuring the feed
type RedisChangeFeedOption func(*RedisChangeFeed)

// WithChangeChannel sets the Pub/Sub channel name
func WithChangeChannel(channel string) RedisChangeFeedOption {
	return func(f *RedisChangeFeed) {
		if channel != "" {
			f.channel = channel
		}
	}
}

// WithChangeFeedLogger sets the logger for the feed
func WithChangeFeedLogger(logger *zap.Logger) RedisChangeFeedOption {
	return func(f *RedisChangeFeed) {
		f.logger = logger
	}
}

// NewRedisChangeFeed creates a feed on a shared client. The caller keeps
// ownership of the client.
func NewRedisChangeFeed(client *redis.Client, opts ...RedisChangeFeedOption) *RedisChangeFeed {
	f := &RedisChangeFeed{
		client:  client,
		channel: defaultChangeChannel,
		logger:  zap.NewNop(),
		doneCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Publish sends a change notification to all subscribers
func (f *RedisChangeFeed) Publish(ctx context.Context, msg Change) error {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixNano()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal change: %w", err)
	}

	if err := f.client.Publish(ctx, f.channel, data).Err(); err != nil {
		f.logger.Error("Failed to publish change",
			zap.String("channel", f.channel),
			zap.String("topic", msg.Topic),
			zap.Error(err))
		return fmt.Errorf("failed to publish change: %w", err)
	}
	return nil
}

// Subscribe listens for changes and calls callback for each one. It blocks
// until ctx is cancelled, Close is called or the connection drops.
func (f *RedisChangeFeed) Subscribe(ctx context.Context, callback func(Change)) error {
	f.mu.Lock()
	if f.isRunning {
		f.mu.Unlock()
		return fmt.Errorf("subscription already running")
	}
	f.isRunning = true
	subCtx, cancel := context.WithCancel(ctx)
	f.cancelFn = cancel
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.isRunning = false
		f.mu.Unlock()
		f.markDone()
	}()

	pubsub := f.client.Subscribe(subCtx, f.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(subCtx); err != nil {
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}

	f.logger.Info("Subscribed to change channel", zap.String("channel", f.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-subCtx.Done():
			f.logger.Info("Change subscription stopped")
			return subCtx.Err()
		case msg, ok := <-ch:
			if !ok {
				f.logger.Warn("Change channel closed")
				return fmt.Errorf("change channel closed")
			}

			var change Change
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				f.logger.Error("Failed to unmarshal change",
					zap.String("payload", msg.Payload),
					zap.Error(err))
				continue
			}
			f.dispatch(callback, change)
		}
	}
}

func (f *RedisChangeFeed) dispatch(callback func(Change), change Change) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("Panic in change callback", zap.Any("panic", r))
		}
	}()
	callback(change)
}

// markDone safely marks the feed as done
func (f *RedisChangeFeed) markDone() {
	f.doneOnce.Do(func() {
		close(f.doneCh)
	})
}

// Close stops a running subscription
func (f *RedisChangeFeed) Close() error {
	f.mu.Lock()
	cancelFn := f.cancelFn
	f.mu.Unlock()

	if cancelFn != nil {
		cancelFn()
		select {
		case <-f.doneCh:
		case <-time.After(defaultCloseTimeout):
			f.logger.Warn("Timeout waiting for change subscription to stop")
		}
	}
	return nil
}

// Channel returns the Pub/Sub channel name
func (f *RedisChangeFeed) Channel() string {
	return f.channel
}
