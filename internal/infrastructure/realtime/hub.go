// Package realtime pushes full collection snapshots to SSE subscribers.
// Writes are announced on the in-process event bus; the hub reloads the
// affected snapshot from the store and fans it out locally, and relays the
// change through Redis Pub/Sub so other instances do the same.
package realtime

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tehraja/backend/internal/domain/activity"
	"github.com/tehraja/backend/internal/domain/catalog"
	"github.com/tehraja/backend/internal/domain/inventory"
	"github.com/tehraja/backend/internal/domain/order"
	"github.com/tehraja/backend/internal/domain/shared"
	"github.com/tehraja/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Topics clients can subscribe to
const (
	TopicProducts = "products"
	TopicOrders   = "orders"
	TopicLogs     = "logs"

	orderTopicPrefix = "order:"
)

// SSE event names
const (
	EventSnapshot   = "snapshot"
	EventSyncStatus = "sync_status"
)

const (
	clientBuffer = 8
	maxReloads   = 3
)

// ErrTooManyClients is returned when the subscriber limit is reached
var ErrTooManyClients = errors.New("realtime subscriber limit reached")

// OrderTopic returns the per-order status topic
func OrderTopic(orderID string) string {
	return orderTopicPrefix + orderID
}

// SnapshotFunc loads the current state of a topic. key is the record id for
// keyed topics and empty otherwise.
type SnapshotFunc func(ctx context.Context, key string) (any, error)

// ChangeFeed relays changes between instances
type ChangeFeed interface {
	Publish(ctx context.Context, msg cache.Change) error
	Subscribe(ctx context.Context, callback func(cache.Change)) error
	Close() error
}

// Event is one message for a subscriber
type Event struct {
	Name string
	Data any
}

// Client is one SSE connection
type Client struct {
	ID     string
	Topic  string
	events chan Event
}

// Events returns the client's delivery channel. It is closed on unsubscribe.
func (c *Client) Events() <-chan Event {
	return c.events
}

// offer delivers ev without blocking. Snapshots supersede each other, so
// when the buffer is full the oldest pending event is dropped.
func (c *Client) offer(ev Event) {
	for {
		select {
		case c.events <- ev:
			return
		default:
		}
		select {
		case <-c.events:
		default:
		}
	}
}

// SyncState describes the hub's link to the shared change feed
type SyncState string

const (
	SyncLocal        SyncState = "local"
	SyncConnected    SyncState = "connected"
	SyncDisconnected SyncState = "disconnected"
)

// SyncStatus is reported to subscribers and on the health endpoint
type SyncStatus struct {
	State SyncState           `json:"state"`
	Since time.Time           `json:"since"`
	Error *shared.DomainError `json:"error,omitempty"`
}

// Config holds hub settings
type Config struct {
	MaxClients     int
	ReconnectDelay time.Duration
}

// Hub fans snapshots out to subscribers
type Hub struct {
	cfg      Config
	feed     ChangeFeed
	logger   *zap.Logger
	instance string

	group singleflight.Group

	mu          sync.RWMutex
	loaders     map[string]SnapshotFunc
	clients     map[string]map[*Client]struct{}
	clientCount int
	generations map[string]uint64
	status      SyncStatus
}

// NewHub creates a hub. feed may be nil for single-instance deployments.
func NewHub(cfg Config, feed ChangeFeed, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 5 * time.Second
	}
	state := SyncLocal
	if feed != nil {
		state = SyncDisconnected
	}
	return &Hub{
		cfg:         cfg,
		feed:        feed,
		logger:      logger.Named("realtime"),
		instance:    uuid.NewString(),
		loaders:     make(map[string]SnapshotFunc),
		clients:     make(map[string]map[*Client]struct{}),
		generations: make(map[string]uint64),
		status:      SyncStatus{State: state, Since: time.Now()},
	}
}

// Register sets the snapshot loader for a base topic (products, orders,
// logs or order)
func (h *Hub) Register(topic string, fn SnapshotFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loaders[topic] = fn
}

// splitTopic maps "order:abc" to ("order", "abc")
func splitTopic(topic string) (base, key string) {
	if id, ok := strings.CutPrefix(topic, orderTopicPrefix); ok {
		return "order", id
	}
	return topic, ""
}

func (h *Hub) loader(topic string) (SnapshotFunc, string, bool) {
	base, key := splitTopic(topic)
	h.mu.RLock()
	defer h.mu.RUnlock()
	fn, ok := h.loaders[base]
	return fn, key, ok
}

// Subscribe registers a new client on topic
func (h *Hub) Subscribe(topic string) (*Client, error) {
	if _, _, ok := h.loader(topic); !ok {
		return nil, shared.NewValidationError("Unknown topic " + topic)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cfg.MaxClients > 0 && h.clientCount >= h.cfg.MaxClients {
		return nil, ErrTooManyClients
	}
	c := &Client{
		ID:     uuid.NewString(),
		Topic:  topic,
		events: make(chan Event, clientBuffer),
	}
	if h.clients[topic] == nil {
		h.clients[topic] = make(map[*Client]struct{})
	}
	h.clients[topic][c] = struct{}{}
	h.clientCount++
	h.logger.Debug("Client subscribed", zap.String("client_id", c.ID), zap.String("topic", topic))
	return c, nil
}

// Unsubscribe removes the client and closes its channel
func (h *Hub) Unsubscribe(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.Topic]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.Topic)
	}
	h.clientCount--
	close(c.events)
	h.logger.Debug("Client unsubscribed", zap.String("client_id", c.ID), zap.String("topic", c.Topic))
}

// ClientCount returns the number of connected subscribers
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clientCount
}

// Snapshot loads the current state of topic for a new subscriber
func (h *Hub) Snapshot(ctx context.Context, topic string) (any, error) {
	fn, key, ok := h.loader(topic)
	if !ok {
		return nil, shared.NewValidationError("Unknown topic " + topic)
	}
	v, err, _ := h.group.Do("read:"+topic, func() (any, error) {
		return fn(ctx, key)
	})
	return v, err
}

// Status returns the current sync status
func (h *Hub) Status() SyncStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status
}

// Notify reloads topic and pushes the snapshot to local subscribers, then
// relays the change to other instances
func (h *Hub) Notify(ctx context.Context, topic string) {
	ctx = context.WithoutCancel(ctx)
	h.refresh(ctx, topic)
	if h.feed == nil {
		return
	}
	base, key := splitTopic(topic)
	msg := cache.Change{Topic: base, Key: key, Origin: h.instance}
	if err := h.feed.Publish(ctx, msg); err != nil {
		h.setStatus(SyncDisconnected, shared.NewSyncError(err))
	}
}

// refresh reloads and broadcasts a topic. Concurrent refreshes of one topic
// share a load, and the load repeats while newer writes arrive so the last
// broadcast always reflects every write that preceded a Notify.
func (h *Hub) refresh(ctx context.Context, topic string) {
	h.mu.Lock()
	h.generations[topic]++
	_, hasClients := h.clients[topic]
	h.mu.Unlock()
	if !hasClients {
		return
	}

	fn, key, ok := h.loader(topic)
	if !ok {
		return
	}

	_, err, _ := h.group.Do("push:"+topic, func() (any, error) {
		var snap any
		for range maxReloads {
			gen := h.generation(topic)
			var err error
			if snap, err = fn(ctx, key); err != nil {
				return nil, err
			}
			if h.generation(topic) == gen {
				break
			}
		}
		h.broadcast(topic, Event{Name: EventSnapshot, Data: snap})
		return nil, nil
	})
	if err != nil {
		h.logger.Warn("Failed to reload snapshot", zap.String("topic", topic), zap.Error(err))
	}
}

func (h *Hub) generation(topic string) uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.generations[topic]
}

func (h *Hub) broadcast(topic string, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[topic] {
		c.offer(ev)
	}
}

func (h *Hub) broadcastAll(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, set := range h.clients {
		for c := range set {
			c.offer(ev)
		}
	}
}

func (h *Hub) setStatus(state SyncState, err *shared.DomainError) {
	h.mu.Lock()
	changed := h.status.State != state
	if changed {
		h.status = SyncStatus{State: state, Since: time.Now(), Error: err}
	}
	status := h.status
	h.mu.Unlock()

	if !changed {
		return
	}
	if err != nil {
		h.logger.Warn("Realtime sync degraded", zap.String("state", string(state)), zap.Error(err))
	} else {
		h.logger.Info("Realtime sync state changed", zap.String("state", string(state)))
	}
	h.broadcastAll(Event{Name: EventSyncStatus, Data: status})
}

// Run consumes the shared change feed until ctx is cancelled, reconnecting
// after failures. It returns immediately when no feed is configured.
func (h *Hub) Run(ctx context.Context) {
	if h.feed == nil {
		return
	}
	for {
		h.setStatus(SyncConnected, nil)
		err := h.feed.Subscribe(ctx, h.onRemoteChange)
		if ctx.Err() != nil {
			return
		}
		if err == nil {
			err = errors.New("change feed closed")
		}
		h.setStatus(SyncDisconnected, shared.NewSyncError(err))

		select {
		case <-ctx.Done():
			return
		case <-time.After(h.cfg.ReconnectDelay):
		}
	}
}

func (h *Hub) onRemoteChange(msg cache.Change) {
	if msg.Origin == h.instance {
		return
	}
	topic := msg.Topic
	if topic == "order" {
		topic = OrderTopic(msg.Key)
	}
	h.refresh(context.Background(), topic)
}

// Handle implements shared.EventHandler. Domain events are mapped to the
// topics whose snapshots they change.
func (h *Hub) Handle(ctx context.Context, event shared.DomainEvent) error {
	for _, topic := range topicsFor(event) {
		h.Notify(ctx, topic)
	}
	return nil
}

// EventTypes implements shared.EventHandler
func (h *Hub) EventTypes() []string {
	return []string{
		catalog.EventTypeProductCreated,
		catalog.EventTypeProductUpdated,
		catalog.EventTypeProductDeleted,
		inventory.EventTypeStockChanged,
		inventory.EventTypeAvailabilityChanged,
		order.EventTypeOrderPlaced,
		order.EventTypeOrderStatusChanged,
		activity.EventTypeEntryAppended,
		activity.EventTypeDataReset,
	}
}

func topicsFor(event shared.DomainEvent) []string {
	switch event.EventType() {
	case catalog.EventTypeProductCreated, catalog.EventTypeProductUpdated, catalog.EventTypeProductDeleted,
		inventory.EventTypeStockChanged, inventory.EventTypeAvailabilityChanged:
		return []string{TopicProducts}
	case order.EventTypeOrderPlaced:
		return []string{TopicOrders}
	case order.EventTypeOrderStatusChanged:
		return []string{TopicOrders, OrderTopic(event.AggregateID())}
	case activity.EventTypeEntryAppended:
		return []string{TopicLogs}
	case activity.EventTypeDataReset:
		return []string{TopicOrders, TopicLogs}
	}
	return nil
}

// Close disconnects every subscriber and stops the change feed
func (h *Hub) Close() error {
	h.mu.Lock()
	for topic, set := range h.clients {
		for c := range set {
			close(c.events)
		}
		delete(h.clients, topic)
	}
	h.clientCount = 0
	h.mu.Unlock()

	if h.feed != nil {
		return h.feed.Close()
	}
	return nil
}

var _ shared.EventHandler = (*Hub)(nil)
