package cache

import (
	"context"
	"sync"
	"time"

	"github.com/tehraja/backend/internal/domain/cart"
)

type cartEntry struct {
	cart      cart.Cart
	expiresAt time.Time
}

// InMemoryCartStore keeps carts in process memory. Used when Redis is
// disabled and in tests.
type InMemoryCartStore struct {
	mu    sync.Mutex
	carts map[string]cartEntry
	ttl   time.Duration
}

// NewInMemoryCartStore creates an empty store
func NewInMemoryCartStore(ttl time.Duration) *InMemoryCartStore {
	return &InMemoryCartStore{
		carts: make(map[string]cartEntry),
		ttl:   ttl,
	}
}

// Load returns a copy of the stored cart, or an empty one
func (s *InMemoryCartStore) Load(ctx context.Context, sessionID string) (*cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.carts[sessionID]
	if !ok || (s.ttl > 0 && time.Now().After(e.expiresAt)) {
		delete(s.carts, sessionID)
		return cart.New(sessionID), nil
	}
	c := e.cart
	c.Lines = append([]cart.Line{}, e.cart.Lines...)
	return &c, nil
}

// Save stores a copy of c
func (s *InMemoryCartStore) Save(ctx context.Context, c *cart.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *c
	cp.Lines = append([]cart.Line{}, c.Lines...)
	s.carts[c.SessionID] = cartEntry{cart: cp, expiresAt: time.Now().Add(s.ttl)}
	return nil
}

// Delete removes the cart
func (s *InMemoryCartStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, sessionID)
	return nil
}

var _ cart.Store = (*InMemoryCartStore)(nil)
