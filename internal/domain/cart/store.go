package cart

import "context"

// Store persists carts per client session
type Store interface {
	// Load returns the session's cart, or a new empty cart if none is stored
	Load(ctx context.Context, sessionID string) (*Cart, error)
	// Save writes the cart and refreshes its expiry
	Save(ctx context.Context, c *Cart) error
	// Delete removes the session's cart
	Delete(ctx context.Context, sessionID string) error
}
