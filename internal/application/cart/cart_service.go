// Package cart serves the per-session shopping cart. Every stock decision
// is made against a fresh read of the catalog.
package cart

import (
	"context"
	"strings"

	"github.com/tehraja/backend/internal/domain/cart"
	"github.com/tehraja/backend/internal/domain/catalog"
	"github.com/tehraja/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const maxSessionIDLength = 128

// CartService handles cart operations for a client session
type CartService struct {
	store    cart.Store
	products catalog.ProductRepository
	logger   *zap.Logger
}

// NewCartService creates a new CartService
func NewCartService(store cart.Store, products catalog.ProductRepository, logger *zap.Logger) *CartService {
	return &CartService{store: store, products: products, logger: logger}
}

// ValidateSessionID checks a client session token
func ValidateSessionID(sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return shared.NewValidationError("Cart session id is required")
	}
	if len(sessionID) > maxSessionIDLength {
		return shared.NewValidationError("Cart session id is too long")
	}
	return nil
}

func (s *CartService) load(ctx context.Context, sessionID string) (*cart.Cart, error) {
	if err := ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, shared.NewPersistenceError("load cart", err)
	}
	return c, nil
}

func (s *CartService) save(ctx context.Context, c *cart.Cart) error {
	if err := s.store.Save(ctx, c); err != nil {
		return shared.NewPersistenceError("save cart", err)
	}
	return nil
}

// Get returns the session's cart
func (s *CartService) Get(ctx context.Context, sessionID string) (*CartResponse, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	resp := ToCartResponse(c)
	return &resp, nil
}

// Add adds one unit of a product. When the product cannot be bought or the
// cart already holds all of its stock the cart is returned unchanged.
func (s *CartService) Add(ctx context.Context, sessionID, productID string) (*CartResponse, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	product, err := s.liveProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	changed := c.AddLine(product)
	if changed {
		if err := s.save(ctx, c); err != nil {
			return nil, err
		}
	} else {
		s.logger.Debug("Add refused by stock ceiling",
			zap.String("product_id", productID),
			zap.Int("purchasable", product.Purchasable()))
	}

	resp := ToCartResponse(c)
	resp.Changed = changed
	return &resp, nil
}

// SetQuantity sets a line's quantity. Positive quantities are checked
// against live stock first; zero or less removes the line.
func (s *CartService) SetQuantity(ctx context.Context, sessionID, productID string, quantity int) (*CartResponse, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	line, ok := c.Line(productID)
	if !ok {
		return nil, shared.ErrNotFound
	}
	if quantity > 0 {
		live, err := s.products.FindByIDs(ctx, []string{productID})
		if err != nil {
			return nil, shared.NewPersistenceError("load stock", err)
		}
		line.Quantity = quantity
		if err := cart.ValidateLines([]cart.Line{line}, live); err != nil {
			return nil, err
		}
	}
	if err := c.SetQuantity(productID, quantity); err != nil {
		return nil, err
	}
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	resp := ToCartResponse(c)
	return &resp, nil
}

// SetNote attaches a note to a line
func (s *CartService) SetNote(ctx context.Context, sessionID, productID, note string) (*CartResponse, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := c.SetNote(productID, note); err != nil {
		return nil, err
	}
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	resp := ToCartResponse(c)
	return &resp, nil
}

// Remove drops a product's line
func (s *CartService) Remove(ctx context.Context, sessionID, productID string) (*CartResponse, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	c.RemoveLine(productID)
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	resp := ToCartResponse(c)
	return &resp, nil
}

// Clear empties the cart
func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	if err := ValidateSessionID(sessionID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return shared.NewPersistenceError("clear cart", err)
	}
	return nil
}

// Validate checks every line against live stock and returns a stock
// conflict naming each line that can no longer be filled
func (s *CartService) Validate(ctx context.Context, sessionID string) error {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	if c.IsEmpty() {
		return nil
	}
	live, err := s.products.FindByIDs(ctx, c.ProductIDs())
	if err != nil {
		return shared.NewPersistenceError("load stock", err)
	}
	return c.Validate(live)
}

// Load returns the domain cart, for checkout
func (s *CartService) Load(ctx context.Context, sessionID string) (*cart.Cart, error) {
	return s.load(ctx, sessionID)
}

func (s *CartService) liveProduct(ctx context.Context, productID string) (*catalog.Product, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if shared.IsCode(err, shared.CodeNotFound) {
			return nil, err
		}
		return nil, shared.NewPersistenceError("load product", err)
	}
	if product.IsDeleted() {
		return nil, shared.ErrNotFound
	}
	return product, nil
}
