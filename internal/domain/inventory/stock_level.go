package inventory

import (
	"fmt"
	"strings"

	"github.com/tehraja/backend/internal/domain/shared"
)

// OversellPolicy decides what a decrement does when the requested quantity
// exceeds the units on hand.
type OversellPolicy string

const (
	// OversellClamp floors stock at zero and reports the units actually taken
	OversellClamp OversellPolicy = "clamp"
	// OversellReject fails the decrement with a stock conflict
	OversellReject OversellPolicy = "reject"
)

// ParseOversellPolicy parses a policy name, defaulting to clamp for ""
func ParseOversellPolicy(s string) (OversellPolicy, error) {
	switch OversellPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", OversellClamp:
		return OversellClamp, nil
	case OversellReject:
		return OversellReject, nil
	default:
		return "", fmt.Errorf("unknown oversell policy %q", s)
	}
}

// Purchasability is the sale state of a product derived from its stock level
type Purchasability string

const (
	InStock    Purchasability = "IN_STOCK"
	OutOfStock Purchasability = "OUT_OF_STOCK"
	Hidden     Purchasability = "HIDDEN"
)

// StockLevel is the only place where a product's stock and availability
// change. Availability is never stored: it is stock > 0 unless the hide
// override is set. Out of stock and hidden are independent, so restocking a
// hidden product leaves it hidden and unhiding an empty product leaves it
// unavailable.
type StockLevel struct {
	stock        int
	hidden       bool
	minThreshold int
}

// NewStockLevel creates a visible stock level
func NewStockLevel(stock, minThreshold int) (StockLevel, error) {
	if stock < 0 {
		return StockLevel{}, shared.NewValidationError("Stock cannot be negative")
	}
	if minThreshold < 0 {
		return StockLevel{}, shared.NewValidationError("Minimum stock threshold cannot be negative")
	}
	return StockLevel{stock: stock, minThreshold: minThreshold}, nil
}

// RestoreStockLevel rebuilds a stock level from persisted columns.
// Negative values read from storage are floored at zero.
func RestoreStockLevel(stock int, hidden bool, minThreshold int) StockLevel {
	return StockLevel{
		stock:        max(stock, 0),
		hidden:       hidden,
		minThreshold: max(minThreshold, 0),
	}
}

// Stock returns the units on hand
func (s StockLevel) Stock() int {
	return s.stock
}

// IsHidden reports whether the product was taken off sale manually
func (s StockLevel) IsHidden() bool {
	return s.hidden
}

// IsAvailable reports whether the product can be sold right now
func (s StockLevel) IsAvailable() bool {
	return s.stock > 0 && !s.hidden
}

// MinThreshold returns the low-stock warning level
func (s StockLevel) MinThreshold() int {
	return s.minThreshold
}

// IsLowStock reports whether stock is at or below the warning level
func (s StockLevel) IsLowStock() bool {
	return s.stock <= s.minThreshold
}

// Purchasable returns how many units a cart may hold: zero when unavailable
func (s StockLevel) Purchasable() int {
	if !s.IsAvailable() {
		return 0
	}
	return s.stock
}

// State reports the purchasability state. Out of stock wins over hidden.
func (s StockLevel) State() Purchasability {
	switch {
	case s.stock == 0:
		return OutOfStock
	case s.hidden:
		return Hidden
	default:
		return InStock
	}
}

// Decrement removes qty units. Under OversellClamp stock never goes below
// zero and applied reports the units actually removed. Under OversellReject a
// request larger than stock fails and the level is returned unchanged.
func (s StockLevel) Decrement(qty int, policy OversellPolicy) (next StockLevel, applied int, err error) {
	if qty <= 0 {
		return s, 0, shared.NewValidationError("Decrement quantity must be positive")
	}
	if qty > s.stock && policy == OversellReject {
		return s, 0, shared.ErrInsufficientStock
	}
	applied = min(qty, s.stock)
	next = s
	next.stock = s.stock - applied
	return next, applied, nil
}

// Restock adds delta units
func (s StockLevel) Restock(delta int) (StockLevel, error) {
	if delta <= 0 {
		return s, shared.NewValidationError("Restock quantity must be positive")
	}
	next := s
	next.stock = s.stock + delta
	return next, nil
}

// WithStock sets an absolute stock count
func (s StockLevel) WithStock(stock int) (StockLevel, error) {
	if stock < 0 {
		return s, shared.NewValidationError("Stock cannot be negative")
	}
	next := s
	next.stock = stock
	return next, nil
}

// WithHidden sets or clears the hide override
func (s StockLevel) WithHidden(hidden bool) StockLevel {
	next := s
	next.hidden = hidden
	return next
}

// WithMinThreshold sets the low-stock warning level
func (s StockLevel) WithMinThreshold(threshold int) (StockLevel, error) {
	if threshold < 0 {
		return s, shared.NewValidationError("Minimum stock threshold cannot be negative")
	}
	next := s
	next.minThreshold = threshold
	return next, nil
}
