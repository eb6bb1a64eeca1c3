package catalog

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tehraja/backend/internal/domain/inventory"
	"github.com/tehraja/backend/internal/domain/shared"
)

const maxProductNameLength = 200

// Product is a menu item together with its operational stock fields.
// It is the aggregate root for catalog and stock changes.
type Product struct {
	shared.BaseAggregateRoot
	Name        string
	Price       int64
	Description string
	ImageURL    string
	Category    Category
	Taste       TasteVector
	Level       inventory.StockLevel
	SortOrder   int // catalog position; assigned on insert
	DeletedAt   *time.Time
}

// ProductInput carries the fields needed to create a product
type ProductInput struct {
	ID                string
	Name              string
	Price             int64
	Description       string
	ImageURL          string
	Category          Category
	Taste             TasteVector
	Stock             int
	MinStockThreshold int
}

// ProductPatch is a partial update. Nil fields are left untouched so that
// concurrent edits of different fields do not overwrite each other.
type ProductPatch struct {
	Name              *string
	Price             *int64
	Description       *string
	ImageURL          *string
	Category          *Category
	Taste             *TasteVector
	Stock             *int
	MinStockThreshold *int
}

// IsEmpty reports whether the patch changes nothing
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Price == nil && p.Description == nil && p.ImageURL == nil &&
		p.Category == nil && p.Taste == nil && p.Stock == nil && p.MinStockThreshold == nil
}

// NewProduct creates a new product. An empty ID gets a generated UUID.
func NewProduct(in ProductInput) (*Product, error) {
	name := strings.TrimSpace(in.Name)
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if err := validatePrice(in.Price); err != nil {
		return nil, err
	}
	if !in.Category.IsValid() {
		return nil, shared.NewValidationError("Category must be one of signature, milk, fruit, classic")
	}
	if err := in.Taste.Validate(); err != nil {
		return nil, err
	}
	level, err := inventory.NewStockLevel(in.Stock, in.MinStockThreshold)
	if err != nil {
		return nil, err
	}

	root := shared.NewBaseAggregateRoot()
	if id := strings.TrimSpace(in.ID); id != "" {
		root = shared.NewBaseAggregateRootWithID(id)
	}

	p := &Product{
		BaseAggregateRoot: root,
		Name:              name,
		Price:             in.Price,
		Description:       strings.TrimSpace(in.Description),
		ImageURL:          strings.TrimSpace(in.ImageURL),
		Category:          in.Category,
		Taste:             in.Taste,
		Level:             level,
	}

	p.AddDomainEvent(NewProductCreatedEvent(p))

	return p, nil
}

// Apply applies a partial update. Fields are validated before any of them is
// written, so a rejected patch leaves the product unchanged. A stock value in
// the patch goes through the stock level like any other adjustment.
func (p *Product) Apply(patch ProductPatch) error {
	if p.IsDeleted() {
		return shared.ErrNotFound
	}

	next := *p
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if err := validateProductName(name); err != nil {
			return err
		}
		next.Name = name
	}
	if patch.Price != nil {
		if err := validatePrice(*patch.Price); err != nil {
			return err
		}
		next.Price = *patch.Price
	}
	if patch.Description != nil {
		next.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.ImageURL != nil {
		next.ImageURL = strings.TrimSpace(*patch.ImageURL)
	}
	if patch.Category != nil {
		if !patch.Category.IsValid() {
			return shared.NewValidationError("Category must be one of signature, milk, fruit, classic")
		}
		next.Category = *patch.Category
	}
	if patch.Taste != nil {
		if err := patch.Taste.Validate(); err != nil {
			return err
		}
		next.Taste = *patch.Taste
	}
	level := p.Level
	if patch.MinStockThreshold != nil {
		var err error
		if level, err = level.WithMinThreshold(*patch.MinStockThreshold); err != nil {
			return err
		}
	}
	if patch.Stock != nil {
		var err error
		if level, err = level.WithStock(*patch.Stock); err != nil {
			return err
		}
	}

	p.Name, p.Price, p.Description, p.ImageURL = next.Name, next.Price, next.Description, next.ImageURL
	p.Category, p.Taste = next.Category, next.Taste
	if level != p.Level {
		p.setLevel(level, 0, inventory.ReasonAdjustment)
	}
	p.touch()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// DecrementStock removes qty units under the given policy and returns the
// units actually taken
func (p *Product) DecrementStock(qty int, policy inventory.OversellPolicy) (int, error) {
	if p.IsDeleted() {
		return 0, shared.ErrNotFound
	}
	level, applied, err := p.Level.Decrement(qty, policy)
	if err != nil {
		return 0, err
	}
	p.setLevel(level, qty, inventory.ReasonSale)
	p.touch()
	return applied, nil
}

// Restock adds delta units
func (p *Product) Restock(delta int) error {
	if p.IsDeleted() {
		return shared.ErrNotFound
	}
	level, err := p.Level.Restock(delta)
	if err != nil {
		return err
	}
	p.setLevel(level, delta, inventory.ReasonRestock)
	p.touch()
	return nil
}

// SetStock sets an absolute stock count
func (p *Product) SetStock(stock int) error {
	if p.IsDeleted() {
		return shared.ErrNotFound
	}
	level, err := p.Level.WithStock(stock)
	if err != nil {
		return err
	}
	p.setLevel(level, 0, inventory.ReasonAdjustment)
	p.touch()
	return nil
}

// SetAvailability toggles the hide override. Passing true only clears the
// override; a product without stock stays unavailable.
func (p *Product) SetAvailability(available bool) error {
	if p.IsDeleted() {
		return shared.ErrNotFound
	}
	hidden := !available
	if p.Level.IsHidden() == hidden {
		return nil
	}
	p.Level = p.Level.WithHidden(hidden)
	p.touch()
	p.AddDomainEvent(inventory.NewAvailabilityChangedEvent(p.ID, p.Level))
	return nil
}

// MarkDeleted retires the product. The id is never reused.
func (p *Product) MarkDeleted() error {
	if p.IsDeleted() {
		return shared.ErrNotFound
	}
	now := time.Now()
	p.DeletedAt = &now
	p.touch()
	p.AddDomainEvent(NewProductDeletedEvent(p))
	return nil
}

// setLevel is the single write path for stock; it records the stock events
func (p *Product) setLevel(level inventory.StockLevel, requested int, reason inventory.StockChangeReason) {
	before := p.Level
	p.Level = level
	p.AddDomainEvent(inventory.NewStockChangedEvent(p.ID, p.Name, before, level, requested, reason))
	if inventory.CrossedThreshold(before, level) {
		p.AddDomainEvent(inventory.NewStockBelowThresholdEvent(p.ID, p.Name, level))
	}
}

func (p *Product) touch() {
	p.Touch()
	p.IncrementVersion()
}

// IsDeleted reports whether the product has been retired
func (p *Product) IsDeleted() bool {
	return p.DeletedAt != nil
}

// Stock returns the units on hand
func (p *Product) Stock() int {
	return p.Level.Stock()
}

// IsAvailable reports whether the product can be added to a cart
func (p *Product) IsAvailable() bool {
	return !p.IsDeleted() && p.Level.IsAvailable()
}

// Purchasable returns the maximum quantity a cart may hold
func (p *Product) Purchasable() int {
	if p.IsDeleted() {
		return 0
	}
	return p.Level.Purchasable()
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewValidationError("Product name cannot be empty").WithDetail("field", "name")
	}
	if utf8.RuneCountInString(name) > maxProductNameLength {
		return shared.NewValidationError("Product name cannot exceed 200 characters").WithDetail("field", "name")
	}
	return nil
}

func validatePrice(price int64) error {
	if price < 0 {
		return shared.NewValidationError("Price cannot be negative").WithDetail("field", "price")
	}
	return nil
}
