// Package cart holds the customer's basket. A cart is scoped to one client
// session and keeps a snapshot of each product as it was when first added.
package cart

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tehraja/backend/internal/domain/catalog"
	"github.com/tehraja/backend/internal/domain/inventory"
	"github.com/tehraja/backend/internal/domain/shared"
)

const maxNoteLength = 200

// Line is one product in the cart. Name, price and image are captured when
// the line is created and are not refreshed from the catalog.
type Line struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	ImageURL  string `json:"image_url,omitempty"`
	Quantity  int    `json:"quantity"`
	Note      string `json:"note,omitempty"`
}

// Subtotal returns price times quantity
func (l Line) Subtotal() int64 {
	return l.Price * int64(l.Quantity)
}

// Cart is an ordered set of lines, at most one per product
type Cart struct {
	SessionID string    `json:"session_id"`
	Lines     []Line    `json:"lines"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates an empty cart for a session
func New(sessionID string) *Cart {
	return &Cart{SessionID: sessionID, Lines: []Line{}, UpdatedAt: time.Now()}
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Line returns the line for a product
func (c *Cart) Line(productID string) (Line, bool) {
	if i := c.indexOf(productID); i >= 0 {
		return c.Lines[i], true
	}
	return Line{}, false
}

// AddLine adds one unit of p. It is a no-op when p cannot be bought or when
// one more unit would exceed p's current purchasable stock. The product
// passed in must be freshly read from the catalog. Reports whether the cart
// changed.
func (c *Cart) AddLine(p *catalog.Product) bool {
	limit := p.Purchasable()
	if limit <= 0 {
		return false
	}
	if i := c.indexOf(p.ID); i >= 0 {
		if c.Lines[i].Quantity+1 > limit {
			return false
		}
		c.Lines[i].Quantity++
		c.touch()
		return true
	}
	c.Lines = append(c.Lines, Line{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		ImageURL:  p.ImageURL,
		Quantity:  1,
	})
	c.touch()
	return true
}

// SetQuantity sets a line's quantity, removing it when quantity <= 0.
// Stock is not checked here; callers validate explicit edits first.
func (c *Cart) SetQuantity(productID string, quantity int) error {
	i := c.indexOf(productID)
	if i < 0 {
		return shared.ErrNotFound
	}
	if quantity <= 0 {
		c.RemoveLine(productID)
		return nil
	}
	c.Lines[i].Quantity = quantity
	c.touch()
	return nil
}

// SetNote attaches free text to a line, e.g. "less ice"
func (c *Cart) SetNote(productID, note string) error {
	i := c.indexOf(productID)
	if i < 0 {
		return shared.ErrNotFound
	}
	note = strings.TrimSpace(note)
	if utf8.RuneCountInString(note) > maxNoteLength {
		return shared.NewValidationError("Note cannot exceed 200 characters").WithDetail("field", "note")
	}
	c.Lines[i].Note = note
	c.touch()
	return nil
}

// RemoveLine removes a product's line if present
func (c *Cart) RemoveLine(productID string) {
	if i := c.indexOf(productID); i >= 0 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		c.touch()
	}
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Lines = []Line{}
	c.touch()
}

// Total returns the sum of line subtotals
func (c *Cart) Total() int64 {
	var total int64
	for _, l := range c.Lines {
		total += l.Subtotal()
	}
	return total
}

// ItemCount returns the number of units across all lines
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// StockLines returns the cart as a decrement batch
func (c *Cart) StockLines() []inventory.StockLine {
	lines := make([]inventory.StockLine, len(c.Lines))
	for i, l := range c.Lines {
		lines[i] = inventory.StockLine{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	return lines
}

// ProductIDs returns the ids of all lines in order
func (c *Cart) ProductIDs() []string {
	return inventory.ProductIDs(c.StockLines())
}

// Validate checks every line against live catalog data. Lines whose product
// is missing, retired or hidden count as having no stock. Returns a stock
// conflict naming every offending line, or nil.
func (c *Cart) Validate(live []catalog.Product) error {
	return ValidateLines(c.Lines, live)
}

// ValidateLines is Validate for a bare list of lines
func ValidateLines(lines []Line, live []catalog.Product) error {
	byID := make(map[string]*catalog.Product, len(live))
	for i := range live {
		byID[live[i].ID] = &live[i]
	}
	var conflicts []string
	for _, l := range lines {
		available := 0
		if p, ok := byID[l.ProductID]; ok {
			available = p.Purchasable()
		}
		if l.Quantity > available {
			conflicts = append(conflicts, l.Name)
		}
	}
	if len(conflicts) > 0 {
		return shared.NewStockConflictError(conflicts)
	}
	return nil
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now()
}
