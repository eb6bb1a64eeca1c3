// Package order models placed orders. An order is an immutable record of a
// checkout; only its status moves after creation.
package order

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tehraja/backend/internal/domain/cart"
	"github.com/tehraja/backend/internal/domain/inventory"
	"github.com/tehraja/backend/internal/domain/shared"
)

// DefaultTable is used when the customer gives no table
const DefaultTable = "Takeaway"

const (
	maxCustomerNameLength = 100
	maxTableLength        = 50
)

// Line is a denormalized product snapshot taken at checkout
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

// Order is a placed order
type Order struct {
	shared.BaseAggregateRoot
	Lines        []Line
	Total        int64
	CustomerName string
	Table        string
	Status       Status
	Channel      Channel
}

// PlaceInput carries everything needed to place an order
type PlaceInput struct {
	CustomerName string
	Table        string
	Channel      Channel
	Lines        []cart.Line
}

// Place creates a pending order from cart lines. The customer name is
// required; an empty table becomes DefaultTable.
func Place(in PlaceInput) (*Order, error) {
	name := strings.TrimSpace(in.CustomerName)
	if name == "" {
		return nil, shared.NewValidationError("Customer name is required").WithDetail("field", "customer_name")
	}
	if utf8.RuneCountInString(name) > maxCustomerNameLength {
		return nil, shared.NewValidationError("Customer name cannot exceed 100 characters").WithDetail("field", "customer_name")
	}
	table := strings.TrimSpace(in.Table)
	if table == "" {
		table = DefaultTable
	}
	if utf8.RuneCountInString(table) > maxTableLength {
		return nil, shared.NewValidationError("Table cannot exceed 50 characters").WithDetail("field", "table")
	}
	if len(in.Lines) == 0 {
		return nil, shared.NewValidationError("Cart is empty")
	}
	channel := in.Channel
	if channel == "" {
		channel = ChannelWeb
	}
	if !channel.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Unknown order channel %q", channel))
	}

	lines := make([]Line, 0, len(in.Lines))
	var total int64
	for _, l := range in.Lines {
		if l.Quantity <= 0 {
			return nil, shared.NewValidationError("Line quantity must be positive")
		}
		line := Line{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			ImageURL:  l.ImageURL,
			Quantity:  l.Quantity,
			Note:      l.Note,
		}
		total += line.Subtotal()
		lines = append(lines, line)
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Lines:             lines,
		Total:             total,
		CustomerName:      name,
		Table:             table,
		Status:            StatusPending,
		Channel:           channel,
	}

	o.AddDomainEvent(NewOrderPlacedEvent(o))

	return o, nil
}

// TransitionTo moves the order to a new status
func (o *Order) TransitionTo(target Status) error {
	if !target.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("Unknown order status %q", target))
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Cannot move order from %s to %s", o.Status, target))
	}
	from := o.Status
	o.Status = target
	o.Touch()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from, target))

	return nil
}

// ShortID returns the first six characters of the id, as printed on receipts
func (o *Order) ShortID() string {
	if len(o.ID) <= 6 {
		return o.ID
	}
	return o.ID[:6]
}

// ItemCount returns the number of units ordered
func (o *Order) ItemCount() int {
	n := 0
	for _, l := range o.Lines {
		n += l.Quantity
	}
	return n
}

// StockLines returns the order as a decrement batch
func (o *Order) StockLines() []inventory.StockLine {
	lines := make([]inventory.StockLine, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = inventory.StockLine{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	return lines
}

// Detail renders the lines as "Name (xQ), Name (xQ)" for reports
func (o *Order) Detail() string {
	parts := make([]string, len(o.Lines))
	for i, l := range o.Lines {
		parts[i] = fmt.Sprintf("%s (x%d)", l.Name, l.Quantity)
	}
	return strings.Join(parts, ", ")
}
