package inventory

import "github.com/tehraja/backend/internal/domain/shared"

// AggregateTypeStock is the aggregate type used for stock events. Stock lives
// on the product row, so AggregateID is the product id.
const AggregateTypeStock = "Stock"

// Event type constants
const (
	EventTypeStockChanged        = "StockChanged"
	EventTypeAvailabilityChanged = "AvailabilityChanged"
	EventTypeStockBelowThreshold = "StockBelowThreshold"
)

// StockChangeReason records which ledger operation produced a change
type StockChangeReason string

const (
	ReasonSale       StockChangeReason = "SALE"
	ReasonRestock    StockChangeReason = "RESTOCK"
	ReasonAdjustment StockChangeReason = "ADJUSTMENT"
)

// StockChangedEvent is published after every stock write
type StockChangedEvent struct {
	shared.BaseDomainEvent
	ProductID   string            `json:"product_id"`
	ProductName string            `json:"product_name"`
	OldStock    int               `json:"old_stock"`
	NewStock    int               `json:"new_stock"`
	Requested   int               `json:"requested"`
	IsAvailable bool              `json:"is_available"`
	Reason      StockChangeReason `json:"reason"`
}

// NewStockChangedEvent creates a new StockChangedEvent
func NewStockChangedEvent(productID, productName string, before, after StockLevel, requested int, reason StockChangeReason) *StockChangedEvent {
	return &StockChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockChanged, AggregateTypeStock, productID),
		ProductID:       productID,
		ProductName:     productName,
		OldStock:        before.Stock(),
		NewStock:        after.Stock(),
		Requested:       requested,
		IsAvailable:     after.IsAvailable(),
		Reason:          reason,
	}
}

// Clamped reports whether fewer units were taken than requested
func (e *StockChangedEvent) Clamped() bool {
	return e.Reason == ReasonSale && e.OldStock-e.NewStock < e.Requested
}

// AvailabilityChangedEvent is published when the hide override is toggled
type AvailabilityChangedEvent struct {
	shared.BaseDomainEvent
	ProductID   string         `json:"product_id"`
	Hidden      bool           `json:"hidden"`
	IsAvailable bool           `json:"is_available"`
	State       Purchasability `json:"state"`
}

// NewAvailabilityChangedEvent creates a new AvailabilityChangedEvent
func NewAvailabilityChangedEvent(productID string, level StockLevel) *AvailabilityChangedEvent {
	return &AvailabilityChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAvailabilityChanged, AggregateTypeStock, productID),
		ProductID:       productID,
		Hidden:          level.IsHidden(),
		IsAvailable:     level.IsAvailable(),
		State:           level.State(),
	}
}

// StockBelowThresholdEvent is published when a write takes stock from above
// the warning level to at or below it
type StockBelowThresholdEvent struct {
	shared.BaseDomainEvent
	ProductID    string `json:"product_id"`
	ProductName  string `json:"product_name"`
	CurrentStock int    `json:"current_stock"`
	MinThreshold int    `json:"min_threshold"`
}

// NewStockBelowThresholdEvent creates a new StockBelowThresholdEvent
func NewStockBelowThresholdEvent(productID, productName string, level StockLevel) *StockBelowThresholdEvent {
	return &StockBelowThresholdEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowThreshold, AggregateTypeStock, productID),
		ProductID:       productID,
		ProductName:     productName,
		CurrentStock:    level.Stock(),
		MinThreshold:    level.MinThreshold(),
	}
}

// CrossedThreshold reports whether a write moved stock into the low-stock band
func CrossedThreshold(before, after StockLevel) bool {
	return !before.IsLowStock() && after.IsLowStock()
}
