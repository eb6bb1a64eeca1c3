package order

import (
	"time"

	"github.com/tehraja/backend/internal/domain/order"
)

// CheckoutRequest carries the customer details for a checkout
type CheckoutRequest struct {
	CustomerName string `json:"customer_name" binding:"required,max=100"`
	Table        string `json:"table" binding:"max=50"`
	Channel      string `json:"channel" binding:"omitempty,oneof=web cashier"`
}

// UpdateStatusRequest moves an order to a new status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending processing completed cancelled"`
}

// ResetRequest purges orders and logs. Confirm must be true.
type ResetRequest struct {
	Confirm bool `json:"confirm"`
}

// ListOrdersRequest narrows an order listing
type ListOrdersRequest struct {
	Status string     `form:"status" binding:"omitempty,oneof=pending processing completed cancelled"`
	From   *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To     *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit  int        `form:"limit" binding:"gte=0,lte=1000"`
}

// LineResponse is an order line in API responses
type LineResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	ImageURL  string `json:"image_url,omitempty"`
	Quantity  int    `json:"quantity"`
	Note      string `json:"note,omitempty"`
	Subtotal  int64  `json:"subtotal"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID           string         `json:"id"`
	ShortID      string         `json:"short_id"`
	Lines        []LineResponse `json:"lines"`
	Total        int64          `json:"total"`
	ItemCount    int            `json:"item_count"`
	CustomerName string         `json:"customer_name"`
	Table        string         `json:"table"`
	Status       string         `json:"status"`
	Channel      string         `json:"channel"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Version      int            `json:"version"`
}

// ToOrderResponse converts a domain order
func ToOrderResponse(o *order.Order) OrderResponse {
	lines := make([]LineResponse, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = LineResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			ImageURL:  l.ImageURL,
			Quantity:  l.Quantity,
			Note:      l.Note,
			Subtotal:  l.Subtotal(),
		}
	}
	return OrderResponse{
		ID:           o.ID,
		ShortID:      o.ShortID(),
		Lines:        lines,
		Total:        o.Total,
		ItemCount:    o.ItemCount(),
		CustomerName: o.CustomerName,
		Table:        o.Table,
		Status:       string(o.Status),
		Channel:      string(o.Channel),
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
		Version:      o.Version,
	}
}

// ToOrderResponses converts a list of domain orders
func ToOrderResponses(orders []order.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	return out
}

// CheckoutResponse is the outcome of a checkout
type CheckoutResponse struct {
	Order OrderResponse `json:"order"`
	// Handoff is absent when the messaging link could not be built
	Handoff *order.Handoff `json:"handoff,omitempty"`
	// Replayed is true when an Idempotency-Key matched an earlier checkout
	Replayed bool `json:"replayed"`
}

// ResetResponse reports what a reset removed
type ResetResponse struct {
	OrdersDeleted int64 `json:"orders_deleted"`
	LogsDeleted   int64 `json:"logs_deleted"`
}
