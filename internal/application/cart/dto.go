package cart

import (
	"time"

	"github.com/tehraja/backend/internal/domain/cart"
)

// AddLineRequest adds one unit of a product
type AddLineRequest struct {
	ProductID string `json:"product_id" binding:"required,max=64"`
}

// SetQuantityRequest sets a line's quantity; zero or less removes the line
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// SetNoteRequest attaches a note to a line
type SetNoteRequest struct {
	Note string `json:"note" binding:"max=200"`
}

// LineResponse is a cart line in API responses
type LineResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	ImageURL  string `json:"image_url,omitempty"`
	Quantity  int    `json:"quantity"`
	Note      string `json:"note,omitempty"`
	Subtotal  int64  `json:"subtotal"`
}

// CartResponse is a cart in API responses
type CartResponse struct {
	SessionID string         `json:"session_id"`
	Lines     []LineResponse `json:"lines"`
	Total     int64          `json:"total"`
	ItemCount int            `json:"item_count"`
	UpdatedAt time.Time      `json:"updated_at"`
	// Changed is false when an add was refused for stock
	Changed bool `json:"changed"`
}

// ToCartResponse converts a domain cart
func ToCartResponse(c *cart.Cart) CartResponse {
	lines := make([]LineResponse, len(c.Lines))
	for i, l := range c.Lines {
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
	return CartResponse{
		SessionID: c.SessionID,
		Lines:     lines,
		Total:     c.Total(),
		ItemCount: c.ItemCount(),
		UpdatedAt: c.UpdatedAt,
		Changed:   true,
	}
}
