package inventory

import (
	"github.com/tehraja/backend/internal/domain/catalog"
)

// StockResponse is a product's stock position in API responses
type StockResponse struct {
	ProductID         string `json:"product_id"`
	Name              string `json:"name"`
	Stock             int    `json:"stock"`
	MinStockThreshold int    `json:"min_stock_threshold"`
	IsAvailable       bool   `json:"is_available"`
	Hidden            bool   `json:"hidden"`
	State             string `json:"state"`
	LowStock          bool   `json:"low_stock"`
}

// ToStockResponse converts a product to its stock view
func ToStockResponse(p *catalog.Product) StockResponse {
	return StockResponse{
		ProductID:         p.ID,
		Name:              p.Name,
		Stock:             p.Stock(),
		MinStockThreshold: p.Level.MinThreshold(),
		IsAvailable:       p.IsAvailable(),
		Hidden:            p.Level.IsHidden(),
		State:             string(p.Level.State()),
		LowStock:          p.Level.IsLowStock(),
	}
}

// RestockRequest adds units to a product
type RestockRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// SetStockRequest sets an absolute stock count
type SetStockRequest struct {
	Stock *int `json:"stock" binding:"required,gte=0"`
}

// SetAvailabilityRequest toggles the hide override
type SetAvailabilityRequest struct {
	Available *bool `json:"available" binding:"required"`
}

// Decrement is the outcome of one line of a decrement batch
type Decrement struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Requested int    `json:"requested"`
	Applied   int    `json:"applied"`
	Remaining int    `json:"remaining"`
}

// Clamped reports whether fewer units were taken than requested
func (d Decrement) Clamped() bool {
	return d.Applied < d.Requested
}
