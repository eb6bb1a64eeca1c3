package catalog

import (
	"time"

	"github.com/tehraja/backend/internal/domain/catalog"
	"github.com/tehraja/backend/internal/domain/recommendation"
)

// TasteRequest is a taste vector in requests
type TasteRequest struct {
	Sweet  int `json:"sweet" binding:"gte=0,lte=10"`
	Creamy int `json:"creamy" binding:"gte=0,lte=10"`
	Fruity int `json:"fruity" binding:"gte=0,lte=10"`
}

// ToDomain converts to a taste vector
func (t TasteRequest) ToDomain() catalog.TasteVector {
	return catalog.TasteVector{Sweet: t.Sweet, Creamy: t.Creamy, Fruity: t.Fruity}
}

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	ID                string       `json:"id" binding:"omitempty,max=64"`
	Name              string       `json:"name" binding:"required,min=1,max=200"`
	Price             int64        `json:"price" binding:"gte=0"`
	Description       string       `json:"description" binding:"max=2000"`
	ImageURL          string       `json:"image_url" binding:"max=1024"`
	Category          string       `json:"category" binding:"required,oneof=signature milk fruit classic"`
	Taste             TasteRequest `json:"taste"`
	Stock             int          `json:"stock" binding:"gte=0"`
	MinStockThreshold *int         `json:"min_stock_threshold" binding:"omitempty,gte=0"`
}

// UpdateProductRequest is a partial update; omitted fields are left as they are
type UpdateProductRequest struct {
	Name              *string       `json:"name" binding:"omitempty,min=1,max=200"`
	Price             *int64        `json:"price" binding:"omitempty,gte=0"`
	Description       *string       `json:"description" binding:"omitempty,max=2000"`
	ImageURL          *string       `json:"image_url" binding:"omitempty,max=1024"`
	Category          *string       `json:"category" binding:"omitempty,oneof=signature milk fruit classic"`
	Taste             *TasteRequest `json:"taste"`
	Stock             *int          `json:"stock" binding:"omitempty,gte=0"`
	MinStockThreshold *int          `json:"min_stock_threshold" binding:"omitempty,gte=0"`
}

// ToPatch converts the request to a domain patch
func (r UpdateProductRequest) ToPatch() (catalog.ProductPatch, error) {
	patch := catalog.ProductPatch{
		Name:              r.Name,
		Price:             r.Price,
		Description:       r.Description,
		ImageURL:          r.ImageURL,
		Stock:             r.Stock,
		MinStockThreshold: r.MinStockThreshold,
	}
	if r.Category != nil {
		c, err := catalog.ParseCategory(*r.Category)
		if err != nil {
			return catalog.ProductPatch{}, err
		}
		patch.Category = &c
	}
	if r.Taste != nil {
		t := r.Taste.ToDomain()
		patch.Taste = &t
	}
	return patch, nil
}

// ListProductsRequest narrows a catalog listing
type ListProductsRequest struct {
	Category       string `form:"category" binding:"omitempty,oneof=signature milk fruit classic"`
	Search         string `form:"search" binding:"max=100"`
	Available      bool   `form:"available"`
	LowStock       bool   `form:"low_stock"`
	IncludeDeleted bool   `form:"include_deleted"`
}

// RecommendRequest is a customer's taste preference
type RecommendRequest struct {
	Sweet  int `json:"sweet" binding:"gte=0,lte=10"`
	Creamy int `json:"creamy" binding:"gte=0,lte=10"`
	Fruity int `json:"fruity" binding:"gte=0,lte=10"`
	TopN   int `json:"top_n" binding:"gte=0,lte=20"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID                string              `json:"id"`
	Name              string              `json:"name"`
	Price             int64               `json:"price"`
	Description       string              `json:"description"`
	ImageURL          string              `json:"image_url"`
	Category          string              `json:"category"`
	Taste             catalog.TasteVector `json:"taste"`
	Stock             int                 `json:"stock"`
	MinStockThreshold int                 `json:"min_stock_threshold"`
	IsAvailable       bool                `json:"is_available"`
	Hidden            bool                `json:"hidden"`
	State             string              `json:"state"`
	LowStock          bool                `json:"low_stock"`
	SortOrder         int                 `json:"sort_order"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
	DeletedAt         *time.Time          `json:"deleted_at,omitempty"`
	Version           int                 `json:"version"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:                p.ID,
		Name:              p.Name,
		Price:             p.Price,
		Description:       p.Description,
		ImageURL:          p.ImageURL,
		Category:          string(p.Category),
		Taste:             p.Taste,
		Stock:             p.Stock(),
		MinStockThreshold: p.Level.MinThreshold(),
		IsAvailable:       p.IsAvailable(),
		Hidden:            p.Level.IsHidden(),
		State:             string(p.Level.State()),
		LowStock:          p.Level.IsLowStock(),
		SortOrder:         p.SortOrder,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
		DeletedAt:         p.DeletedAt,
		Version:           p.Version,
	}
}

// ToProductResponses converts a slice of domain Products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}

// RecommendationResponse is one ranked match
type RecommendationResponse struct {
	Product ProductResponse `json:"product"`
	Score   float64         `json:"score"`
}

// ToRecommendationResponses converts ranked matches
func ToRecommendationResponses(matches []recommendation.Match) []RecommendationResponse {
	out := make([]RecommendationResponse, len(matches))
	for i := range matches {
		out[i] = RecommendationResponse{
			Product: ToProductResponse(&matches[i].Product),
			Score:   matches[i].Score,
		}
	}
	return out
}
