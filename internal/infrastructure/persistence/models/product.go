package models

import (
	"time"

	"github.com/tehraja/backend/internal/domain/catalog"
	"github.com/tehraja/backend/internal/domain/inventory"
	"gorm.io/gorm"
)

// ProductModel is the persistence model for the Product aggregate, stock
// columns included.
type ProductModel struct {
	AggregateModel
	Name              string           `gorm:"type:varchar(200);not null"`
	Price             int64            `gorm:"not null;default:0"`
	Description       string           `gorm:"type:text"`
	ImageURL          string           `gorm:"type:varchar(500)"`
	Category          catalog.Category `gorm:"type:varchar(20);not null;index"`
	TasteSweet        int              `gorm:"not null;default:0"`
	TasteCreamy       int              `gorm:"not null;default:0"`
	TasteFruity       int              `gorm:"not null;default:0"`
	Stock             int              `gorm:"not null;default:0"`
	Hidden            bool             `gorm:"not null;default:false"`
	MinStockThreshold int              `gorm:"not null;default:0"`
	SortOrder         int              `gorm:"not null;default:0;index"`
	DeletedAt         gorm.DeletedAt   `gorm:"index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product.
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Price:             m.Price,
		Description:       m.Description,
		ImageURL:          m.ImageURL,
		Category:          m.Category,
		Taste: catalog.TasteVector{
			Sweet:  m.TasteSweet,
			Creamy: m.TasteCreamy,
			Fruity: m.TasteFruity,
		},
		Level:     inventory.RestoreStockLevel(m.Stock, m.Hidden, m.MinStockThreshold),
		SortOrder: m.SortOrder,
	}
	if m.DeletedAt.Valid {
		t := m.DeletedAt.Time
		p.DeletedAt = &t
	}
	return p
}

// FromDomain populates the persistence model from a domain Product.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Name = p.Name
	m.Price = p.Price
	m.Description = p.Description
	m.ImageURL = p.ImageURL
	m.Category = p.Category
	m.TasteSweet = p.Taste.Sweet
	m.TasteCreamy = p.Taste.Creamy
	m.TasteFruity = p.Taste.Fruity
	m.Stock = p.Level.Stock()
	m.Hidden = p.Level.IsHidden()
	m.MinStockThreshold = p.Level.MinThreshold()
	m.SortOrder = p.SortOrder
	m.DeletedAt = gorm.DeletedAt{}
	if p.DeletedAt != nil {
		m.DeletedAt = gorm.DeletedAt{Time: *p.DeletedAt, Valid: true}
	}
}

// ProductModelFromDomain creates a new persistence model from a domain Product.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// StockColumns are the columns written by a stock-only save
var StockColumns = []string{"stock", "hidden", "min_stock_threshold", "version", "updated_at"}

// StockUpdates returns the stock columns of p as an update map
func StockUpdates(p *catalog.Product, now time.Time) map[string]any {
	return map[string]any{
		"stock":               p.Level.Stock(),
		"hidden":              p.Level.IsHidden(),
		"min_stock_threshold": p.Level.MinThreshold(),
		"version":             p.Version,
		"updated_at":          now,
	}
}
