package models

import (
	"github.com/tehraja/backend/internal/domain/order"
	"gorm.io/datatypes"
)

// OrderModel is the persistence model for the Order aggregate. Line snapshots
// are stored as a JSON document since they are never queried individually.
type OrderModel struct {
	AggregateModel
	Lines        datatypes.JSONSlice[order.Line] `gorm:"not null"`
	Total        int64                           `gorm:"not null;default:0"`
	CustomerName string                          `gorm:"type:varchar(100);not null"`
	TableLabel   string                          `gorm:"column:table_label;type:varchar(50);not null"`
	Status       order.Status                    `gorm:"type:varchar(20);not null;index"`
	Channel      order.Channel                   `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order.
func (m *OrderModel) ToDomain() *order.Order {
	lines := make([]order.Line, len(m.Lines))
	copy(lines, m.Lines)
	return &order.Order{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Lines:             lines,
		Total:             m.Total,
		CustomerName:      m.CustomerName,
		Table:             m.TableLabel,
		Status:            m.Status,
		Channel:           m.Channel,
	}
}

// FromDomain populates the persistence model from a domain Order.
func (m *OrderModel) FromDomain(o *order.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.Lines = datatypes.NewJSONSlice(o.Lines)
	m.Total = o.Total
	m.CustomerName = o.CustomerName
	m.TableLabel = o.Table
	m.Status = o.Status
	m.Channel = o.Channel
}

// OrderModelFromDomain creates a new persistence model from a domain Order.
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}
