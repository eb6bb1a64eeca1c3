package order

import (
	"context"
	"time"
)

// Filter narrows order listings
type Filter struct {
	Status Status
	From   *time.Time
	To     *time.Time
	Limit  int
}

// Repository defines the interface for order persistence
type Repository interface {
	// Create inserts a new order
	Create(ctx context.Context, o *Order) error

	// FindByID finds an order by its ID
	FindByID(ctx context.Context, id string) (*Order, error)

	// FindAll lists orders newest first
	FindAll(ctx context.Context, filter Filter) ([]Order, error)

	// UpdateStatus writes the status of o, failing if the stored version is
	// not o's previous version
	UpdateStatus(ctx context.Context, o *Order) error

	// DeleteAll purges every order. Only used by the administrative reset.
	DeleteAll(ctx context.Context) (int64, error)
}
