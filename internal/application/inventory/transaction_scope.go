package inventory

import (
	"context"

	"github.com/tehraja/backend/internal/domain/activity"
	"github.com/tehraja/backend/internal/domain/catalog"
	"github.com/tehraja/backend/internal/domain/order"
)

// TransactionScope runs a unit of work in one database transaction.
// Returning an error from fn rolls everything back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories are repositories bound to the current
// transaction. Product rows loaded with FindByIDsForUpdate stay locked until
// the scope ends.
type TransactionalRepositories interface {
	Products() catalog.ProductRepository
	Orders() order.Repository
	Activity() activity.Repository
}

// NoOpTransactionScope runs fn against plain repositories without a
// transaction. Used by tests and single-process tooling.
type NoOpTransactionScope struct {
	products catalog.ProductRepository
	orders   order.Repository
	logs     activity.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(products catalog.ProductRepository, orders order.Repository, logs activity.Repository) *NoOpTransactionScope {
	return &NoOpTransactionScope{products: products, orders: orders, logs: logs}
}

// Execute implements TransactionScope
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Products implements TransactionalRepositories
func (s *NoOpTransactionScope) Products() catalog.ProductRepository { return s.products }

// Orders implements TransactionalRepositories
func (s *NoOpTransactionScope) Orders() order.Repository { return s.orders }

// Activity implements TransactionalRepositories
func (s *NoOpTransactionScope) Activity() activity.Repository { return s.logs }

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
