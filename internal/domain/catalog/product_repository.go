package catalog

import "context"

// ProductFilter narrows catalog listings
type ProductFilter struct {
	Category       Category
	Search         string
	IncludeDeleted bool
	OnlyAvailable  bool
	OnlyLowStock   bool
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a live product by its ID
	FindByID(ctx context.Context, id string) (*Product, error)

	// FindByIDs finds live products by ID, in catalog order
	FindByIDs(ctx context.Context, ids []string) ([]Product, error)

	// FindByIDsForUpdate locks and loads products for a stock write.
	// Must be called inside a transaction scope.
	FindByIDsForUpdate(ctx context.Context, ids []string) ([]Product, error)

	// FindAll lists products in catalog order (sort order, then creation time)
	FindAll(ctx context.Context, filter ProductFilter) ([]Product, error)

	// ExistsByID reports whether the id was ever used, including retired products
	ExistsByID(ctx context.Context, id string) (bool, error)

	// Create inserts a new product
	Create(ctx context.Context, product *Product) error

	// Save writes all fields of an existing product
	Save(ctx context.Context, product *Product) error

	// SaveStock writes only the stock columns of the given products
	SaveStock(ctx context.Context, products []*Product) error
}
