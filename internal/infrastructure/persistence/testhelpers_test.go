package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tehraja/backend/internal/domain/catalog"
	"github.com/tehraja/backend/internal/infrastructure/config"
)

// newTestDatabase opens a migrated in-memory SQLite database.
func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(&config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(context.Background()))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestProduct(t *testing.T, id, name string, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(catalog.ProductInput{
		ID:                id,
		Name:              name,
		Price:             18000,
		Category:          catalog.CategoryMilk,
		Taste:             catalog.TasteVector{Sweet: 7, Creamy: 8, Fruity: 1},
		Stock:             stock,
		MinStockThreshold: 2,
	})
	require.NoError(t, err)
	return p
}
