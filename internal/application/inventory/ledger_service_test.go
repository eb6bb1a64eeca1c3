package inventory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appactivity "github.com/tehraja/backend/internal/application/activity"
	appinv "github.com/tehraja/backend/internal/application/inventory"
	"github.com/tehraja/backend/internal/domain/activity"
	"github.com/tehraja/backend/internal/domain/catalog"
	"github.com/tehraja/backend/internal/domain/inventory"
	"github.com/tehraja/backend/internal/domain/shared"
	"github.com/tehraja/backend/internal/infrastructure/config"
	"github.com/tehraja/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type ledgerFixture struct {
	ledger    *appinv.LedgerService
	products  *persistence.GormProductRepository
	logs      *persistence.GormActivityRepository
	scope     *persistence.GormTransactionScope
	publisher *recordingPublisher
}

func newLedgerFixture(t *testing.T, policy inventory.OversellPolicy) *ledgerFixture {
	t.Helper()
	db, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(context.Background()))
	t.Cleanup(func() { _ = db.Close() })

	f := &ledgerFixture{
		products:  persistence.NewGormProductRepository(db.DB),
		logs:      persistence.NewGormActivityRepository(db.DB),
		scope:     persistence.NewGormTransactionScope(db.DB),
		publisher: &recordingPublisher{},
	}
	logService := appactivity.NewLogService(f.logs, f.publisher, 0, zap.NewNop())
	f.ledger = appinv.NewLedgerService(f.products, f.scope, logService, f.publisher, policy, zap.NewNop())
	return f
}

func (f *ledgerFixture) seed(t *testing.T, id, name string, stock, minStock int) {
	t.Helper()
	p, err := catalog.NewProduct(catalog.ProductInput{
		ID:                id,
		Name:              name,
		Price:             18000,
		Category:          catalog.CategoryFruit,
		Taste:             catalog.TasteVector{Sweet: 7, Creamy: 1, Fruity: 10},
		Stock:             stock,
		MinStockThreshold: minStock,
	})
	require.NoError(t, err)
	require.NoError(t, f.products.Create(context.Background(), p))
}

func (f *ledgerFixture) stock(t *testing.T, id string) *catalog.Product {
	t.Helper()
	p, err := f.products.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

func TestLedgerService_DecrementStock_Clamp(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, inventory.OversellClamp)
	f.seed(t, "1", "Tropical Mango Breeze", 3, 1)
	f.seed(t, "2", "Dark Roasted Oolong", 10, 1)

	var results []appinv.Decrement
	var events []shared.DomainEvent
	err := f.scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		var err error
		results, events, err = f.ledger.DecrementStock(ctx, repos, []inventory.StockLine{
			{ProductID: "1", Quantity: 2},
			{ProductID: "2", Quantity: 4},
			{ProductID: "1", Quantity: 3},
		})
		return err
	})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, 5, results[0].Requested)
	assert.Equal(t, 3, results[0].Applied)
	assert.True(t, results[0].Clamped())
	assert.False(t, results[1].Clamped())

	mango := f.stock(t, "1")
	assert.Equal(t, 0, mango.Stock())
	assert.False(t, mango.IsAvailable())
	assert.Equal(t, 6, f.stock(t, "2").Stock())

	var types []string
	for _, e := range events {
		types = append(types, e.EventType())
	}
	assert.Contains(t, types, inventory.EventTypeStockChanged)
	assert.Contains(t, types, inventory.EventTypeStockBelowThreshold)
}

func TestLedgerService_DecrementStock_RejectRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, inventory.OversellReject)
	f.seed(t, "1", "Tropical Mango Breeze", 3, 1)
	f.seed(t, "2", "Dark Roasted Oolong", 1, 0)

	err := f.scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		_, _, err := f.ledger.DecrementStock(ctx, repos, []inventory.StockLine{
			{ProductID: "1", Quantity: 2},
			{ProductID: "2", Quantity: 2},
		})
		return err
	})
	require.Error(t, err)
	assert.True(t, shared.IsCode(err, shared.CodeStockConflict))
	assert.Equal(t, []string{"Dark Roasted Oolong"}, shared.StockConflictProducts(err))

	assert.Equal(t, 3, f.stock(t, "1").Stock())
	assert.Equal(t, 1, f.stock(t, "2").Stock())
}

func TestLedgerService_DecrementStock_UnknownProduct(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, inventory.OversellClamp)

	err := f.scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		_, _, err := f.ledger.DecrementStock(ctx, repos, []inventory.StockLine{{ProductID: "ghost", Quantity: 1}})
		return err
	})
	assert.True(t, shared.IsCode(err, shared.CodeStockConflict))
}

func TestLedgerService_DecrementStock_InvalidBatch(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, inventory.OversellClamp)

	err := f.scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		_, _, err := f.ledger.DecrementStock(ctx, repos, nil)
		return err
	})
	assert.True(t, shared.IsCode(err, shared.CodeValidation))
}

func TestLedgerService_Restock(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, inventory.OversellClamp)
	f.seed(t, "5", "Tropical Mango Breeze", 0, 5)

	resp, err := f.ledger.Restock(ctx, "5", 12, "admin")
	require.NoError(t, err)
	assert.Equal(t, 12, resp.Stock)
	assert.True(t, resp.IsAvailable)
	assert.Equal(t, string(inventory.InStock), resp.State)

	entries, err := f.logs.FindRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, activity.ActionRestock, entries[0].Action)
	assert.Equal(t, "admin", entries[0].Actor)
	assert.Contains(t, entries[0].Details, "+12")

	assert.Contains(t, f.publisher.types(), inventory.EventTypeStockChanged)
	assert.Contains(t, f.publisher.types(), activity.EventTypeEntryAppended)
}

func TestLedgerService_Restock_Invalid(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, inventory.OversellClamp)
	f.seed(t, "5", "Tropical Mango Breeze", 4, 5)

	_, err := f.ledger.Restock(ctx, "5", 0, "admin")
	assert.True(t, shared.IsCode(err, shared.CodeValidation))

	_, err = f.ledger.Restock(ctx, "missing", 3, "admin")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	entries, err := f.logs.FindRecent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, f.publisher.types())
}

func TestLedgerService_SetStock(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, inventory.OversellClamp)
	f.seed(t, "4", "Kyoto Macha Latte", 20, 5)

	resp, err := f.ledger.SetStock(ctx, "4", 3, "admin")
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Stock)
	assert.True(t, resp.LowStock)
	assert.Contains(t, f.publisher.types(), inventory.EventTypeStockBelowThreshold)

	_, err = f.ledger.SetStock(ctx, "4", -1, "admin")
	assert.True(t, shared.IsCode(err, shared.CodeValidation))
	assert.Equal(t, 3, f.stock(t, "4").Stock())
}

func TestLedgerService_SetAvailability(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, inventory.OversellClamp)
	f.seed(t, "1", "Royal Golden Milk Tea", 8, 2)
	f.seed(t, "6", "Dark Roasted Oolong", 0, 2)

	resp, err := f.ledger.SetAvailability(ctx, "1", false, "admin")
	require.NoError(t, err)
	assert.False(t, resp.IsAvailable)
	assert.Equal(t, string(inventory.Hidden), resp.State)

	resp, err = f.ledger.SetAvailability(ctx, "1", true, "admin")
	require.NoError(t, err)
	assert.True(t, resp.IsAvailable)

	// showing an empty product cannot make it purchasable
	resp, err = f.ledger.SetAvailability(ctx, "6", true, "admin")
	require.NoError(t, err)
	assert.False(t, resp.IsAvailable)
	assert.Equal(t, string(inventory.OutOfStock), resp.State)

	entries, err := f.logs.FindRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, activity.ActionSetAvailability, entries[0].Action)
}

func TestLedgerService_LowStock(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, inventory.OversellClamp)
	f.seed(t, "1", "Royal Golden Milk Tea", 50, 5)
	f.seed(t, "2", "Imperial Jasmine Honey", 5, 5)
	f.seed(t, "3", "Sakura Berry Frappe", 0, 5)

	items, err := f.ledger.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "2", items[0].ProductID)
	assert.Equal(t, "3", items[1].ProductID)

	n, err := f.ledger.LowStockCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
