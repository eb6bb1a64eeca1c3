// Package inventory is the stock ledger: the only application path that
// changes a product's stock count or hide override.
package inventory

import (
	"context"
	"errors"
	"fmt"

	appactivity "github.com/tehraja/backend/internal/application/activity"
	"github.com/tehraja/backend/internal/domain/activity"
	"github.com/tehraja/backend/internal/domain/catalog"
	"github.com/tehraja/backend/internal/domain/inventory"
	"github.com/tehraja/backend/internal/domain/shared"
	"github.com/tehraja/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// LedgerService applies stock writes under row locks
type LedgerService struct {
	products  catalog.ProductRepository
	txScope   TransactionScope
	logs      *appactivity.LogService
	publisher shared.EventPublisher
	policy    inventory.OversellPolicy
	logger    *zap.Logger
}

// NewLedgerService creates a LedgerService
func NewLedgerService(
	products catalog.ProductRepository,
	txScope TransactionScope,
	logs *appactivity.LogService,
	publisher shared.EventPublisher,
	policy inventory.OversellPolicy,
	logger *zap.Logger,
) *LedgerService {
	if policy == "" {
		policy = inventory.OversellClamp
	}
	return &LedgerService{
		products:  products,
		txScope:   txScope,
		logs:      logs,
		publisher: publisher,
		policy:    policy,
		logger:    logger,
	}
}

// Policy returns the configured oversell policy
func (s *LedgerService) Policy() inventory.OversellPolicy {
	return s.policy
}

// DecrementStock takes a batch out of stock through repos, which must be
// bound to an open transaction. Repeated product ids are merged. Under the
// reject policy any line larger than its stock fails the whole batch with a
// stock conflict naming every short product. The returned events are for
// the caller to publish after commit.
func (s *LedgerService) DecrementStock(ctx context.Context, repos TransactionalRepositories, lines []inventory.StockLine) ([]Decrement, []shared.DomainEvent, error) {
	merged, err := inventory.MergeLines(lines)
	if err != nil {
		return nil, nil, err
	}

	locked, err := repos.Products().FindByIDsForUpdate(ctx, inventory.ProductIDs(merged))
	if err != nil {
		return nil, nil, shared.NewPersistenceError("lock stock", err)
	}
	byID := make(map[string]*catalog.Product, len(locked))
	for i := range locked {
		byID[locked[i].ID] = &locked[i]
	}

	var (
		results   = make([]Decrement, 0, len(merged))
		changed   = make([]*catalog.Product, 0, len(merged))
		conflicts []string
	)
	for _, line := range merged {
		p, ok := byID[line.ProductID]
		if !ok || p.IsDeleted() {
			conflicts = append(conflicts, line.ProductID)
			continue
		}
		applied, err := p.DecrementStock(line.Quantity, s.policy)
		if errors.Is(err, shared.ErrInsufficientStock) {
			conflicts = append(conflicts, p.Name)
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		results = append(results, Decrement{
			ProductID: p.ID,
			Name:      p.Name,
			Requested: line.Quantity,
			Applied:   applied,
			Remaining: p.Stock(),
		})
		changed = append(changed, p)
	}
	if len(conflicts) > 0 {
		return nil, nil, shared.NewStockConflictError(conflicts)
	}

	if err := repos.Products().SaveStock(ctx, changed); err != nil {
		return nil, nil, shared.NewPersistenceError("decrement stock", err)
	}

	var events []shared.DomainEvent
	for _, p := range changed {
		events = append(events, p.GetDomainEvents()...)
		p.ClearDomainEvents()
	}
	for _, d := range results {
		if d.Clamped() {
			s.logger.Warn("Decrement clamped at zero",
				zap.String("product_id", d.ProductID),
				zap.Int("requested", d.Requested),
				zap.Int("applied", d.Applied))
		}
	}
	return results, events, nil
}

// Restock adds delta units to a product
func (s *LedgerService) Restock(ctx context.Context, productID string, delta int, actor string) (*StockResponse, error) {
	return s.write(ctx, "restock", productID, actor, func(p *catalog.Product) (activity.Action, string, error) {
		if err := p.Restock(delta); err != nil {
			return "", "", err
		}
		return activity.ActionRestock, fmt.Sprintf("%s +%d (stock %d)", p.Name, delta, p.Stock()), nil
	})
}

// SetStock sets an absolute stock count
func (s *LedgerService) SetStock(ctx context.Context, productID string, stock int, actor string) (*StockResponse, error) {
	return s.write(ctx, "set_stock", productID, actor, func(p *catalog.Product) (activity.Action, string, error) {
		before := p.Stock()
		if err := p.SetStock(stock); err != nil {
			return "", "", err
		}
		return activity.ActionRestock, fmt.Sprintf("%s stock %d -> %d", p.Name, before, stock), nil
	})
}

// SetAvailability sets or clears the hide override. Making a product
// available never makes a zero-stock product purchasable.
func (s *LedgerService) SetAvailability(ctx context.Context, productID string, available bool, actor string) (*StockResponse, error) {
	return s.write(ctx, "set_availability", productID, actor, func(p *catalog.Product) (activity.Action, string, error) {
		if err := p.SetAvailability(available); err != nil {
			return "", "", err
		}
		state := "shown"
		if !available {
			state = "hidden"
		}
		return activity.ActionSetAvailability, fmt.Sprintf("%s %s (%s)", p.Name, state, p.Level.State()), nil
	})
}

// write locks one product, applies mutate, saves the stock columns and logs
// the action in the same transaction. Events go out after commit.
func (s *LedgerService) write(
	ctx context.Context,
	op, productID, actor string,
	mutate func(p *catalog.Product) (activity.Action, string, error),
) (*StockResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", op, telemetry.SpanAttrProductID, productID)
	defer span.End()

	var (
		product *catalog.Product
		events  []shared.DomainEvent
		entry   activity.Entry
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		locked, err := repos.Products().FindByIDsForUpdate(ctx, []string{productID})
		if err != nil {
			return shared.NewPersistenceError("lock stock", err)
		}
		if len(locked) == 0 || locked[0].IsDeleted() {
			return shared.ErrNotFound
		}
		product = &locked[0]

		action, details, err := mutate(product)
		if err != nil {
			return err
		}
		if err := repos.Products().SaveStock(ctx, []*catalog.Product{product}); err != nil {
			return shared.NewPersistenceError("save stock", err)
		}
		if entry, err = s.logs.AppendWith(ctx, repos.Activity(), action, details, actor); err != nil {
			return err
		}
		events = product.GetDomainEvents()
		product.ClearDomainEvents()
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, asPersistence(op, err)
	}

	s.publish(ctx, events)
	s.logs.Announce(ctx, entry)

	s.logger.Info("Stock updated",
		zap.String("op", op),
		zap.String("product_id", product.ID),
		zap.Int("stock", product.Stock()),
		zap.Bool("available", product.IsAvailable()),
		zap.String("actor", actor))

	resp := ToStockResponse(product)
	return &resp, nil
}

// LowStock lists visible products at or under their threshold, in catalog order
func (s *LedgerService) LowStock(ctx context.Context) ([]StockResponse, error) {
	products, err := s.products.FindAll(ctx, catalog.ProductFilter{OnlyLowStock: true})
	if err != nil {
		return nil, shared.NewPersistenceError("load stock", err)
	}
	out := make([]StockResponse, len(products))
	for i := range products {
		out[i] = ToStockResponse(&products[i])
	}
	return out, nil
}

// LowStockCount counts products at or under their threshold
func (s *LedgerService) LowStockCount(ctx context.Context) (int, error) {
	items, err := s.LowStock(ctx)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

func (s *LedgerService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish stock events", zap.Error(err))
	}
}

// asPersistence keeps domain errors as they are and wraps anything else
// escaping a transaction as a retryable persistence error
func asPersistence(op string, err error) error {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}
	return shared.NewPersistenceError(op, err)
}
