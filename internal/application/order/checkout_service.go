// Package order turns carts into orders and moves orders through their
// status lifecycle.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	appactivity "github.com/tehraja/backend/internal/application/activity"
	appcart "github.com/tehraja/backend/internal/application/cart"
	appinv "github.com/tehraja/backend/internal/application/inventory"
	"github.com/tehraja/backend/internal/domain/activity"
	"github.com/tehraja/backend/internal/domain/cart"
	"github.com/tehraja/backend/internal/domain/inventory"
	"github.com/tehraja/backend/internal/domain/order"
	"github.com/tehraja/backend/internal/domain/shared"
	"github.com/tehraja/backend/internal/domain/shared/valueobject"
	"github.com/tehraja/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// CheckoutConfig holds checkout settings
type CheckoutConfig struct {
	DefaultTable string
	// IdempotencyTTL is how long an Idempotency-Key is remembered; zero
	// disables key handling
	IdempotencyTTL time.Duration
}

// CheckoutService places orders from carts
type CheckoutService struct {
	carts       *appcart.CartService
	txScope     appinv.TransactionScope
	ledger      *appinv.LedgerService
	logs        *appactivity.LogService
	orders      order.Repository
	publisher   shared.EventPublisher
	handoff     order.HandoffPreparer
	idempotency shared.IdempotencyStore
	metrics     *telemetry.ShopMetrics
	config      CheckoutConfig
	logger      *zap.Logger
}

// NewCheckoutService creates a CheckoutService
func NewCheckoutService(
	carts *appcart.CartService,
	txScope appinv.TransactionScope,
	ledger *appinv.LedgerService,
	logs *appactivity.LogService,
	orders order.Repository,
	publisher shared.EventPublisher,
	config CheckoutConfig,
	logger *zap.Logger,
) *CheckoutService {
	if config.DefaultTable == "" {
		config.DefaultTable = order.DefaultTable
	}
	return &CheckoutService{
		carts:     carts,
		txScope:   txScope,
		ledger:    ledger,
		logs:      logs,
		orders:    orders,
		publisher: publisher,
		config:    config,
		logger:    logger,
	}
}

// SetHandoff sets the messaging handoff
func (s *CheckoutService) SetHandoff(h order.HandoffPreparer) {
	s.handoff = h
}

// SetIdempotencyStore enables Idempotency-Key handling
func (s *CheckoutService) SetIdempotencyStore(store shared.IdempotencyStore) {
	s.idempotency = store
}

// SetMetrics sets the business metrics recorder
func (s *CheckoutService) SetMetrics(m *telemetry.ShopMetrics) {
	s.metrics = m
}

// Checkout places an order from the session's cart. Inside one transaction
// it locks and revalidates stock, stores the order, appends the SALE entry
// and decrements stock. A stock conflict aborts with cart and stock
// unchanged. After commit the cart is cleared, events are published and the
// order is handed off; a handoff failure never undoes the order.
func (s *CheckoutService) Checkout(ctx context.Context, sessionID, idempotencyKey string, req CheckoutRequest) (*CheckoutResponse, error) {
	started := time.Now()
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "place_order", telemetry.SpanAttrSessionID, sessionID)
	defer span.End()

	key := s.idempotencyKey(sessionID, idempotencyKey)
	if key != "" {
		replay, err := s.replay(ctx, key)
		if err != nil || replay != nil {
			return replay, err
		}
	}

	c, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	table := req.Table
	if table == "" {
		table = s.config.DefaultTable
	}
	o, err := order.Place(order.PlaceInput{
		CustomerName: req.CustomerName,
		Table:        table,
		Channel:      order.Channel(req.Channel),
		Lines:        c.Lines,
	})
	if err != nil {
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrLines, len(o.Lines), telemetry.SpanAttrTotal, o.Total)

	if key != "" {
		replay, err := s.claim(ctx, key)
		if err != nil || replay != nil {
			return replay, err
		}
	}

	entry, events, err := s.place(ctx, o, c.Lines)
	if err != nil {
		if key != "" {
			s.release(ctx, key)
		}
		if products := shared.StockConflictProducts(err); products != nil {
			s.metrics.RecordStockConflict(ctx, len(products))
		}
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrOrderID, o.ID)

	// the order is committed: nothing below may fail the request
	if key != "" {
		if err := s.idempotency.Complete(ctx, key, o.ID, s.config.IdempotencyTTL); err != nil {
			s.logger.Warn("Failed to record idempotency key", zap.String("order_id", o.ID), zap.Error(err))
		}
	}
	if err := s.carts.Clear(ctx, sessionID); err != nil {
		s.logger.Warn("Failed to clear cart after checkout", zap.String("order_id", o.ID), zap.Error(err))
	}
	s.publish(ctx, append(events, o.GetDomainEvents()...))
	o.ClearDomainEvents()
	s.logs.Announce(ctx, entry)

	resp := &CheckoutResponse{Order: ToOrderResponse(o)}
	if s.handoff != nil {
		h, err := s.handoff.Prepare(ctx, o)
		if err != nil {
			s.logger.Warn("Order handoff failed", zap.String("order_id", o.ID), zap.Error(err))
		} else {
			resp.Handoff = &h
		}
	}

	s.metrics.RecordOrderPlaced(ctx, string(o.Channel), o.Total, o.ItemCount(), time.Since(started))
	s.logger.Info("Order placed",
		zap.String("order_id", o.ID),
		zap.String("customer", o.CustomerName),
		zap.String("channel", string(o.Channel)),
		zap.Int64("total", o.Total),
		zap.Int("items", o.ItemCount()))
	return resp, nil
}

// place runs the checkout transaction
func (s *CheckoutService) place(ctx context.Context, o *order.Order, lines []cart.Line) (activity.Entry, []shared.DomainEvent, error) {
	var (
		entry  activity.Entry
		events []shared.DomainEvent
	)
	err := s.txScope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		locked, err := repos.Products().FindByIDsForUpdate(ctx, inventory.ProductIDs(o.StockLines()))
		if err != nil {
			return shared.NewPersistenceError("lock stock", err)
		}
		if err := cart.ValidateLines(lines, locked); err != nil {
			return err
		}
		if err := repos.Orders().Create(ctx, o); err != nil {
			return shared.NewPersistenceError("save order", err)
		}
		details := fmt.Sprintf("Order %s for %s (%s): %s, %s",
			o.ShortID(), o.CustomerName, o.Table, o.Detail(), valueobject.Rupiah(o.Total).Format())
		if entry, err = s.logs.AppendWith(ctx, repos.Activity(), activity.ActionSale, details, o.CustomerName); err != nil {
			return err
		}
		_, events, err = s.ledger.DecrementStock(ctx, repos, o.StockLines())
		return err
	})
	if err != nil {
		var de *shared.DomainError
		if !errors.As(err, &de) {
			err = shared.NewPersistenceError("place order", err)
		}
		return activity.Entry{}, nil, err
	}
	return entry, events, nil
}

func (s *CheckoutService) idempotencyKey(sessionID, key string) string {
	if key == "" || s.idempotency == nil || s.config.IdempotencyTTL <= 0 {
		return ""
	}
	return "checkout:" + sessionID + ":" + key
}

// replay returns the earlier response when key already completed
func (s *CheckoutService) replay(ctx context.Context, key string) (*CheckoutResponse, error) {
	orderID, found, err := s.idempotency.Lookup(ctx, key)
	if err != nil {
		return nil, shared.NewPersistenceError("check idempotency key", err)
	}
	if !found {
		return nil, nil
	}
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, shared.NewPersistenceError("load order", err)
	}
	s.logger.Info("Checkout replayed", zap.String("order_id", orderID))
	return &CheckoutResponse{Order: ToOrderResponse(o), Replayed: true}, nil
}

// claim acquires key for this request. A key completed by a concurrent
// request is replayed; one still in flight yields ErrCheckoutInProgress.
func (s *CheckoutService) claim(ctx context.Context, key string) (*CheckoutResponse, error) {
	ok, err := s.idempotency.Acquire(ctx, key, s.config.IdempotencyTTL)
	if err != nil {
		return nil, shared.NewPersistenceError("claim idempotency key", err)
	}
	if ok {
		return nil, nil
	}
	replay, err := s.replay(ctx, key)
	if err != nil || replay != nil {
		return replay, err
	}
	return nil, shared.ErrCheckoutInProgress
}

func (s *CheckoutService) release(ctx context.Context, key string) {
	if err := s.idempotency.Release(context.WithoutCancel(ctx), key); err != nil {
		s.logger.Warn("Failed to release idempotency key", zap.Error(err))
	}
}

func (s *CheckoutService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish checkout events", zap.Error(err))
	}
}
