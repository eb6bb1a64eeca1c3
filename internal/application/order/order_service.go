package order

import (
	"context"
	"errors"
	"fmt"

	appactivity "github.com/tehraja/backend/internal/application/activity"
	appinv "github.com/tehraja/backend/internal/application/inventory"
	"github.com/tehraja/backend/internal/domain/activity"
	"github.com/tehraja/backend/internal/domain/order"
	"github.com/tehraja/backend/internal/domain/shared"
	"github.com/tehraja/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// SnapshotLimit caps the orders sent to a newly connected stream
const SnapshotLimit = 200

// OrderService reads orders and moves them through their lifecycle
type OrderService struct {
	orders    order.Repository
	txScope   appinv.TransactionScope
	logs      *appactivity.LogService
	publisher shared.EventPublisher
	metrics   *telemetry.ShopMetrics
	logger    *zap.Logger
}

// NewOrderService creates an OrderService
func NewOrderService(
	orders order.Repository,
	txScope appinv.TransactionScope,
	logs *appactivity.LogService,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orders:    orders,
		txScope:   txScope,
		logs:      logs,
		publisher: publisher,
		logger:    logger,
	}
}

// SetMetrics sets the business metrics recorder
func (s *OrderService) SetMetrics(m *telemetry.ShopMetrics) {
	s.metrics = m
}

// Get returns one order
func (s *OrderService) Get(ctx context.Context, id string) (*OrderResponse, error) {
	o, err := s.find(ctx, s.orders, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// List returns orders newest first
func (s *OrderService) List(ctx context.Context, req ListOrdersRequest) ([]OrderResponse, error) {
	filter := order.Filter{From: req.From, To: req.To, Limit: req.Limit}
	if req.Status != "" {
		status, err := order.ParseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = status
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, shared.NewValidationError("'to' must not be before 'from'")
	}
	orders, err := s.orders.FindAll(ctx, filter)
	if err != nil {
		return nil, shared.NewPersistenceError("list orders", err)
	}
	return ToOrderResponses(orders), nil
}

// UpdateStatus moves an order to status. Completed and cancelled orders are
// final; a concurrent change to the same order fails with CONFLICT.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status, actor string) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "update_status", telemetry.SpanAttrOrderID, id)
	defer span.End()

	target, err := order.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	var (
		o     *order.Order
		entry activity.Entry
	)
	err = s.txScope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		var err error
		if o, err = s.find(ctx, repos.Orders(), id); err != nil {
			return err
		}
		from := o.Status
		if err := o.TransitionTo(target); err != nil {
			return err
		}
		if err := repos.Orders().UpdateStatus(ctx, o); err != nil {
			var de *shared.DomainError
			if errors.As(err, &de) {
				return err
			}
			return shared.NewPersistenceError("update order status", err)
		}
		details := fmt.Sprintf("Order %s: %s -> %s", o.ShortID(), from, target)
		entry, err = s.logs.AppendWith(ctx, repos.Activity(), activity.ActionOrderStatus, details, actor)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, o.GetDomainEvents()...)
	o.ClearDomainEvents()
	s.logs.Announce(ctx, entry)
	s.metrics.RecordStatusChange(ctx, string(target))

	s.logger.Info("Order status changed",
		zap.String("order_id", o.ID),
		zap.String("status", string(target)),
		zap.String("actor", actor))
	resp := ToOrderResponse(o)
	return &resp, nil
}

// Reset purges every order and every log entry, then records RESET_DATA as
// the first entry of the new trail. Products are untouched.
func (s *OrderService) Reset(ctx context.Context, confirm bool, actor string) (*ResetResponse, error) {
	if !confirm {
		return nil, shared.ErrConfirmationRequired
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "reset")
	defer span.End()

	var (
		resp  ResetResponse
		entry activity.Entry
	)
	err := s.txScope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		var err error
		if resp.OrdersDeleted, err = repos.Orders().DeleteAll(ctx); err != nil {
			return shared.NewPersistenceError("delete orders", err)
		}
		if resp.LogsDeleted, err = repos.Activity().DeleteAll(ctx); err != nil {
			return shared.NewPersistenceError("delete activity log", err)
		}
		details := fmt.Sprintf("Deleted %d orders and %d log entries", resp.OrdersDeleted, resp.LogsDeleted)
		entry, err = s.logs.AppendWith(ctx, repos.Activity(), activity.ActionResetData, details, actor)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, activity.NewDataResetEvent(resp.OrdersDeleted, resp.LogsDeleted, actor))
	s.logs.Announce(ctx, entry)

	s.logger.Warn("Shop data reset",
		zap.Int64("orders", resp.OrdersDeleted),
		zap.Int64("logs", resp.LogsDeleted),
		zap.String("actor", actor))
	return &resp, nil
}

// Snapshot returns the newest orders for the orders stream
func (s *OrderService) Snapshot(ctx context.Context, _ string) (any, error) {
	return s.List(ctx, ListOrdersRequest{Limit: SnapshotLimit})
}

// OrderSnapshot returns a single order for its per-order stream
func (s *OrderService) OrderSnapshot(ctx context.Context, id string) (any, error) {
	return s.Get(ctx, id)
}

func (s *OrderService) find(ctx context.Context, repo order.Repository, id string) (*order.Order, error) {
	if id == "" {
		return nil, shared.NewValidationError("Order id is required")
	}
	o, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("Order %s not found", id))
		}
		return nil, shared.NewPersistenceError("load order", err)
	}
	return o, nil
}

func (s *OrderService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish order events", zap.Error(err))
	}
}
