package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ShopMetrics records storefront business instruments.
type ShopMetrics struct {
	ordersPlaced     metric.Int64Counter
	revenue          metric.Int64Counter
	cupsSold         metric.Int64Counter
	stockConflicts   metric.Int64Counter
	statusChanges    metric.Int64Counter
	reportsExported  metric.Int64Counter
	checkoutDuration metric.Float64Histogram
	registration     metric.Registration
}

// ShopGauges supplies point-in-time values read on every collection
type ShopGauges struct {
	StreamClients func() int
	LowStockCount func(ctx context.Context) (int, error)
}

// NewShopMetrics creates the instruments on meter. Gauges with a nil source
// are skipped.
func NewShopMetrics(meter metric.Meter, gauges ShopGauges) (*ShopMetrics, error) {
	m := &ShopMetrics{}
	var err error

	if m.ordersPlaced, err = meter.Int64Counter("tehraja.orders.placed",
		metric.WithDescription("Orders placed"), metric.WithUnit("{order}")); err != nil {
		return nil, instrumentError("tehraja.orders.placed", err)
	}
	if m.revenue, err = meter.Int64Counter("tehraja.orders.revenue",
		metric.WithDescription("Revenue of placed orders in rupiah"), metric.WithUnit("IDR")); err != nil {
		return nil, instrumentError("tehraja.orders.revenue", err)
	}
	if m.cupsSold, err = meter.Int64Counter("tehraja.orders.cups",
		metric.WithDescription("Cups sold"), metric.WithUnit("{cup}")); err != nil {
		return nil, instrumentError("tehraja.orders.cups", err)
	}
	if m.stockConflicts, err = meter.Int64Counter("tehraja.checkout.stock_conflicts",
		metric.WithDescription("Checkouts rejected for insufficient stock")); err != nil {
		return nil, instrumentError("tehraja.checkout.stock_conflicts", err)
	}
	if m.statusChanges, err = meter.Int64Counter("tehraja.orders.status_changes",
		metric.WithDescription("Order status transitions")); err != nil {
		return nil, instrumentError("tehraja.orders.status_changes", err)
	}
	if m.reportsExported, err = meter.Int64Counter("tehraja.reports.exported",
		metric.WithDescription("Sales reports exported")); err != nil {
		return nil, instrumentError("tehraja.reports.exported", err)
	}
	if m.checkoutDuration, err = meter.Float64Histogram("tehraja.checkout.duration",
		metric.WithDescription("Checkout transaction duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(CheckoutDurationBuckets...)); err != nil {
		return nil, instrumentError("tehraja.checkout.duration", err)
	}

	var observables []metric.Observable
	var clients, lowStock metric.Int64ObservableGauge
	if gauges.StreamClients != nil {
		if clients, err = meter.Int64ObservableGauge("tehraja.realtime.clients",
			metric.WithDescription("Connected SSE clients")); err != nil {
			return nil, instrumentError("tehraja.realtime.clients", err)
		}
		observables = append(observables, clients)
	}
	if gauges.LowStockCount != nil {
		if lowStock, err = meter.Int64ObservableGauge("tehraja.inventory.low_stock",
			metric.WithDescription("Visible products at or below their minimum stock")); err != nil {
			return nil, instrumentError("tehraja.inventory.low_stock", err)
		}
		observables = append(observables, lowStock)
	}
	if len(observables) > 0 {
		m.registration, err = meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
			if gauges.StreamClients != nil {
				o.ObserveInt64(clients, int64(gauges.StreamClients()))
			}
			if gauges.LowStockCount != nil {
				n, err := gauges.LowStockCount(ctx)
				if err != nil {
					return err
				}
				o.ObserveInt64(lowStock, int64(n))
			}
			return nil
		}, observables...)
		if err != nil {
			return nil, fmt.Errorf("failed to register gauge callback: %w", err)
		}
	}

	return m, nil
}

func instrumentError(name string, err error) error {
	return fmt.Errorf("failed to create instrument %s: %w", name, err)
}

// RecordOrderPlaced counts a committed checkout
func (m *ShopMetrics) RecordOrderPlaced(ctx context.Context, channel string, total int64, cups int, took time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(AttrChannel.String(channel))
	m.ordersPlaced.Add(ctx, 1, attrs)
	m.revenue.Add(ctx, total, attrs)
	m.cupsSold.Add(ctx, int64(cups), attrs)
	m.checkoutDuration.Record(ctx, took.Seconds(), attrs)
}

// RecordStockConflict counts a checkout rejected for stock
func (m *ShopMetrics) RecordStockConflict(ctx context.Context, products int) {
	if m == nil {
		return
	}
	m.stockConflicts.Add(ctx, 1, metric.WithAttributes(attribute.Int("products", products)))
}

// RecordStatusChange counts an order status transition
func (m *ShopMetrics) RecordStatusChange(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.statusChanges.Add(ctx, 1, metric.WithAttributes(AttrOrderStatus.String(status)))
}

// RecordReportExport counts a CSV or PDF export
func (m *ShopMetrics) RecordReportExport(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.reportsExported.Add(ctx, 1, metric.WithAttributes(AttrReportKind.String(kind)))
}

// Stop unregisters gauge callbacks
func (m *ShopMetrics) Stop() error {
	if m == nil || m.registration == nil {
		return nil
	}
	return m.registration.Unregister()
}
