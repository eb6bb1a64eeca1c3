package report_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appactivity "github.com/tehraja/backend/internal/application/activity"
	appreport "github.com/tehraja/backend/internal/application/report"
	"github.com/tehraja/backend/internal/domain/activity"
	"github.com/tehraja/backend/internal/domain/cart"
	"github.com/tehraja/backend/internal/domain/catalog"
	"github.com/tehraja/backend/internal/domain/order"
	"github.com/tehraja/backend/internal/domain/report"
	"github.com/tehraja/backend/internal/domain/shared"
	"github.com/tehraja/backend/internal/infrastructure/config"
	"github.com/tehraja/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

type fakePrinter struct {
	sheet report.Sheet
	err   error
}

func (p *fakePrinter) Render(_ context.Context, sheet report.Sheet) ([]byte, error) {
	p.sheet = sheet
	if p.err != nil {
		return nil, p.err
	}
	return []byte("%PDF-1.4"), nil
}

type fakeReceiptPrinter struct {
	receipt report.Receipt
	err     error
}

func (p *fakeReceiptPrinter) Render(_ context.Context, r report.Receipt) ([]byte, error) {
	p.receipt = r
	if p.err != nil {
		return nil, p.err
	}
	return []byte("%PDF-1.4"), nil
}

type fakeArchive struct {
	keys []string
	err  error
}

func (a *fakeArchive) Put(_ context.Context, key string, _ []byte, _ string) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.keys = append(a.keys, key)
	return "https://cdn.example.test/" + key, nil
}

type reportFixture struct {
	svc      *appreport.ReportService
	logs     *appactivity.LogService
	orders   *persistence.GormOrderRepository
	products *persistence.GormProductRepository
}

var printedAt = time.Date(2024, 8, 17, 9, 30, 0, 0, time.UTC)

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	db, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(context.Background()))
	t.Cleanup(func() { _ = db.Close() })

	f := &reportFixture{
		orders:   persistence.NewGormOrderRepository(db.DB),
		products: persistence.NewGormProductRepository(db.DB),
	}
	f.logs = appactivity.NewLogService(persistence.NewGormActivityRepository(db.DB), nil, 0, zap.NewNop())
	f.svc = appreport.NewReportService(f.orders, f.products, f.logs,
		appreport.ReportServiceConfig{ShopName: "TEH RAJA"}, zap.NewNop())
	f.svc.SetClock(func() time.Time { return printedAt })
	return f
}

func (f *reportFixture) place(t *testing.T, customer string, qty int, status order.Status) *order.Order {
	t.Helper()
	ctx := context.Background()
	o, err := order.Place(order.PlaceInput{
		CustomerName: customer,
		Lines:        []cart.Line{{ProductID: "teh-tarik", Name: "Teh Tarik", Price: 18000, Quantity: qty}},
	})
	require.NoError(t, err)
	require.NoError(t, f.orders.Create(ctx, o))
	if status == order.StatusCompleted {
		require.NoError(t, o.TransitionTo(order.StatusProcessing))
	}
	if status != order.StatusPending {
		require.NoError(t, o.TransitionTo(status))
		require.NoError(t, f.orders.UpdateStatus(ctx, o))
	}
	return o
}

func TestReportService_ExportCSV(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(t)
	f.place(t, "Budi", 2, order.StatusPending)
	f.place(t, "Sari", 1, order.StatusCancelled)

	archive := &fakeArchive{}
	f.svc.SetArchive(archive)

	export, err := f.svc.ExportCSV(ctx, appreport.ExportRequest{}, "admin")
	require.NoError(t, err)
	assert.Equal(t, "laporan-penjualan-2024-08-17.csv", export.Filename)
	assert.Equal(t, appreport.ContentTypeCSV, export.ContentType)
	assert.Equal(t, "https://cdn.example.test/reports/2024-08-17/laporan-penjualan-2024-08-17.csv", export.ArchiveURL)

	lines := strings.Split(strings.TrimSpace(string(export.Data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Order,Waktu,Kasir,Detail,Total", lines[0])
	assert.Contains(t, lines[1], "Budi,Teh Tarik (x2),36000")
	assert.Equal(t, "Total Omset,,,,36000", lines[2])

	entries, err := f.logs.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, string(activity.ActionExportCSV), entries[0].Action)
	assert.Equal(t, "admin", entries[0].Actor)
	assert.Equal(t, "1 orders, Rp 36.000", entries[0].Details)
}

func TestReportService_IncludeCancelled(t *testing.T) {
	f := newReportFixture(t)
	f.place(t, "Budi", 2, order.StatusCompleted)
	f.place(t, "Sari", 1, order.StatusCancelled)

	sheet, err := f.svc.Sheet(context.Background(), appreport.ExportRequest{IncludeCancelled: true})
	require.NoError(t, err)
	assert.Len(t, sheet.Rows, 2)
	assert.Equal(t, int64(54000), sheet.Revenue)
	assert.Equal(t, "Rp 54.000", sheet.FormattedRevenue)
}

func TestReportService_ArchiveFailureStillExports(t *testing.T) {
	f := newReportFixture(t)
	f.place(t, "Budi", 1, order.StatusPending)
	f.svc.SetArchive(&fakeArchive{err: errors.New("bucket gone")})

	export, err := f.svc.ExportCSV(context.Background(), appreport.ExportRequest{}, "kasir")
	require.NoError(t, err)
	assert.Empty(t, export.ArchiveURL)
	assert.NotEmpty(t, export.Data)
}

func TestReportService_ExportPDF(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(t)
	f.place(t, "Budi", 3, order.StatusPending)

	_, err := f.svc.ExportPDF(ctx, appreport.ExportRequest{}, "admin")
	assert.True(t, shared.IsCode(err, shared.CodeValidation))
	assert.False(t, f.svc.PDFEnabled())

	printer := &fakePrinter{}
	f.svc.SetPrinter(printer)
	export, err := f.svc.ExportPDF(ctx, appreport.ExportRequest{}, "admin")
	require.NoError(t, err)
	assert.Equal(t, appreport.ContentTypePDF, export.ContentType)
	assert.Equal(t, "laporan-penjualan-2024-08-17.pdf", export.Filename)
	assert.Equal(t, "TEH RAJA", printer.sheet.ShopName)
	assert.Equal(t, int64(54000), printer.sheet.Revenue)

	entries, err := f.logs.List(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, string(activity.ActionExportPDF), entries[0].Action)
}

func TestReportService_PrinterFailureWritesNoLog(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(t)
	f.place(t, "Budi", 1, order.StatusPending)
	f.svc.SetPrinter(&fakePrinter{err: errors.New("chrome crashed")})

	_, err := f.svc.ExportPDF(ctx, appreport.ExportRequest{}, "admin")
	require.Error(t, err)

	entries, err := f.logs.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReportService_Receipt(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(t)
	o := f.place(t, "Budi", 2, order.StatusPending)

	_, err := f.svc.Receipt(ctx, o.ID)
	assert.True(t, shared.IsCode(err, shared.CodeValidation), "printing disabled")

	printer := &fakeReceiptPrinter{}
	f.svc.SetReceiptPrinter(printer)
	export, err := f.svc.Receipt(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, appreport.ContentTypePDF, export.ContentType)
	assert.Equal(t, "struk-"+o.ShortID()+".pdf", export.Filename)
	assert.Equal(t, []byte("%PDF-1.4"), export.Data)

	assert.Equal(t, "TEH RAJA", printer.receipt.ShopName)
	assert.Equal(t, "Budi", printer.receipt.Customer)
	assert.Equal(t, "Rp 36.000", printer.receipt.Total)
	require.Len(t, printer.receipt.Lines, 1)
	assert.Equal(t, 2, printer.receipt.Lines[0].Quantity)

	// receipts are not exports
	entries, err := f.logs.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReportService_ReceiptErrors(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(t)
	f.svc.SetReceiptPrinter(&fakeReceiptPrinter{})

	_, err := f.svc.Receipt(ctx, "missing")
	assert.True(t, shared.IsCode(err, shared.CodeNotFound))

	_, err = f.svc.Receipt(ctx, "")
	assert.True(t, shared.IsCode(err, shared.CodeValidation))

	o := f.place(t, "Sari", 1, order.StatusPending)
	f.svc.SetReceiptPrinter(&fakeReceiptPrinter{err: errors.New("chrome crashed")})
	_, err = f.svc.Receipt(ctx, o.ID)
	assert.Error(t, err)
}

func TestReportService_InvalidRange(t *testing.T) {
	f := newReportFixture(t)
	from := printedAt
	to := printedAt.Add(-time.Hour)
	_, err := f.svc.ExportCSV(context.Background(), appreport.ExportRequest{From: &from, To: &to}, "admin")
	assert.True(t, shared.IsCode(err, shared.CodeValidation))
}

func TestReportService_Summary(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(t)
	f.svc.SetClock(time.Now)
	f.place(t, "Budi", 2, order.StatusCompleted)
	f.place(t, "Sari", 1, order.StatusPending)
	f.place(t, "Andi", 4, order.StatusCancelled)

	p, err := catalog.NewProduct(catalog.ProductInput{
		ID: "teh-tarik", Name: "Teh Tarik", Price: 18000, Category: catalog.CategoryClassic,
		Stock: 2, MinStockThreshold: 5,
	})
	require.NoError(t, err)
	require.NoError(t, f.products.Create(ctx, p))

	s, err := f.svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, s.OrderCount)
	assert.Equal(t, 3, s.ItemsSold)
	assert.Equal(t, int64(54000), s.Revenue.IntPart())
	assert.Equal(t, int64(27000), s.AverageOrder.IntPart())
	assert.Equal(t, 1, s.StatusCounts[order.StatusCancelled])
	require.Len(t, s.Popularity, 1)
	assert.Equal(t, 3, s.Popularity[0].Quantity)
	require.Len(t, s.LowStock, 1)
	assert.Equal(t, "teh-tarik", s.LowStock[0].ProductID)
	assert.Equal(t, 3, s.Daily[len(s.Daily)-1].Cups)
}
