// Package report exports the daily sales sheet and builds the dashboard
// summary.
package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	appactivity "github.com/tehraja/backend/internal/application/activity"
	"github.com/tehraja/backend/internal/domain/activity"
	"github.com/tehraja/backend/internal/domain/catalog"
	"github.com/tehraja/backend/internal/domain/order"
	"github.com/tehraja/backend/internal/domain/report"
	"github.com/tehraja/backend/internal/domain/shared"
	"github.com/tehraja/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Content types of exported files
const (
	ContentTypeCSV = "text/csv; charset=utf-8"
	ContentTypePDF = "application/pdf"
)

const filenameLayout = "2006-01-02"

// SheetPrinter renders a sheet to PDF
type SheetPrinter interface {
	Render(ctx context.Context, sheet report.Sheet) ([]byte, error)
}

// ReceiptPrinter renders an order receipt to PDF
type ReceiptPrinter interface {
	Render(ctx context.Context, receipt report.Receipt) ([]byte, error)
}

// Archive keeps a copy of every exported file
type Archive interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// ReportServiceConfig holds report settings
type ReportServiceConfig struct {
	ShopName string
	Location *time.Location
}

// ReportService exports sales reports and summarizes sales
type ReportService struct {
	orders   order.Repository
	products catalog.ProductRepository
	logs     *appactivity.LogService
	printer  SheetPrinter
	receipts ReceiptPrinter
	archive  Archive
	metrics  *telemetry.ShopMetrics
	config   ReportServiceConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewReportService creates a ReportService
func NewReportService(
	orders order.Repository,
	products catalog.ProductRepository,
	logs *appactivity.LogService,
	config ReportServiceConfig,
	logger *zap.Logger,
) *ReportService {
	if config.Location == nil {
		config.Location = time.UTC
	}
	return &ReportService{
		orders:   orders,
		products: products,
		logs:     logs,
		config:   config,
		logger:   logger,
		now:      time.Now,
	}
}

// SetPrinter enables PDF export
func (s *ReportService) SetPrinter(p SheetPrinter) {
	s.printer = p
}

// SetReceiptPrinter enables order receipts
func (s *ReportService) SetReceiptPrinter(p ReceiptPrinter) {
	s.receipts = p
}

// SetArchive copies every export to object storage
func (s *ReportService) SetArchive(a Archive) {
	s.archive = a
}

// SetMetrics sets the business metrics recorder
func (s *ReportService) SetMetrics(m *telemetry.ShopMetrics) {
	s.metrics = m
}

// SetClock replaces the time source
func (s *ReportService) SetClock(now func() time.Time) {
	s.now = now
}

// PDFEnabled reports whether a printer is configured
func (s *ReportService) PDFEnabled() bool {
	return s.printer != nil
}

// Sheet returns the sales sheet without exporting it
func (s *ReportService) Sheet(ctx context.Context, req ExportRequest) (*SheetResponse, error) {
	sheet, err := s.buildSheet(ctx, req)
	if err != nil {
		return nil, err
	}
	return &SheetResponse{Sheet: sheet, Columns: report.Columns, FormattedRevenue: sheet.FormattedRevenue()}, nil
}

// ExportCSV renders the sheet as CSV and records EXPORT_CSV
func (s *ReportService) ExportCSV(ctx context.Context, req ExportRequest, actor string) (*Export, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "export_csv")
	defer span.End()

	sheet, err := s.buildSheet(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, sheet); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to render csv: %w", err)
	}
	return s.finish(ctx, sheet, activity.ActionExportCSV, "csv", ContentTypeCSV, buf.Bytes(), actor)
}

// ExportPDF prints the sheet and records EXPORT_PDF
func (s *ReportService) ExportPDF(ctx context.Context, req ExportRequest, actor string) (*Export, error) {
	if s.printer == nil {
		return nil, shared.NewValidationError("PDF export is not enabled")
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "export_pdf")
	defer span.End()

	sheet, err := s.buildSheet(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	data, err := s.printer.Render(ctx, sheet)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return s.finish(ctx, sheet, activity.ActionExportPDF, "pdf", ContentTypePDF, data, actor)
}

// Receipt prints the customer's receipt for one order. Receipts are
// reprinted on demand and are neither archived nor logged.
func (s *ReportService) Receipt(ctx context.Context, orderID string) (*Export, error) {
	if s.receipts == nil {
		return nil, shared.NewValidationError("Receipt printing is not enabled")
	}
	if orderID == "" {
		return nil, shared.NewValidationError("Order id is required")
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "receipt", telemetry.SpanAttrOrderID, orderID)
	defer span.End()

	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("Order %s not found", orderID))
		}
		telemetry.RecordError(span, err)
		return nil, shared.NewPersistenceError("load order", err)
	}
	receipt := report.BuildReceipt(s.config.ShopName, o, s.config.Location)
	data, err := s.receipts.Render(ctx, receipt)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to render receipt: %w", err)
	}
	s.metrics.RecordReportExport(ctx, "receipt")
	return &Export{
		Filename:    fmt.Sprintf("struk-%s.pdf", o.ShortID()),
		ContentType: ContentTypePDF,
		Data:        data,
	}, nil
}

// Summary aggregates every order and the live catalog for the dashboard
func (s *ReportService) Summary(ctx context.Context) (*report.Summary, error) {
	orders, err := s.orders.FindAll(ctx, order.Filter{})
	if err != nil {
		return nil, shared.NewPersistenceError("load orders", err)
	}
	products, err := s.products.FindAll(ctx, catalog.ProductFilter{})
	if err != nil {
		return nil, shared.NewPersistenceError("load products", err)
	}
	summary := report.Summarize(orders, products, s.now(), s.config.Location)
	return &summary, nil
}

func (s *ReportService) buildSheet(ctx context.Context, req ExportRequest) (report.Sheet, error) {
	if req.From != nil && req.To != nil && req.To.Before(*req.From) {
		return report.Sheet{}, shared.NewValidationError("'to' must not be before 'from'")
	}
	orders, err := s.orders.FindAll(ctx, order.Filter{From: req.From, To: req.To})
	if err != nil {
		return report.Sheet{}, shared.NewPersistenceError("load orders", err)
	}
	if !req.IncludeCancelled {
		orders = slices.DeleteFunc(orders, func(o order.Order) bool {
			return o.Status == order.StatusCancelled
		})
	}
	return report.BuildSheet(s.config.ShopName, orders, s.config.Location, s.now()), nil
}

func (s *ReportService) finish(ctx context.Context, sheet report.Sheet, action activity.Action, ext, contentType string, data []byte, actor string) (*Export, error) {
	export := &Export{
		Filename:    fmt.Sprintf("laporan-penjualan-%s.%s", sheet.PrintedAt.Format(filenameLayout), ext),
		ContentType: contentType,
		Data:        data,
	}

	if s.archive != nil {
		key := fmt.Sprintf("reports/%s/%s", sheet.PrintedAt.Format(filenameLayout), export.Filename)
		url, err := s.archive.Put(ctx, key, data, contentType)
		if err != nil {
			s.logger.Warn("Failed to archive report", zap.String("key", key), zap.Error(err))
		} else {
			export.ArchiveURL = url
		}
	}

	details := fmt.Sprintf("%d orders, %s", len(sheet.Rows), sheet.FormattedRevenue())
	if _, err := s.logs.Append(ctx, action, details, actor); err != nil {
		return nil, err
	}
	s.metrics.RecordReportExport(ctx, ext)

	s.logger.Info("Sales report exported",
		zap.String("format", ext),
		zap.Int("orders", len(sheet.Rows)),
		zap.Int64("revenue", sheet.Revenue),
		zap.String("actor", actor))
	return export, nil
}
