package handler

import (
	"context"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	reportapp "github.com/tehraja/backend/internal/application/report"
	"github.com/tehraja/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// ArchiveURLHeader carries the object storage copy of an export
const ArchiveURLHeader = "X-Report-Archive"

// ReportHandler serves the sales sheet, exports and the dashboard summary
type ReportHandler struct {
	BaseHandler
	reports *reportapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reports *reportapp.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{BaseHandler: newBaseHandler(logger), reports: reports}
}

// Sheet godoc
// @Summary      Sales sheet
// @Description  The rows exported by CSV and PDF, as JSON
// @Tags         reports
// @Produce      json
// @Param        from query string false "RFC 3339 lower bound"
// @Param        to query string false "RFC 3339 upper bound"
// @Param        include_cancelled query bool false "Include cancelled orders"
// @Success      200 {object} dto.Response{data=reportapp.SheetResponse}
// @Security     BearerAuth
// @Router       /reports/sales [get]
func (h *ReportHandler) Sheet(c *gin.Context) {
	var req reportapp.ExportRequest
	if !h.bindQuery(c, &req) {
		return
	}
	sheet, err := h.reports.Sheet(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sheet)
}

// ExportCSV godoc
// @Summary      Download the sales report as CSV
// @Tags         reports
// @Produce      text/csv
// @Param        from query string false "RFC 3339 lower bound"
// @Param        to query string false "RFC 3339 upper bound"
// @Param        include_cancelled query bool false "Include cancelled orders"
// @Success      200 {file} file
// @Security     BearerAuth
// @Router       /reports/sales.csv [get]
func (h *ReportHandler) ExportCSV(c *gin.Context) {
	h.export(c, h.reports.ExportCSV)
}

// ExportPDF godoc
// @Summary      Download the sales report as PDF
// @Tags         reports
// @Produce      application/pdf
// @Param        from query string false "RFC 3339 lower bound"
// @Param        to query string false "RFC 3339 upper bound"
// @Param        include_cancelled query bool false "Include cancelled orders"
// @Success      200 {file} file
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo} "PDF rendering disabled"
// @Security     BearerAuth
// @Router       /reports/sales.pdf [get]
func (h *ReportHandler) ExportPDF(c *gin.Context) {
	h.export(c, h.reports.ExportPDF)
}

type exportFunc func(ctx context.Context, req reportapp.ExportRequest, actor string) (*reportapp.Export, error)

func (h *ReportHandler) export(c *gin.Context, fn exportFunc) {
	var req reportapp.ExportRequest
	if !h.bindQuery(c, &req) {
		return
	}
	file, err := fn(c.Request.Context(), req, middleware.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Filename}))
	if file.ArchiveURL != "" {
		c.Header(ArchiveURLHeader, file.ArchiveURL)
	}
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// Receipt godoc
// @Summary      Order receipt
// @Description  The customer's receipt for one order as a PDF on 80mm roll paper. Anyone holding the order id may print it.
// @Tags         orders
// @Produce      application/pdf
// @Param        id path string true "Order ID"
// @Success      200 {file} file
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo} "Receipt printing disabled"
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /orders/{id}/receipt [get]
func (h *ReportHandler) Receipt(c *gin.Context) {
	file, err := h.reports.Receipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": file.Filename}))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// Summary godoc
// @Summary      Dashboard summary
// @Description  Revenue, order counts, seven-day trend, product popularity and low stock
// @Tags         reports
// @Produce      json
// @Success      200 {object} dto.Response{data=report.Summary}
// @Security     BearerAuth
// @Router       /reports/summary [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	summary, err := h.reports.Summary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
