package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	reportapp "github.com/tehraja/backend/internal/application/report"
	"github.com/tehraja/backend/internal/infrastructure/auth"
	"github.com/tehraja/backend/internal/infrastructure/printing"
)

func TestReportHandler_Sheet(t *testing.T) {
	app := newTestApp(t)
	app.fillCart(t, "sess-sheet", "1", "2")
	app.checkout(t, "sess-sheet", "")

	w := app.do(t, request{method: http.MethodGet, path: "/api/v1/reports/sales",
		headers: bearer(app.token(t, auth.RoleCashier))})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var sheet reportapp.SheetResponse
	decode(t, w, &sheet)
	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, int64(33000), sheet.Revenue)
	assert.Equal(t, "Budi", sheet.Rows[0].Cashier)
	assert.NotEmpty(t, sheet.Columns)
	assert.NotEmpty(t, sheet.FormattedRevenue)
}

func TestReportHandler_ExportCSV(t *testing.T) {
	app := newTestApp(t)
	app.fillCart(t, "sess-csv", "3")
	app.checkout(t, "sess-csv", "")
	cashier := bearer(app.token(t, auth.RoleCashier))

	w := app.do(t, request{method: http.MethodGet, path: "/api/v1/reports/sales.csv", headers: cashier})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, reportapp.ContentTypeCSV, w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), "attachment;"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
	assert.Empty(t, w.Header().Get(ArchiveURLHeader))
	assert.Contains(t, w.Body.String(), "Budi")

	// the export is recorded in the activity log
	w = app.do(t, request{method: http.MethodGet, path: "/api/v1/logs?limit=1", headers: cashier})
	assert.Contains(t, w.Body.String(), "EXPORT")
}

func TestReportHandler_BadRange(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, request{method: http.MethodGet, path: "/api/v1/reports/sales?from=yesterday",
		headers: bearer(app.token(t, auth.RoleAdmin))})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHandler_Summary(t *testing.T) {
	app := newTestApp(t)
	app.fillCart(t, "sess-summary", "1", "1")
	app.checkout(t, "sess-summary", "")

	w := app.do(t, request{method: http.MethodGet, path: "/api/v1/reports/summary",
		headers: bearer(app.token(t, auth.RoleAdmin))})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var summary map[string]any
	decode(t, w, &summary)
	assert.EqualValues(t, 1, summary["order_count"])
	assert.EqualValues(t, 2, summary["items_sold"])
	assert.NotEmpty(t, summary["daily"])
	assert.NotEmpty(t, summary["popularity"])
}

func TestReportHandler_Receipt(t *testing.T) {
	app := newTestApp(t)
	app.fillCart(t, "sess-receipt", "1", "1")
	placed := app.checkout(t, "sess-receipt", "")

	// customers print their own receipt without logging in
	w := app.do(t, request{method: http.MethodGet, path: "/api/v1/orders/" + placed.Order.ID + "/receipt"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, reportapp.ContentTypePDF, w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), "inline;"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "struk-")
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))

	require.NotNil(t, app.pdf.last)
	assert.Equal(t, printing.PaperSizeReceipt80MM, app.pdf.last.PaperSize)
	assert.Contains(t, app.pdf.last.HTML, "<b>2x</b>")
	assert.Contains(t, app.pdf.last.HTML, "Rp 36.000")
	assert.Contains(t, app.pdf.last.HTML, "Terima kasih telah berbelanja!")
}

func TestReportHandler_ReceiptUnknownOrder(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, request{method: http.MethodGet, path: "/api/v1/orders/nope/receipt"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, w))
}
