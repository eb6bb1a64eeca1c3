package printing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tehraja/backend/internal/domain/report"
)

func sampleReceipt() report.Receipt {
	return report.Receipt{
		ShopName: "TEH RAJA",
		Tagline:  report.ReceiptTagline,
		OrderID:  "abcdef123456",
		OrderRef: "#abcdef12",
		IssuedAt: "02/03/2026 14.05.09",
		Customer: "Budi",
		Table:    "7",
		Lines: []report.ReceiptLine{
			{Quantity: 2, Name: "Royal Thai Tea", Note: "less <ice>", Subtotal: "Rp 36.000"},
			{Quantity: 1, Name: "Lychee Tea", Subtotal: "Rp 15.000"},
		},
		Total:  "Rp 51.000",
		Footer: report.ReceiptFooter,
	}
}

func TestRenderReceiptHTML(t *testing.T) {
	doc, err := RenderReceiptHTML(sampleReceipt())
	require.NoError(t, err)

	assert.Contains(t, doc, "<h1>TEH RAJA</h1>")
	assert.Contains(t, doc, "Order ID: #abcdef12")
	assert.Contains(t, doc, "<b>Budi</b>")
	assert.Contains(t, doc, "<b>2x</b> Royal Thai Tea")
	assert.Contains(t, doc, "less &lt;ice&gt;", "notes are escaped")
	assert.Equal(t, 1, strings.Count(doc, `class="note"`), "only lines with a note print one")
	assert.Contains(t, doc, "<span>TOTAL</span><span>Rp 51.000</span>")
	assert.Contains(t, doc, "Terima kasih telah berbelanja!")
}

func TestReceiptPDF_Render(t *testing.T) {
	rec := &recordingRenderer{}
	printer := NewReceiptPDF(rec)

	pdf, err := printer.Render(context.Background(), sampleReceipt())
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), pdf)

	require.NotNil(t, rec.req)
	assert.Equal(t, PaperSizeReceipt80MM, rec.req.PaperSize)
	assert.Equal(t, ReceiptMargins(), rec.req.Margins)
	assert.Equal(t, "TEH RAJA #abcdef12", rec.req.Title)
	assert.Empty(t, rec.req.FooterHTML)
}

func TestReceiptPDF_RenderError(t *testing.T) {
	printer := NewReceiptPDF(&recordingRenderer{err: errors.New("chrome gone")})
	_, err := printer.Render(context.Background(), sampleReceipt())
	assert.Error(t, err)
}
