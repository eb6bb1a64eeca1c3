package printing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tehraja/backend/internal/domain/report"
)

func sampleSheet() report.Sheet {
	return report.Sheet{
		ShopName:  "TEH RAJA",
		Title:     report.Title,
		PrintedAt: time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC),
		Rows: []report.Row{
			{Order: "abcdef", Time: "14.05.09", Cashier: "Budi <script>", Detail: "Royal Thai Tea (x2)", Total: 36000},
		},
		Revenue: 36000,
	}
}

func TestRenderHTML(t *testing.T) {
	doc, err := RenderHTML(sampleSheet())
	require.NoError(t, err)

	assert.Contains(t, doc, "<h1>TEH RAJA</h1>")
	assert.Contains(t, doc, "Laporan Penjualan Harian")
	assert.Contains(t, doc, "Tanggal Cetak: 02/03/2026 14.00.00")
	assert.Contains(t, doc, "<th>Waktu</th>")
	assert.Contains(t, doc, "Budi &lt;script&gt;", "cells are escaped")
	assert.Contains(t, doc, "Rp 36.000")
	assert.Contains(t, doc, "Total Omset")
	assert.NotContains(t, doc, "Belum ada pesanan")
}

func TestRenderHTML_Empty(t *testing.T) {
	sheet := sampleSheet()
	sheet.Rows = nil
	doc, err := RenderHTML(sheet)
	require.NoError(t, err)
	assert.Contains(t, doc, "Belum ada pesanan")
}

func TestSalesReportPDF_Render(t *testing.T) {
	rec := &recordingRenderer{}
	printer := NewSalesReportPDF(rec)

	pdf, err := printer.Render(context.Background(), sampleSheet())
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), pdf)

	require.NotNil(t, rec.req)
	assert.Equal(t, PaperSizeA4, rec.req.PaperSize)
	assert.Equal(t, report.Title, rec.req.Title)
	assert.Contains(t, rec.req.FooterHTML, "pageNumber")
	assert.Contains(t, rec.req.HTML, "<table>")
}

func TestSalesReportPDF_RenderError(t *testing.T) {
	printer := NewSalesReportPDF(&recordingRenderer{err: errors.New("boom")})
	_, err := printer.Render(context.Background(), sampleSheet())
	assert.Error(t, err)
}
