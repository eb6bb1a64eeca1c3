package printing

import (
	"bytes"
	"context"
	"html/template"

	"github.com/tehraja/backend/internal/domain/report"
)

const salesReportTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Sheet.Title}}</title>
<style>
  body { font-family: Helvetica, Arial, sans-serif; font-size: 11px; color: #000; margin: 0; }
  .banner { background: #1a4d3e; color: #fff; text-align: center; padding: 12px 0; }
  .banner h1 { margin: 0; font-size: 24px; letter-spacing: 2px; }
  .banner p { margin: 4px 0 0; font-size: 10px; }
  .info { margin: 16px 0; }
  .info h2 { font-size: 15px; margin: 0 0 6px; }
  .info p { margin: 2px 0; }
  table { width: 100%; border-collapse: collapse; }
  thead { display: table-header-group; }
  tr { page-break-inside: avoid; }
  th { background: #d4af37; color: #1a4d3e; text-align: left; }
  th, td { border: 1px solid #999; padding: 4px 6px; vertical-align: top; }
  td.num, th.num { text-align: right; white-space: nowrap; }
  tfoot td { font-weight: bold; }
  .sign { margin-top: 40px; width: 200px; margin-left: auto; text-align: center; page-break-inside: avoid; }
  .sign .space { height: 50px; }
</style>
</head>
<body>
<div class="banner">
  <h1>{{.Sheet.ShopName}}</h1>
  <p>{{.Tagline}}</p>
</div>
<div class="info">
  <h2>{{.Sheet.Title}}</h2>
  <p>Tanggal Cetak: {{.Sheet.FormattedPrintedAt}}</p>
  <p>{{.TotalLabel}}: {{.Sheet.FormattedRevenue}}</p>
</div>
<table>
  <thead>
    <tr>{{range $i, $c := .Columns}}<th{{if eq $i 4}} class="num"{{end}}>{{$c}}</th>{{end}}</tr>
  </thead>
  <tbody>
  {{- range .Sheet.Rows}}
    <tr><td>{{.Order}}</td><td>{{.Time}}</td><td>{{.Cashier}}</td><td>{{.Detail}}</td><td class="num">{{.FormattedTotal}}</td></tr>
  {{- else}}
    <tr><td colspan="5">Belum ada pesanan</td></tr>
  {{- end}}
  </tbody>
  <tfoot>
    <tr><td colspan="4">{{.TotalLabel}}</td><td class="num">{{.Sheet.FormattedRevenue}}</td></tr>
  </tfoot>
</table>
<div class="sign">
  <p>Mengetahui,</p>
  <div class="space"></div>
  <p>( Manajer )</p>
</div>
</body>
</html>`

// Chrome fills pageNumber and totalPages in header/footer templates
const pageFooterTemplate = `<div style="font-size:8px;width:100%;text-align:center;color:#666;">` +
	`Halaman <span class="pageNumber"></span> / <span class="totalPages"></span></div>`

var salesReportTmpl = template.Must(template.New("sales_report").Parse(salesReportTemplate))

type salesReportView struct {
	Sheet      report.Sheet
	Columns    []string
	Tagline    string
	TotalLabel string
}

// SalesReportPDF prints the daily sales sheet as a paginated A4 table
type SalesReportPDF struct {
	renderer PDFRenderer
}

// NewSalesReportPDF creates a report printer on top of renderer
func NewSalesReportPDF(renderer PDFRenderer) *SalesReportPDF {
	return &SalesReportPDF{renderer: renderer}
}

// RenderHTML lays the sheet out as a standalone HTML document
func RenderHTML(sheet report.Sheet) (string, error) {
	var buf bytes.Buffer
	err := salesReportTmpl.Execute(&buf, salesReportView{
		Sheet:      sheet,
		Columns:    report.Columns,
		Tagline:    report.Tagline,
		TotalLabel: report.TotalLabel,
	})
	if err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "failed to execute sales report template", err)
	}
	return buf.String(), nil
}

// Render prints the sheet to PDF
func (s *SalesReportPDF) Render(ctx context.Context, sheet report.Sheet) ([]byte, error) {
	doc, err := RenderHTML(sheet)
	if err != nil {
		return nil, err
	}
	result, err := s.renderer.Render(ctx, &RenderRequest{
		HTML:       doc,
		PaperSize:  PaperSizeA4,
		Margins:    DefaultMargins(),
		Title:      sheet.Title,
		FooterHTML: pageFooterTemplate,
	})
	if err != nil {
		return nil, err
	}
	return result.PDFData, nil
}

// Close releases the underlying renderer
func (s *SalesReportPDF) Close() error {
	return s.renderer.Close()
}
