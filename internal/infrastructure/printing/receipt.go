package printing

import (
	"bytes"
	"context"
	"html/template"

	"github.com/tehraja/backend/internal/domain/report"
)

const receiptTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.ShopName}} {{.OrderRef}}</title>
<style>
  body { font-family: "Courier New", monospace; font-size: 10px; color: #000; margin: 0; }
  .head { text-align: center; margin-bottom: 8px; }
  .head h1 { font-size: 16px; letter-spacing: 3px; margin: 0 0 4px; padding-bottom: 4px; border-bottom: 2px solid #000; }
  .head p { margin: 1px 0; color: #444; }
  .row { display: flex; justify-content: space-between; }
  .customer { border-bottom: 1px dashed #999; padding-bottom: 6px; margin-bottom: 6px; }
  .item { margin-bottom: 4px; }
  .note { font-style: italic; color: #555; padding-left: 14px; }
  .total { border-top: 2px solid #000; padding-top: 6px; margin-top: 6px; font-size: 13px; font-weight: bold; }
  .foot { text-align: center; color: #666; margin-top: 12px; }
  .foot p { margin: 1px 0; }
</style>
</head>
<body>
<div class="head">
  <h1>{{.ShopName}}</h1>
  <p>{{.Tagline}}</p>
  <p>{{.IssuedAt}}</p>
  <p>Order ID: {{.OrderRef}}</p>
</div>
<div class="customer">
  <div class="row"><span>Pelanggan</span><b>{{.Customer}}</b></div>
  <div class="row"><span>Meja</span><span>{{.Table}}</span></div>
</div>
{{- range .Lines}}
<div class="item">
  <div class="row"><span><b>{{.Quantity}}x</b> {{.Name}}</span><span>{{.Subtotal}}</span></div>
  {{- if .Note}}
  <div class="note">"{{.Note}}"</div>
  {{- end}}
</div>
{{- end}}
<div class="row total"><span>TOTAL</span><span>{{.Total}}</span></div>
<div class="foot">
  {{- range .Footer}}
  <p>{{.}}</p>
  {{- end}}
</div>
</body>
</html>`

var receiptTmpl = template.Must(template.New("receipt").Parse(receiptTemplate))

// ReceiptPDF prints order receipts on 80mm roll paper
type ReceiptPDF struct {
	renderer PDFRenderer
}

// NewReceiptPDF creates a receipt printer on top of renderer
func NewReceiptPDF(renderer PDFRenderer) *ReceiptPDF {
	return &ReceiptPDF{renderer: renderer}
}

// RenderReceiptHTML lays the receipt out as a standalone HTML document
func RenderReceiptHTML(r report.Receipt) (string, error) {
	var buf bytes.Buffer
	if err := receiptTmpl.Execute(&buf, r); err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "failed to execute receipt template", err)
	}
	return buf.String(), nil
}

// Render prints the receipt to PDF
func (p *ReceiptPDF) Render(ctx context.Context, r report.Receipt) ([]byte, error) {
	doc, err := RenderReceiptHTML(r)
	if err != nil {
		return nil, err
	}
	result, err := p.renderer.Render(ctx, &RenderRequest{
		HTML:      doc,
		PaperSize: PaperSizeReceipt80MM,
		Margins:   ReceiptMargins(),
		Title:     r.ShopName + " " + r.OrderRef,
	})
	if err != nil {
		return nil, err
	}
	return result.PDFData, nil
}
