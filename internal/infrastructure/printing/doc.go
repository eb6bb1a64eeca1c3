// Package printing renders the sales report to PDF.
//
// The report is laid out as HTML with html/template and printed by a
// headless Chrome driven over the DevTools protocol:
//
//	renderer, err := NewChromedpRenderer(&ChromedpConfig{ExecPath: "/usr/bin/chromium"})
//	if err != nil {
//	    return err
//	}
//	reports := NewSalesReportPDF(renderer)
//	pdf, err := reports.Render(ctx, sheet)
package printing
