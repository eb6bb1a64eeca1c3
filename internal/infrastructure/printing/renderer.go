package printing

import (
	"bytes"
	"context"
	"time"
)

// PaperSize names a supported paper format
type PaperSize string

const (
	PaperSizeA4     PaperSize = "A4"
	PaperSizeA5     PaperSize = "A5"
	PaperSizeLetter PaperSize = "LETTER"

	// Thermal roll paper; the page is as tall as the content
	PaperSizeReceipt58MM PaperSize = "RECEIPT_58MM"
	PaperSizeReceipt80MM PaperSize = "RECEIPT_80MM"
)

// receiptPaperHeight is the page height used for roll paper so a receipt
// never breaks across pages
const receiptPaperHeight = 3000

// IsValid reports whether the paper size is supported
func (p PaperSize) IsValid() bool {
	_, _, ok := p.dimensions()
	return ok
}

// IsReceipt reports whether p is thermal roll paper
func (p PaperSize) IsReceipt() bool {
	return p == PaperSizeReceipt58MM || p == PaperSizeReceipt80MM
}

// Dimensions returns width and height in millimeters. Roll paper has no
// fixed height and reports zero.
func (p PaperSize) Dimensions() (width, height float64) {
	width, height, _ = p.dimensions()
	return width, height
}

func (p PaperSize) dimensions() (float64, float64, bool) {
	switch p {
	case PaperSizeA4:
		return 210, 297, true
	case PaperSizeA5:
		return 148, 210, true
	case PaperSizeLetter:
		return 215.9, 279.4, true
	case PaperSizeReceipt58MM:
		return 58, 0, true
	case PaperSizeReceipt80MM:
		return 80, 0, true
	}
	return 0, 0, false
}

// Margins in millimeters
type Margins struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// DefaultMargins returns 15mm on every side
func DefaultMargins() Margins {
	return Margins{Top: 15, Right: 15, Bottom: 15, Left: 15}
}

// ReceiptMargins returns the narrow margins used on roll paper
func ReceiptMargins() Margins {
	return Margins{Top: 2, Right: 2, Bottom: 2, Left: 2}
}

// RenderRequest contains the parameters for rendering HTML to PDF
type RenderRequest struct {
	// HTML content to render
	HTML string
	// PaperSize defines the output paper dimensions
	PaperSize PaperSize
	// Landscape prints across the long edge
	Landscape bool
	// Margins in millimeters
	Margins Margins
	// Title for the PDF document metadata
	Title string
	// Header HTML content (optional)
	HeaderHTML string
	// Footer HTML content (optional)
	FooterHTML string
	// Timeout overrides the default rendering timeout
	Timeout time.Duration
}

// RenderResult contains the output from PDF rendering
type RenderResult struct {
	// PDFData is the raw PDF file content
	PDFData []byte
	// PageCount is the number of pages in the PDF
	PageCount int
	// RenderDuration is how long the rendering took
	RenderDuration time.Duration
}

// PDFRenderer defines the interface for rendering HTML to PDF
type PDFRenderer interface {
	// Render converts HTML content to a PDF document
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	// Close releases any resources held by the renderer
	Close() error
}

// RenderError represents an error during PDF rendering
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout    = "RENDER_TIMEOUT"
	ErrCodeRenderFailed     = "RENDER_FAILED"
	ErrCodeInvalidHTML      = "INVALID_HTML"
	ErrCodeInvalidPaperSize = "INVALID_PAPER_SIZE"
	ErrCodeTemplateFailed   = "TEMPLATE_FAILED"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// estimatePageCount counts page objects in the PDF
func estimatePageCount(pdfData []byte) int {
	count := bytes.Count(pdfData, []byte("/Type /Page"))
	// "/Type /Pages" also matches the prefix above
	count -= bytes.Count(pdfData, []byte("/Type /Pages"))
	return max(count, 1)
}
