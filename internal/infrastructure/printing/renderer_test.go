package printing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaperSize(t *testing.T) {
	assert.True(t, PaperSizeA4.IsValid())
	assert.False(t, PaperSize("A0").IsValid())

	w, h := PaperSizeLetter.Dimensions()
	assert.InDelta(t, 215.9, w, 0.01)
	assert.InDelta(t, 279.4, h, 0.01)

	assert.True(t, PaperSizeReceipt58MM.IsValid())
	assert.True(t, PaperSizeReceipt80MM.IsReceipt())
	assert.False(t, PaperSizeA4.IsReceipt())
	w, h = PaperSizeReceipt80MM.Dimensions()
	assert.Equal(t, 80.0, w)
	assert.Zero(t, h)
}

func TestRenderError(t *testing.T) {
	cause := errors.New("chrome crashed")
	err := NewRenderError(ErrCodeRenderFailed, "render failed", cause)

	assert.Equal(t, "render failed: chrome crashed", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "render failed", NewRenderError(ErrCodeRenderFailed, "render failed", nil).Error())
}

func TestEstimatePageCount(t *testing.T) {
	pdf := []byte("<< /Type /Pages /Kids [...] >> << /Type /Page >> << /Type /Page >>")
	assert.Equal(t, 2, estimatePageCount(pdf))
	assert.Equal(t, 1, estimatePageCount([]byte("garbage")))
}

type recordingRenderer struct {
	req *RenderRequest
	err error
}

func (r *recordingRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	r.req = req
	if r.err != nil {
		return nil, r.err
	}
	return &RenderResult{PDFData: []byte("%PDF-1.4"), PageCount: 1}, nil
}

func (r *recordingRenderer) Close() error { return nil }

func TestRenderer_InterfaceSatisfied(t *testing.T) {
	var rr PDFRenderer = &recordingRenderer{}
	res, err := rr.Render(context.Background(), &RenderRequest{HTML: "<p/>"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.PageCount)
}
