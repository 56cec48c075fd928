package pdf

import (
	"context"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"

	"github.com/spherical/pdf-composer/internal/domain"
)

// DefaultPreviewDPI is the resolution used when none is configured.
const DefaultPreviewDPI = 72.0

// Previewer renders single PDF pages to PNG using go-fitz
type Previewer struct {
	dpi float64
}

// PreviewResult describes a rendered page
type PreviewResult struct {
	Source     string `json:"source"`
	Index      int    `json:"index"`
	PageCount  int    `json:"page_count"`
	OutputPath string `json:"output_path"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

// NewPreviewer creates a previewer rendering at dpi dots per inch.
func NewPreviewer(dpi float64) *Previewer {
	if dpi <= 0 {
		dpi = DefaultPreviewDPI
	}
	return &Previewer{dpi: dpi}
}

// Render writes page index (zero-based) of pdfPath as a PNG file to dest.
func (p *Previewer) Render(ctx context.Context, pdfPath string, index int, dest string) (*PreviewResult, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, domain.SourceError(fmt.Sprintf("failed to open PDF %s", pdfPath), err)
	}
	defer doc.Close()

	count := doc.NumPage()
	if index < 0 || index >= count {
		return nil, domain.PageRangeError(
			fmt.Sprintf("page index %d out of range for %s (%d pages)", index, pdfPath, count), nil)
	}

	select {
	case <-ctx.Done():
		return nil, domain.CancelledError("preview cancelled", ctx.Err())
	default:
	}

	img, err := doc.ImageDPI(index, p.dpi)
	if err != nil {
		return nil, domain.SourceError(fmt.Sprintf("failed to render page %d", index), err)
	}

	staging, err := Stage(dest)
	if err != nil {
		return nil, err
	}
	defer staging.Abort()

	f, err := staging.Create()
	if err != nil {
		return nil, err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return nil, domain.OutputError("failed to encode preview", err)
	}
	if err := f.Close(); err != nil {
		return nil, domain.OutputError("failed to write preview", err)
	}
	if err := staging.Commit(); err != nil {
		return nil, err
	}

	b := img.Bounds()
	return &PreviewResult{
		Source:     pdfPath,
		Index:      index,
		PageCount:  count,
		OutputPath: dest,
		Width:      b.Dx(),
		Height:     b.Dy(),
	}, nil
}
