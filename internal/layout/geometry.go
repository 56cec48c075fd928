// Package layout computes where an image goes on its page.
//
// All coordinates are PDF user space: origin at the bottom-left corner of
// the page, y growing upwards, one unit per point (FixedPage) or per
// pixels-per-unit block of pixels (SourceFit).
package layout

import (
	"fmt"

	"github.com/spherical/pdf-composer/internal/domain"
)

// Sizes are written to the file with two decimals. Anything smaller would
// reach the document as zero.
const (
	MinPageSize  = 1.0
	MinImageSize = 0.01
)

// Rect is an axis aligned rectangle anchored at its bottom-left corner
type Rect struct {
	X, Y float64
	W, H float64
}

// Placement is the geometry of one image page
type Placement struct {
	PageW, PageH float64
	Image        Rect
	// FillBackground is set when the page has to be painted with
	// Background before the image is drawn.
	FillBackground bool
	Background     domain.RGB
}

// Place dispatches to SourceFit or FixedPage according to p.Mode.
func Place(width, height int, p domain.LayoutParameters) (Placement, error) {
	if err := checkDimensions(width, height); err != nil {
		return Placement{}, err
	}

	switch p.Mode {
	case domain.SourceFit:
		return SourceFit(width, height, p.Margin, p.PixelsPerUnit, p.Background)
	case domain.FixedPage:
		return FixedPage(width, height, p.PageSize, p.Margin, p.Alignment, p.Background)
	default:
		return Placement{}, domain.ValidationError(fmt.Sprintf("unknown page mode %v", p.Mode), nil)
	}
}

// SourceFit sizes the page after the image: every scale pixels become one
// unit, and margin pixels of background surround the image on all sides.
func SourceFit(width, height int, margin, scale float64, bg domain.RGB) (Placement, error) {
	if err := checkDimensions(width, height); err != nil {
		return Placement{}, err
	}
	if scale <= 0 {
		return Placement{}, domain.ValidationError(fmt.Sprintf("pixels per unit must be positive, got %g", scale), nil)
	}
	if margin < 0 {
		return Placement{}, domain.ValidationError(fmt.Sprintf("margin must be non-negative, got %g", margin), nil)
	}

	w, h := float64(width), float64(height)
	p := Placement{
		PageW: (w + 2*margin) / scale,
		PageH: (h + 2*margin) / scale,
		Image: Rect{
			X: margin / scale,
			Y: margin / scale,
			W: w / scale,
			H: h / scale,
		},
		FillBackground: margin > 0,
		Background:     bg,
	}
	if p.PageW < MinPageSize || p.PageH < MinPageSize {
		return Placement{}, domain.DegenerateImageError(fmt.Sprintf(
			"%dx%d image at %g pixels per unit gives a %gx%g page, below %g", width, height, scale, p.PageW, p.PageH, MinPageSize), nil)
	}
	if err := checkPrintable(width, height, p.Image); err != nil {
		return Placement{}, err
	}
	return p, nil
}

// FixedPage scales the image to fit the margin-reduced area of a standard
// paper size, preserving its aspect ratio, and positions it at the anchor.
func FixedPage(width, height int, size domain.PageSize, margin float64, align domain.Alignment, bg domain.RGB) (Placement, error) {
	if err := checkDimensions(width, height); err != nil {
		return Placement{}, err
	}

	pageW, pageH, ok := size.Dimensions()
	if !ok {
		return Placement{}, domain.ValidationError(fmt.Sprintf("unknown page size %v", size), nil)
	}
	if margin < 0 {
		return Placement{}, domain.ValidationError(fmt.Sprintf("margin must be non-negative, got %g", margin), nil)
	}

	availW := pageW - 2*margin
	availH := pageH - 2*margin
	if availW <= 0 || availH <= 0 {
		return Placement{}, domain.ValidationError(fmt.Sprintf("margin %g leaves no drawable area on %v", margin, size), nil)
	}

	imgW, imgH := fit(float64(width), float64(height), availW, availH)
	x, y, err := anchor(align, pageW, pageH, imgW, imgH, margin)
	if err != nil {
		return Placement{}, err
	}

	if err := checkPrintable(width, height, Rect{W: imgW, H: imgH}); err != nil {
		return Placement{}, err
	}

	return Placement{
		PageW:          pageW,
		PageH:          pageH,
		Image:          Rect{X: x, Y: y, W: imgW, H: imgH},
		FillBackground: margin > 0,
		Background:     bg,
	}, nil
}

// fit returns the largest size with the aspect ratio of w x h that fits in
// availW x availH. Exactly one side touches its bound.
func fit(w, h, availW, availH float64) (float64, float64) {
	r := h / w
	// compared against the drawable area, not the page, so that the
	// result stays inside the margins on both axes
	if r > availH/availW {
		imgH := availH
		return imgH / r, imgH
	}
	imgW := availW
	return imgW, imgW * r
}

func anchor(a domain.Alignment, pageW, pageH, imgW, imgH, m float64) (x, y float64, err error) {
	left := m
	hcenter := (pageW - imgW) / 2
	right := pageW - imgW - m

	bottom := m
	vcenter := (pageH - imgH) / 2
	top := pageH - imgH - m

	switch a {
	case domain.Center:
		return hcenter, vcenter, nil
	case domain.TopCenter:
		return hcenter, top, nil
	case domain.BottomCenter:
		return hcenter, bottom, nil
	case domain.LeftTop:
		return left, top, nil
	case domain.LeftCenter:
		return left, vcenter, nil
	case domain.LeftBottom:
		return left, bottom, nil
	case domain.RightTop:
		return right, top, nil
	case domain.RightCenter:
		return right, vcenter, nil
	case domain.RightBottom:
		return right, bottom, nil
	}
	return 0, 0, domain.ValidationError(fmt.Sprintf("unknown alignment %v", a), nil)
}

func checkDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return domain.DegenerateImageError(fmt.Sprintf("image has no area (%dx%d)", width, height), nil)
	}
	return nil
}

func checkPrintable(width, height int, r Rect) error {
	if r.W < MinImageSize || r.H < MinImageSize {
		return domain.DegenerateImageError(fmt.Sprintf(
			"%dx%d image would be drawn at %gx%g, below %g", width, height, r.W, r.H, MinImageSize), nil)
	}
	return nil
}
