package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// PageMode selects how the page size of an image page is chosen
type PageMode int

const (
	// SourceFit derives the page size from the image pixels and a
	// pixels-per-unit scale factor.
	SourceFit PageMode = iota
	// FixedPage uses one of the standard paper sizes.
	FixedPage
)

func (m PageMode) String() string {
	switch m {
	case SourceFit:
		return "source"
	case FixedPage:
		return "fixed"
	default:
		return fmt.Sprintf("PageMode(%d)", int(m))
	}
}

// PageSize is one of the standard paper sizes supported in FixedPage mode
type PageSize int

const (
	A4 PageSize = iota
	A5
	A6
	Letter
)

const mmToPoints = 72.0 / 25.4

// Dimensions returns the width and height of the paper in PDF points.
func (s PageSize) Dimensions() (width, height float64, ok bool) {
	switch s {
	case A4:
		return 210 * mmToPoints, 297 * mmToPoints, true
	case A5:
		return 148 * mmToPoints, 210 * mmToPoints, true
	case A6:
		return 105 * mmToPoints, 148 * mmToPoints, true
	case Letter:
		return 612, 792, true
	default:
		return 0, 0, false
	}
}

func (s PageSize) String() string {
	switch s {
	case A4:
		return "A4"
	case A5:
		return "A5"
	case A6:
		return "A6"
	case Letter:
		return "Letter"
	default:
		return fmt.Sprintf("PageSize(%d)", int(s))
	}
}

// ParseMode parses the user facing mode names: "source" selects SourceFit,
// a paper name ("a4", "a5", "a6", "letter") selects FixedPage with that size.
func ParseMode(s string) (PageMode, PageSize, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "source", "from-source", "sourcefit":
		return SourceFit, A4, nil
	case "a4":
		return FixedPage, A4, nil
	case "a5":
		return FixedPage, A5, nil
	case "a6":
		return FixedPage, A6, nil
	case "letter":
		return FixedPage, Letter, nil
	}
	return SourceFit, A4, ValidationError(fmt.Sprintf("unknown page mode %q", s), nil)
}

// Alignment is the anchor used to place an image on a fixed size page
type Alignment int

const (
	Center Alignment = iota
	TopCenter
	BottomCenter
	LeftTop
	LeftCenter
	LeftBottom
	RightTop
	RightCenter
	RightBottom
)

var alignmentNames = map[Alignment]string{
	Center:       "center",
	TopCenter:    "top-center",
	BottomCenter: "bottom-center",
	LeftTop:      "left-top",
	LeftCenter:   "left-center",
	LeftBottom:   "left-bottom",
	RightTop:     "right-top",
	RightCenter:  "right-center",
	RightBottom:  "right-bottom",
}

// Alignments lists all anchors in their canonical order.
var Alignments = []Alignment{
	Center, TopCenter, BottomCenter,
	LeftTop, LeftCenter, LeftBottom,
	RightTop, RightCenter, RightBottom,
}

func (a Alignment) String() string {
	if name, ok := alignmentNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Alignment(%d)", int(a))
}

// Valid reports whether a is one of the nine anchors.
func (a Alignment) Valid() bool {
	_, ok := alignmentNames[a]
	return ok
}

// ParseAlignment accepts the anchor names case-insensitively, with the two
// parts in either order ("center-top" and "top-center" are the same anchor).
func ParseAlignment(s string) (Alignment, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", "-", " ", "-").Replace(norm)
	if norm == "" || norm == "center" || norm == "center-center" {
		return Center, nil
	}
	for a, name := range alignmentNames {
		if norm == name {
			return a, nil
		}
		parts := strings.SplitN(name, "-", 2)
		if len(parts) == 2 && norm == parts[1]+"-"+parts[0] {
			return a, nil
		}
	}
	return Center, ValidationError(fmt.Sprintf("unknown alignment %q", s), nil)
}

// RGB is an 8 bit per channel colour
type RGB struct {
	R, G, B uint8
}

// White is the default page background.
var White = RGB{R: 255, G: 255, B: 255}

func (c RGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseRGB parses "#rrggbb", "rrggbb" or "r,g,b".
func ParseRGB(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		if len(parts) != 3 {
			return RGB{}, ValidationError(fmt.Sprintf("invalid colour %q", s), nil)
		}
		var ch [3]uint8
		for i, p := range parts {
			v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
			if err != nil {
				return RGB{}, ValidationError(fmt.Sprintf("invalid colour component %q", p), err)
			}
			ch[i] = uint8(v)
		}
		return RGB{R: ch[0], G: ch[1], B: ch[2]}, nil
	}

	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return RGB{}, ValidationError(fmt.Sprintf("invalid colour %q", s), nil)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, ValidationError(fmt.Sprintf("invalid colour %q", s), err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// MarshalText implements encoding.TextMarshaler.
func (c RGB) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *RGB) UnmarshalText(text []byte) error {
	v, err := ParseRGB(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// LayoutParameters is the snapshot of the image layout options taken when
// a job is created
type LayoutParameters struct {
	Mode     PageMode
	PageSize PageSize // FixedPage only
	// Margin is in pixels for SourceFit and in page units for FixedPage.
	Margin        float64
	Background    RGB
	PixelsPerUnit float64   // SourceFit only
	Alignment     Alignment // FixedPage only
}

// DefaultSourceFitLayout returns the defaults of the "from source" options.
func DefaultSourceFitLayout() LayoutParameters {
	return LayoutParameters{
		Mode:          SourceFit,
		PageSize:      A4,
		Margin:        0,
		Background:    White,
		PixelsPerUnit: 10,
		Alignment:     Center,
	}
}

// DefaultFixedPageLayout returns the defaults of the fixed paper options.
func DefaultFixedPageLayout(size PageSize) LayoutParameters {
	return LayoutParameters{
		Mode:          FixedPage,
		PageSize:      size,
		Margin:        50,
		Background:    White,
		PixelsPerUnit: 10,
		Alignment:     Center,
	}
}

// WithMode switches to mode and size. A change of mode resets the margin to
// the default of the new mode.
func (p LayoutParameters) WithMode(mode PageMode, size PageSize) LayoutParameters {
	if mode != p.Mode {
		if mode == FixedPage {
			p.Margin = DefaultFixedPageLayout(size).Margin
		} else {
			p.Margin = DefaultSourceFitLayout().Margin
		}
	}
	p.Mode = mode
	p.PageSize = size
	return p
}

// Validate checks the parameters for values the geometry cannot handle
func (p LayoutParameters) Validate() error {
	if p.Margin < 0 {
		return ValidationError(fmt.Sprintf("margin must be non-negative, got %g", p.Margin), nil)
	}

	switch p.Mode {
	case SourceFit:
		if p.PixelsPerUnit <= 0 {
			return ValidationError(fmt.Sprintf("pixels per unit must be positive, got %g", p.PixelsPerUnit), nil)
		}
	case FixedPage:
		w, h, ok := p.PageSize.Dimensions()
		if !ok {
			return ValidationError(fmt.Sprintf("unknown page size %v", p.PageSize), nil)
		}
		if !p.Alignment.Valid() {
			return ValidationError(fmt.Sprintf("unknown alignment %v", p.Alignment), nil)
		}
		if 2*p.Margin >= w || 2*p.Margin >= h {
			return ValidationError(fmt.Sprintf("margin %g leaves no drawable area on %v", p.Margin, p.PageSize), nil)
		}
	default:
		return ValidationError(fmt.Sprintf("unknown page mode %v", p.Mode), nil)
	}

	return nil
}

// ImageEntry is an image file together with its natural pixel size
type ImageEntry struct {
	Path   string
	Width  int
	Height int
}

// JobKind distinguishes the two pipelines
type JobKind string

const (
	JobImages JobKind = "images"
	JobPages  JobKind = "pages"
)

// Job is one "Create PDF" request. It is consumed by a single worker and
// discarded afterwards.
type Job struct {
	ID        string
	Kind      JobKind
	Images    []string
	Layout    LayoutParameters
	Selection PageSelection
	Output    string
}

// NewImageJob creates a job that turns images into pages.
func NewImageJob(images []string, layout LayoutParameters, output string) Job {
	return Job{
		Kind:   JobImages,
		Images: append([]string(nil), images...),
		Layout: layout,
		Output: output,
	}
}

// NewPageJob creates a job that copies pages out of existing PDFs.
func NewPageJob(selection PageSelection, output string) Job {
	return Job{
		Kind:      JobPages,
		Selection: selection.Clone(),
		Output:    output,
	}
}

// Units returns the number of pages the job will produce.
func (j Job) Units() int {
	switch j.Kind {
	case JobImages:
		return len(j.Images)
	case JobPages:
		return j.Selection.Total()
	default:
		return 0
	}
}

// Validate checks the job before any file is touched.
func (j Job) Validate() error {
	if strings.TrimSpace(j.Output) == "" {
		return ValidationError("output path cannot be empty", nil)
	}

	switch j.Kind {
	case JobImages:
		if len(j.Images) == 0 {
			return ValidationError("no images to compose", nil)
		}
		return j.Layout.Validate()
	case JobPages:
		return j.Selection.Validate()
	default:
		return ValidationError(fmt.Sprintf("unknown job kind %q", j.Kind), nil)
	}
}

// NormalizeOutputPath appends the ".pdf" extension unless the path already
// ends with it (in any letter case).
func NormalizeOutputPath(path string) string {
	if strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return path
	}
	return path + ".pdf"
}
