package pdf

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"codeberg.org/go-pdf/fpdf"

	"github.com/spherical/pdf-composer/internal/domain"
	"github.com/spherical/pdf-composer/internal/imaging"
	"github.com/spherical/pdf-composer/internal/layout"
)

// DocumentOptions controls the metadata of generated documents
type DocumentOptions struct {
	Creator  string
	Producer string
	Compress bool
	// CreatedAt pins the document dates; zero means the time of writing.
	CreatedAt time.Time
}

// DefaultDocumentOptions returns compressed output tagged with the
// application name.
func DefaultDocumentOptions() DocumentOptions {
	return DocumentOptions{
		Creator:  "pdf-composer",
		Producer: "pdf-composer",
		Compress: true,
	}
}

// ImageDocument builds a PDF with one image per page. Units are points,
// coordinates are taken in PDF user space (origin bottom-left).
type ImageDocument struct {
	doc   *fpdf.Fpdf
	pages int
}

// NewImageDocument starts an empty document.
func NewImageDocument(opts DocumentOptions) *ImageDocument {
	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetCompression(opts.Compress)
	doc.SetAutoPageBreak(false, 0)
	doc.SetMargins(0, 0, 0)
	doc.SetCatalogSort(true)
	if opts.Creator != "" {
		doc.SetCreator(opts.Creator, true)
	}
	if opts.Producer != "" {
		doc.SetProducer(opts.Producer, true)
	}
	if !opts.CreatedAt.IsZero() {
		doc.SetCreationDate(opts.CreatedAt)
		doc.SetModificationDate(opts.CreatedAt)
	}

	return &ImageDocument{doc: doc}
}

// AddPage appends a page of the placement's size, paints the background if
// requested and draws img into the placement rectangle.
func (d *ImageDocument) AddPage(img *imaging.Image, p layout.Placement) error {
	d.doc.AddPageFormat("P", fpdf.SizeType{Wd: p.PageW, Ht: p.PageH})

	if p.FillBackground {
		d.doc.SetFillColor(int(p.Background.R), int(p.Background.G), int(p.Background.B))
		d.doc.Rect(0, 0, p.PageW, p.PageH, "F")
	}

	// the same file used twice is embedded once
	name := img.Path
	if name == "" {
		name = fmt.Sprintf("page-%d", d.pages+1)
	}
	opts := fpdf.ImageOptions{ImageType: img.Type, ReadDpi: false}
	d.doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.Data))

	// fpdf measures y from the top edge
	top := p.PageH - p.Image.Y - p.Image.H
	d.doc.ImageOptions(name, p.Image.X, top, p.Image.W, p.Image.H, false, opts, 0, "")

	if d.doc.Err() {
		return domain.ImageDecodeError(fmt.Sprintf("cannot embed image %s", img.Path), d.doc.Error())
	}
	d.pages++
	return nil
}

// Pages returns the number of pages added so far.
func (d *ImageDocument) Pages() int { return d.pages }

// Write serializes the document. The document cannot be modified afterwards.
func (d *ImageDocument) Write(w io.Writer) error {
	if d.pages == 0 {
		return domain.OutputError("document has no pages", nil)
	}
	if err := d.doc.Output(w); err != nil {
		return domain.OutputError("failed to serialize PDF", err)
	}
	return nil
}
