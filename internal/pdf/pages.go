package pdf

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/spherical/pdf-composer/internal/domain"
)

var disableConfigDir sync.Once

// pdfcpu otherwise creates a config directory under the user's home on
// first use.
func pdfcpuConfig() *model.Configuration {
	disableConfigDir.Do(api.DisableConfigDir)
	return model.NewDefaultConfiguration()
}

// Source is an opened source PDF
type Source struct {
	Path      string
	PageCount int
	ctx       *model.Context
}

// OpenSource parses the PDF at path. Unreadable or corrupt files are
// reported as source errors.
func OpenSource(path string) (*Source, error) {
	pdfcpuConfig()

	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, domain.SourceError(fmt.Sprintf("failed to read PDF %s", path), err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, domain.SourceError(fmt.Sprintf("failed to count pages of %s", path), err)
	}

	return &Source{Path: path, PageCount: ctx.PageCount, ctx: ctx}, nil
}

// CheckIndex verifies that the zero-based page index exists in the source.
func (s *Source) CheckIndex(idx int) error {
	if idx < 0 || idx >= s.PageCount {
		return domain.PageRangeError(
			fmt.Sprintf("page index %d out of range for %s (%d pages)", idx, s.Path, s.PageCount), nil)
	}
	return nil
}

// AllPages returns the zero-based indices of every page of the PDF at path.
func AllPages(path string) ([]int, error) {
	src, err := OpenSource(path)
	if err != nil {
		return nil, err
	}
	indices := make([]int, src.PageCount)
	for i := range indices {
		indices[i] = i
	}
	return indices, nil
}

// PageAssembler copies pages verbatim out of source documents and
// concatenates them. Each appended run is kept as a part file in a private
// work directory until Write merges them.
type PageAssembler struct {
	workDir string
	parts   []string
	pages   int
}

// NewPageAssembler creates the work directory.
func NewPageAssembler() (*PageAssembler, error) {
	dir, err := os.MkdirTemp("", "pdf-composer-pages-*")
	if err != nil {
		return nil, domain.IOError("failed to create work directory", err)
	}
	return &PageAssembler{workDir: dir}, nil
}

// Append copies the zero-based pages of src, in the given order, to the end
// of the output. Repeated indices produce repeated pages.
func (a *PageAssembler) Append(src *Source, indices []int) error {
	if len(indices) == 0 {
		return nil
	}

	pageNrs := make([]int, len(indices))
	for i, idx := range indices {
		if err := src.CheckIndex(idx); err != nil {
			return err
		}
		pageNrs[i] = idx + 1
	}

	extracted, err := pdfcpu.ExtractPages(src.ctx, pageNrs, false)
	if err != nil {
		return domain.SourceError(fmt.Sprintf("failed to copy pages from %s", src.Path), err)
	}

	part := filepath.Join(a.workDir, fmt.Sprintf("part-%04d.pdf", len(a.parts)+1))
	f, err := os.Create(part)
	if err != nil {
		return domain.IOError("failed to create part file", err)
	}
	if err := api.WriteContext(extracted, f); err != nil {
		f.Close()
		return domain.OutputError(fmt.Sprintf("failed to write pages of %s", src.Path), err)
	}
	if err := f.Close(); err != nil {
		return domain.IOError("failed to close part file", err)
	}

	a.parts = append(a.parts, part)
	a.pages += len(indices)
	return nil
}

// Pages returns the number of pages appended so far.
func (a *PageAssembler) Pages() int { return a.pages }

// Write stores the assembled document at dest.
func (a *PageAssembler) Write(dest string) error {
	switch len(a.parts) {
	case 0:
		return domain.OutputError("document has no pages", nil)
	case 1:
		return copyFile(a.parts[0], dest)
	}

	// part files are an internal detail, keep them out of the outline
	conf := pdfcpuConfig()
	conf.CreateBookmarks = false
	if err := api.MergeCreateFile(a.parts, dest, false, conf); err != nil {
		return domain.OutputError("failed to merge pages", err)
	}
	return nil
}

// Cleanup removes the work directory.
func (a *PageAssembler) Cleanup() error {
	if a.workDir == "" {
		return nil
	}
	err := os.RemoveAll(a.workDir)
	a.workDir = ""
	a.parts = nil
	return err
}

func copyFile(from, to string) error {
	in, err := os.Open(from)
	if err != nil {
		return domain.IOError(fmt.Sprintf("failed to open %s", from), err)
	}
	defer in.Close()

	out, err := os.OpenFile(to, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return domain.OutputError(fmt.Sprintf("failed to create %s", to), err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return domain.OutputError(fmt.Sprintf("failed to write %s", to), err)
	}
	if err := out.Close(); err != nil {
		return domain.OutputError(fmt.Sprintf("failed to write %s", to), err)
	}
	return nil
}

// PageInfo describes one page of a PDF
type PageInfo struct {
	Index    int     `json:"index"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation int     `json:"rotation,omitempty"`
}

// DocumentInfo summarizes a PDF for the inspect command
type DocumentInfo struct {
	Path      string     `json:"path"`
	PageCount int        `json:"page_count"`
	Pages     []PageInfo `json:"pages"`
}

// Inspect reports the page count and the media box size of every page.
func Inspect(path string) (*DocumentInfo, error) {
	src, err := OpenSource(path)
	if err != nil {
		return nil, err
	}

	info := &DocumentInfo{Path: path, PageCount: src.PageCount}
	for nr := 1; nr <= src.PageCount; nr++ {
		_, _, inh, err := src.ctx.PageDict(nr, false)
		if err != nil {
			return nil, domain.SourceError(fmt.Sprintf("failed to read page %d of %s", nr-1, path), err)
		}

		page := PageInfo{Index: nr - 1}
		if inh != nil {
			box := inh.CropBox
			if box == nil {
				box = inh.MediaBox
			}
			if box != nil {
				page.Width = box.Width()
				page.Height = box.Height()
			}
			page.Rotation = inh.Rotate
		}
		info.Pages = append(info.Pages, page)
	}

	return info, nil
}
