package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// SourcePages names the zero-based pages to copy from one source PDF
type SourcePages struct {
	Path    string `json:"path" yaml:"path"`
	Indices []int  `json:"pages" yaml:"pages"`
}

// PageSelection is the ordered mapping from source PDF to page indices.
// Order of sources and of indices is preserved in the output.
type PageSelection []SourcePages

// Add appends indices for path. A path that is already present keeps its
// position and receives the new indices at the end of its list.
func (s *PageSelection) Add(path string, indices ...int) {
	for i := range *s {
		if (*s)[i].Path == path {
			(*s)[i].Indices = append((*s)[i].Indices, indices...)
			return
		}
	}
	*s = append(*s, SourcePages{Path: path, Indices: append([]int(nil), indices...)})
}

// Total is the number of pages the selection produces.
func (s PageSelection) Total() int {
	n := 0
	for _, src := range s {
		n += len(src.Indices)
	}
	return n
}

// Clone returns a deep copy, so that a job snapshot does not share index
// slices with the caller.
func (s PageSelection) Clone() PageSelection {
	if s == nil {
		return nil
	}
	out := make(PageSelection, len(s))
	for i, src := range s {
		out[i] = SourcePages{Path: src.Path, Indices: append([]int(nil), src.Indices...)}
	}
	return out
}

// Validate rejects selections that cannot produce a document. Indices are
// only checked for sign here; the upper bound needs the source page count.
func (s PageSelection) Validate() error {
	if len(s) == 0 {
		return ValidationError("page selection is empty", nil)
	}

	seen := make(map[string]bool, len(s))
	for _, src := range s {
		if strings.TrimSpace(src.Path) == "" {
			return ValidationError("source path cannot be empty", nil)
		}
		if seen[src.Path] {
			return ValidationError(fmt.Sprintf("source %s listed more than once", src.Path), nil)
		}
		seen[src.Path] = true

		if len(src.Indices) == 0 {
			return ValidationError(fmt.Sprintf("no pages selected from %s", src.Path), nil)
		}
		for _, idx := range src.Indices {
			if idx < 0 {
				return PageRangeError(fmt.Sprintf("page index %d of %s is negative", idx, src.Path), nil)
			}
		}
	}
	return nil
}

// MaxPageListLen bounds the number of indices one page list may expand to.
const MaxPageListLen = 100_000

// ParsePageList parses a comma separated list of zero-based page indices
// and inclusive ranges, e.g. "0,2,4-6".
func ParsePageList(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi, isRange := strings.Cut(part, "-")
		first, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, ValidationError(fmt.Sprintf("invalid page index %q", part), err)
		}
		if !isRange {
			if len(out) >= MaxPageListLen {
				return nil, ValidationError(fmt.Sprintf("page list exceeds %d pages", MaxPageListLen), nil)
			}
			out = append(out, first)
			continue
		}

		last, err := strconv.Atoi(strings.TrimSpace(hi))
		if err != nil {
			return nil, ValidationError(fmt.Sprintf("invalid page range %q", part), err)
		}
		if last < first {
			return nil, ValidationError(fmt.Sprintf("page range %q is reversed", part), nil)
		}
		if last-first >= MaxPageListLen-len(out) {
			return nil, ValidationError(fmt.Sprintf("page range %q exceeds %d pages", part, MaxPageListLen), nil)
		}
		for i := first; i <= last; i++ {
			out = append(out, i)
		}
	}

	if len(out) == 0 {
		return nil, ValidationError(fmt.Sprintf("no pages in %q", s), nil)
	}
	return out, nil
}
