package pdf

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spherical/pdf-composer/internal/domain"
	"github.com/spherical/pdf-composer/internal/imaging"
	"github.com/spherical/pdf-composer/internal/layout"
)

func pngImage(t *testing.T, w, h int) *imaging.Image {
	t.Helper()
	src := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	img, err := imaging.Decode("", buf.Bytes())
	require.NoError(t, err)
	return img
}

// writeSizedPDF writes a PDF whose pages have the given sizes in points, so
// that pages can be told apart after copying.
func writeSizedPDF(t *testing.T, dir, name string, sizes ...float64) string {
	t.Helper()
	doc := NewImageDocument(DefaultDocumentOptions())
	img := pngImage(t, 4, 4)
	for _, s := range sizes {
		p, err := layout.SourceFit(4, 4, (s-4)/2, 1, domain.White)
		require.NoError(t, err)
		require.NoError(t, doc.AddPage(img, p))
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, doc.Write(f))
	require.NoError(t, f.Close())
	return path
}

func pageWidths(t *testing.T, path string) []float64 {
	t.Helper()
	info, err := Inspect(path)
	require.NoError(t, err)
	widths := make([]float64, 0, len(info.Pages))
	for _, p := range info.Pages {
		widths = append(widths, p.Width)
	}
	return widths
}
