package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/spherical/pdf-composer/internal/domain"
)

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 7), G: uint8(y * 13), B: 90, A: 255})
		}
	}
	return img
}

func writeFixture(t *testing.T, name string, encode func(*bytes.Buffer) error) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, encode(&buf))
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestLoad_Formats(t *testing.T) {
	src := testImage(30, 20)

	tests := []struct {
		name     string
		file     string
		encode   func(*bytes.Buffer) error
		format   string
		wantType string
	}{
		{"jpeg", "a.jpg", func(b *bytes.Buffer) error { return jpeg.Encode(b, src, nil) }, "jpeg", TypeJPEG},
		{"png", "a.png", func(b *bytes.Buffer) error { return png.Encode(b, src) }, "png", TypePNG},
		{"gif", "a.gif", func(b *bytes.Buffer) error { return gif.Encode(b, src, nil) }, "gif", TypePNG},
		{"bmp", "a.bmp", func(b *bytes.Buffer) error { return bmp.Encode(b, src) }, "bmp", TypePNG},
		{"tiff", "a.tif", func(b *bytes.Buffer) error { return tiff.Encode(b, src, nil) }, "tiff", TypePNG},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFixture(t, tt.file, tt.encode)

			img, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, tt.format, img.Format)
			assert.Equal(t, tt.wantType, img.Type)
			assert.Equal(t, 30, img.Width)
			assert.Equal(t, 20, img.Height)
			assert.Equal(t, domain.ImageEntry{Path: path, Width: 30, Height: 20}, img.Entry())

			// whatever we hand to the page writer must decode as its declared type
			cfg, format, err := image.DecodeConfig(bytes.NewReader(img.Data))
			require.NoError(t, err)
			assert.Equal(t, 30, cfg.Width)
			if tt.wantType == TypeJPEG {
				assert.Equal(t, "jpeg", format)
			} else {
				assert.Equal(t, "png", format)
			}
		})
	}
}

func TestLoad_JPEGPassthrough(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(8, 8), &jpeg.Options{Quality: 50}))

	img, err := Decode("inline.jpg", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, buf.Bytes(), img.Data)
}

func TestLoad_16BitPNGIsFlattened(t *testing.T) {
	src := image.NewRGBA64(image.Rect(0, 0, 4, 3))
	src.Set(1, 1, color.RGBA64{R: 0xffff, A: 0xffff})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	img, err := Decode("deep.png", buf.Bytes())
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(img.Data))
	require.NoError(t, err)
	switch decoded.(type) {
	case *image.RGBA64, *image.NRGBA64:
		t.Fatalf("expected 8-bit output, got %T", decoded)
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.True(t, domain.IsType(err, domain.ErrorTypeIO), "got %v", err)

	garbage := filepath.Join(t.TempDir(), "garbage.png")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0o644))
	_, err = Load(garbage)
	assert.True(t, domain.IsType(err, domain.ErrorTypeImageDecode), "got %v", err)

	_, err = Probe(garbage)
	assert.True(t, domain.IsType(err, domain.ErrorTypeImageDecode), "got %v", err)
}

func TestProbe(t *testing.T) {
	path := writeFixture(t, "p.png", func(b *bytes.Buffer) error { return png.Encode(b, testImage(100, 200)) })

	entry, err := Probe(path)
	require.NoError(t, err)
	assert.Equal(t, 100, entry.Width)
	assert.Equal(t, 200, entry.Height)
}

func TestDecode_ZeroSizedGIF(t *testing.T) {
	// header plus a logical screen descriptor of 0x0
	data := append([]byte("GIF89a"), 0, 0, 0, 0, 0, 0, 0)

	_, err := Decode("empty.gif", data)
	assert.True(t, domain.IsType(err, domain.ErrorTypeDegenerateImage), "got %v", err)
}

func TestCheckSize(t *testing.T) {
	assert.NoError(t, checkSize("x", 1, 1))
	assert.True(t, domain.IsType(checkSize("x", 0, 10), domain.ErrorTypeDegenerateImage))
	assert.True(t, domain.IsType(checkSize("x", 10, 0), domain.ErrorTypeDegenerateImage))
}
