// Package imaging reads raster images and prepares them for embedding in
// a PDF page.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/spherical/pdf-composer/internal/domain"
)

// PDF image types understood by the page writer.
const (
	TypeJPEG = "JPG"
	TypePNG  = "PNG"
)

// Image is a source image ready to be placed on a page
type Image struct {
	Path   string
	Format string // as reported by image.DecodeConfig
	Width  int
	Height int
	// Data holds JPEG bytes as read from disk, or a re-encoded 8-bit PNG
	// for every other format.
	Data []byte
	Type string
}

// Entry returns the path and natural size of the image.
func (img *Image) Entry() domain.ImageEntry {
	return domain.ImageEntry{Path: img.Path, Width: img.Width, Height: img.Height}
}

// Load reads and prepares the image at path.
func Load(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.IOError(fmt.Sprintf("failed to read image %s", path), err)
	}
	return Decode(path, data)
}

// Probe returns the natural pixel size of the image at path without
// decoding the pixel data.
func Probe(path string) (domain.ImageEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.ImageEntry{}, domain.IOError(fmt.Sprintf("failed to open image %s", path), err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return domain.ImageEntry{}, domain.ImageDecodeError(fmt.Sprintf("unsupported or corrupt image %s", path), err)
	}
	if err := checkSize(path, cfg.Width, cfg.Height); err != nil {
		return domain.ImageEntry{}, err
	}
	return domain.ImageEntry{Path: path, Width: cfg.Width, Height: cfg.Height}, nil
}

// Decode prepares already loaded image bytes. name is only used in errors.
func Decode(name string, data []byte) (*Image, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, domain.ImageDecodeError(fmt.Sprintf("unsupported or corrupt image %s", name), err)
	}
	if err := checkSize(name, cfg.Width, cfg.Height); err != nil {
		return nil, err
	}

	img := &Image{
		Path:   name,
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
	}

	if strings.EqualFold(format, "jpeg") {
		img.Data = data
		img.Type = TypeJPEG
		return img, nil
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, domain.ImageDecodeError(fmt.Sprintf("failed to decode %s image %s", format, name), err)
	}

	pngData, err := encodePNG(decoded)
	if err != nil {
		return nil, domain.ImageDecodeError(fmt.Sprintf("failed to convert %s to PNG", name), err)
	}
	img.Data = pngData
	img.Type = TypePNG
	return img, nil
}

// encodePNG flattens any colour model to 8-bit NRGBA; the encoder drops the
// alpha channel by itself when the image is opaque.
func encodePNG(src image.Image) ([]byte, error) {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func checkSize(name string, w, h int) error {
	if w <= 0 || h <= 0 {
		return domain.DegenerateImageError(fmt.Sprintf("image %s has no area (%dx%d)", name, w, h), nil)
	}
	return nil
}
