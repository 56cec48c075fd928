package commands

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical/pdf-composer/internal/domain"
	"github.com/spherical/pdf-composer/internal/pdf"
)

func TestParseSourceArg(t *testing.T) {
	tests := []struct {
		arg     string
		path    string
		indices []int
	}{
		{"a.pdf", "a.pdf", nil},
		{"a.pdf:", "a.pdf", nil},
		{"a.pdf:0", "a.pdf", []int{0}},
		{"dir/a.pdf:0,2-4", "dir/a.pdf", []int{0, 2, 3, 4}},
		{`C:\docs\a.pdf`, `C:\docs\a.pdf`, nil},
		{`C:\docs\a.pdf:1`, `C:\docs\a.pdf`, []int{1}},
		{"weird:name/a.pdf", "weird:name/a.pdf", nil},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			path, indices, err := parseSourceArg(tt.arg)
			require.NoError(t, err)
			assert.Equal(t, tt.path, path)
			assert.Equal(t, tt.indices, indices)
		})
	}

	_, _, err := parseSourceArg("a.pdf:x")
	assert.True(t, domain.IsType(err, domain.ErrorTypeValidation), "got %v", err)
}

func TestPreviewPath(t *testing.T) {
	assert.Equal(t, "report-p0.png", previewPath("/tmp/report.pdf", 0))
	assert.Equal(t, "scan-p12.png", previewPath("scan.PDF", 12))
}

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return Execute("test")
}

func TestCommands_ImagesThenPages(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("PDF_COMPOSER_OUTPUT", "")
	dir := t.TempDir()

	album := filepath.Join(dir, "album.pdf")
	require.NoError(t, execute(t, "images", "--no-color",
		writePNG(t, dir, "a.png", 30, 10),
		writePNG(t, dir, "b.png", 10, 30),
		"--mode", "a5", "--align", "left-top", "--background", "0,0,0",
		"-o", album,
	))

	info, err := pdf.Inspect(album)
	require.NoError(t, err)
	w, h, _ := domain.A5.Dimensions()
	require.Equal(t, 2, info.PageCount)
	assert.InDelta(t, w, info.Pages[0].Width, 0.01)
	assert.InDelta(t, h, info.Pages[0].Height, 0.01)

	picked := filepath.Join(dir, "picked")
	require.NoError(t, execute(t, "pages", album+":1", album+":0", "-o", picked))

	info, err = pdf.Inspect(picked + ".pdf")
	require.NoError(t, err)
	assert.Equal(t, 2, info.PageCount)

	require.NoError(t, execute(t, "inspect", picked+".pdf"))
	require.NoError(t, execute(t, "inspect", writePNG(t, dir, "c.png", 40, 20), album))
}

func TestCommands_Errors(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	dir := t.TempDir()
	img := writePNG(t, dir, "a.png", 10, 10)

	err := execute(t, "images", img, "--mode", "a3", "-o", filepath.Join(dir, "x.pdf"))
	assert.True(t, domain.IsType(err, domain.ErrorTypeValidation), "got %v", err)

	err = execute(t, "pages", filepath.Join(dir, "missing.pdf"), "-o", filepath.Join(dir, "y.pdf"))
	assert.True(t, domain.IsType(err, domain.ErrorTypeSource), "got %v", err)

	err = execute(t, "inspect", filepath.Join(dir, "missing.png"))
	assert.True(t, domain.IsType(err, domain.ErrorTypeIO), "got %v", err)

	assert.NoFileExists(t, filepath.Join(dir, "x.pdf"))
	assert.NoFileExists(t, filepath.Join(dir, "y.pdf"))
}
