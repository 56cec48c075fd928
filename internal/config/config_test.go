package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical/pdf-composer/internal/domain"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"CONFIG_PATH", "LOG_LEVEL", "LOG_FORMAT", "SERVER_HOST", "SERVER_PORT", "PDF_COMPOSER_OUTPUT"} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, "127.0.0.1:8086", cfg.Address())

	params, err := cfg.Layout.Parameters()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSourceFitLayout(), params)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
log:
  level: debug
  format: json
server:
  port: 9000
  read_timeout: 5s
layout:
  mode: a4
  margin: 36
  background: "#000000"
  alignment: left-top
output:
  path: out/album.pdf
pdf:
  creator: tester
  compress: false
preview:
  dpi: 150
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout, "unset keys keep defaults")
	assert.Equal(t, filepath.Join(filepath.Dir(path), "out", "album.pdf"), cfg.Output.Path)
	assert.Equal(t, "tester", cfg.PDF.Creator)
	assert.False(t, cfg.PDF.Compress)
	assert.Equal(t, 150.0, cfg.Preview.DPI)

	params, err := cfg.Layout.Parameters()
	require.NoError(t, err)
	assert.Equal(t, domain.FixedPage, params.Mode)
	assert.Equal(t, domain.A4, params.PageSize)
	assert.Equal(t, 36.0, params.Margin)
	assert.Equal(t, domain.RGB{}, params.Background)
	assert.Equal(t, domain.LeftTop, params.Alignment)
}

func TestLoad_ConfigPathEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_PATH", writeConfig(t, "server:\n  port: 7000\n"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "selection.pdf", cfg.Output.Path, "default output stays relative to the working directory")
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("SERVER_HOST", "0.0.0.0")
	t.Setenv("SERVER_PORT", "8123")
	t.Setenv("PDF_COMPOSER_OUTPUT", "/tmp/x.pdf")

	cfg, err := Load(writeConfig(t, "server:\n  port: 7000\n"))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "0.0.0.0:8123", cfg.Address())
	assert.Equal(t, "/tmp/x.pdf", cfg.Output.Path)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"bad yaml", "server: [\n"},
		{"bad port", "server:\n  port: 70000\n"},
		{"bad log format", "log:\n  format: xml\n"},
		{"bad mode", "layout:\n  mode: a3\n"},
		{"bad alignment", "layout:\n  alignment: middle\n"},
		{"bad background", "layout:\n  background: red\n"},
		{"negative margin", "layout:\n  margin: -1\n"},
		{"zero dpi", "preview:\n  dpi: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.True(t, domain.IsType(err, domain.ErrorTypeConfig), "got %v", err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, domain.IsType(err, domain.ErrorTypeConfig))
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("SERVER_PORT=9191\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("SERVER_PORT") })
	require.NoError(t, os.Unsetenv("SERVER_PORT"))

	require.NoError(t, LoadDotEnv(envFile, filepath.Join(dir, "missing.env")))
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Server.Port)

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "none.env")))
}

func TestResolveRelativePath(t *testing.T) {
	assert.Equal(t, filepath.Join("/etc/app", "out.pdf"), ResolveRelativePath("/etc/app/config.yaml", "out.pdf"))
	assert.Equal(t, "/abs/out.pdf", ResolveRelativePath("/etc/app/config.yaml", "/abs/out.pdf"))
	assert.Equal(t, "out.pdf", ResolveRelativePath("", "out.pdf"))
	assert.Equal(t, "", ResolveRelativePath("/etc/app/config.yaml", ""))
}

func TestLayoutConfig_Parameters(t *testing.T) {
	l := LayoutConfig{Mode: "a4", Margin: 36, Background: "10,20,30", PixelsPerUnit: 10, Alignment: "top-left"}
	params, err := l.Parameters()
	require.NoError(t, err)
	assert.Equal(t, domain.FixedPage, params.Mode)
	assert.Equal(t, domain.A4, params.PageSize)
	assert.Equal(t, domain.RGB{R: 10, G: 20, B: 30}, params.Background)
	assert.Equal(t, 36.0, params.Margin)

	l.Alignment = "middle"
	_, err = l.Parameters()
	assert.True(t, domain.IsType(err, domain.ErrorTypeValidation), "got %v", err)
}

func TestPDFConfig_DocumentOptions(t *testing.T) {
	opts := PDFConfig{Creator: "scanner", Compress: false}.DocumentOptions()
	assert.Equal(t, "scanner", opts.Creator)
	assert.Equal(t, "pdf-composer", opts.Producer)
	assert.False(t, opts.Compress)

	opts = PDFConfig{Compress: true}.DocumentOptions()
	assert.Equal(t, "pdf-composer", opts.Creator)
	assert.True(t, opts.Compress)
}
