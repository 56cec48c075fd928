// Package config provides configuration loading for the composer.
// Supports YAML files, .env files and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/spherical/pdf-composer/internal/domain"
	"github.com/spherical/pdf-composer/internal/observability"
	"github.com/spherical/pdf-composer/internal/pdf"
)

// Config holds all configuration for the composer.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Server  ServerConfig  `yaml:"server"`
	Layout  LayoutConfig  `yaml:"layout"`
	Output  OutputConfig  `yaml:"output"`
	PDF     PDFConfig     `yaml:"pdf"`
	Preview PreviewConfig `yaml:"preview"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// ServerConfig holds HTTP job API settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

// LayoutConfig holds the default image layout options.
type LayoutConfig struct {
	Mode          string  `yaml:"mode"` // source, a4, a5, a6 or letter
	Margin        float64 `yaml:"margin"`
	Background    string  `yaml:"background"`
	PixelsPerUnit float64 `yaml:"pixels_per_unit"`
	Alignment     string  `yaml:"alignment"`
}

// OutputConfig holds output settings.
type OutputConfig struct {
	Path string `yaml:"path"`
}

// PDFConfig holds settings of generated documents.
type PDFConfig struct {
	Creator  string `yaml:"creator"`
	Compress bool   `yaml:"compress"`
}

// PreviewConfig holds page preview settings.
type PreviewConfig struct {
	DPI float64 `yaml:"dpi"`
}

// Load reads configuration from a YAML file and applies environment
// overrides. An empty path falls back to $CONFIG_PATH, then to defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, domain.ConfigError("read config file", err)
		}

		defaultOutput := cfg.Output.Path
		cfg.Output.Path = ""
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, domain.ConfigError("parse config file", err)
		}
		// an output path set in the file is relative to the file
		if cfg.Output.Path == "" {
			cfg.Output.Path = defaultOutput
		} else {
			cfg.Output.Path = ResolveRelativePath(path, cfg.Output.Path)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, domain.ConfigError("validate config", err)
	}

	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files (".env" when none
// are named). Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return domain.ConfigError("stat env file "+f, err)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return domain.ConfigError("load env file", err)
	}
	return nil
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			Host:             "127.0.0.1",
			Port:             8086,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     30 * time.Second,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 10 * time.Second,
		},
		Layout: LayoutConfig{
			Mode:          "source",
			Margin:        0,
			Background:    "#ffffff",
			PixelsPerUnit: 10,
			Alignment:     "center",
		},
		Output: OutputConfig{
			Path: "selection.pdf",
		},
		PDF: PDFConfig{
			Creator:  "pdf-composer",
			Compress: true,
		},
		Preview: PreviewConfig{
			DPI: 72,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}

	if _, err := c.Layout.Parameters(); err != nil {
		return fmt.Errorf("invalid layout: %w", err)
	}

	if c.Preview.DPI <= 0 || c.Preview.DPI > 1200 {
		return fmt.Errorf("preview dpi must be between 0 and 1200, got %g", c.Preview.DPI)
	}

	return nil
}

// Parameters converts the layout section to layout parameters.
func (l LayoutConfig) Parameters() (domain.LayoutParameters, error) {
	mode, size, err := domain.ParseMode(l.Mode)
	if err != nil {
		return domain.LayoutParameters{}, err
	}
	bg, err := domain.ParseRGB(l.Background)
	if err != nil {
		return domain.LayoutParameters{}, err
	}
	align, err := domain.ParseAlignment(l.Alignment)
	if err != nil {
		return domain.LayoutParameters{}, err
	}

	params := domain.LayoutParameters{
		Mode:          mode,
		PageSize:      size,
		Margin:        l.Margin,
		Background:    bg,
		PixelsPerUnit: l.PixelsPerUnit,
		Alignment:     align,
	}
	if err := params.Validate(); err != nil {
		return domain.LayoutParameters{}, err
	}
	return params, nil
}

// Address returns the host:port the server listens on.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// LoggerConfig returns the logger settings for the given service name.
func (c *Config) LoggerConfig(service string) observability.LogConfig {
	return observability.LogConfig{
		Level:       c.Log.Level,
		Format:      c.Log.Format,
		ServiceName: service,
	}
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}

	if v := os.Getenv("PDF_COMPOSER_OUTPUT"); v != "" {
		cfg.Output.Path = v
	}
}

// ResolveRelativePath resolves a path relative to the config file location.
func ResolveRelativePath(configPath, targetPath string) string {
	if targetPath == "" || filepath.IsAbs(targetPath) || configPath == "" {
		return targetPath
	}
	return filepath.Join(filepath.Dir(configPath), targetPath)
}

// DocumentOptions converts the pdf section to document options.
func (p PDFConfig) DocumentOptions() pdf.DocumentOptions {
	opts := pdf.DefaultDocumentOptions()
	if p.Creator != "" {
		opts.Creator = p.Creator
	}
	opts.Compress = p.Compress
	return opts
}
