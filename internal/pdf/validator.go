package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spherical/pdf-composer/internal/domain"
	"github.com/spherical/pdf-composer/internal/observability"
)

// ImageExtensions lists the file extensions accepted as image sources.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

const largeFileSize = 100 * 1024 * 1024

// Validator provides input validation for source files
type Validator struct {
	logger *observability.Logger
}

// NewValidator creates a new validator instance
func NewValidator(logger *observability.Logger) *Validator {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Validator{logger: logger.WithComponent("validator")}
}

// ValidatePDFPath validates that a file path is valid and points to a PDF
func (v *Validator) ValidatePDFPath(path string) error {
	if err := v.checkFile(path); err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".pdf" {
		return domain.ValidationError(fmt.Sprintf("file is not a PDF (has extension %s): %s", ext, path), nil)
	}
	return nil
}

// ValidateImagePath validates that a file path is valid and has a supported
// image extension. Content is checked when the image is decoded.
func (v *Validator) ValidateImagePath(path string) error {
	if err := v.checkFile(path); err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range ImageExtensions {
		if ext == allowed {
			return nil
		}
	}
	return domain.ValidationError(fmt.Sprintf("unsupported image extension %q: %s", ext, path), nil)
}

// ValidateJob checks every input of a job before the worker starts.
func (v *Validator) ValidateJob(job domain.Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	switch job.Kind {
	case domain.JobImages:
		for _, p := range job.Images {
			if err := v.ValidateImagePath(p); err != nil {
				return err
			}
		}
	case domain.JobPages:
		for _, src := range job.Selection {
			if err := v.ValidatePDFPath(src.Path); err != nil {
				return err
			}
		}
	}

	return v.ValidateOutputPath(job.Output)
}

// ValidateOutputPath rejects empty output paths and existing directories.
func (v *Validator) ValidateOutputPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return domain.ValidationError("output path cannot be empty", nil)
	}

	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		return domain.ValidationError(fmt.Sprintf("output path is a directory: %s", path), nil)
	}
	return nil
}

func (v *Validator) checkFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return domain.ValidationError("file path cannot be empty", nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.ValidationError(fmt.Sprintf("file does not exist: %s", path), err)
		}
		return domain.ValidationError(fmt.Sprintf("cannot access file: %s", path), err)
	}

	if info.IsDir() {
		return domain.ValidationError(fmt.Sprintf("path is a directory, not a file: %s", path), nil)
	}

	if info.Size() > largeFileSize {
		v.logger.Warn().
			Str("path", path).
			Int("size_mb", int(info.Size()/(1024*1024))).
			Msg("source file is very large, processing may take a while")
	}

	file, err := os.Open(path)
	if err != nil {
		return domain.ValidationError(fmt.Sprintf("cannot open file: %s", path), err)
	}
	file.Close()

	return nil
}
