package domain

import (
	"errors"
	"fmt"
)

// Error types for domain-specific errors
type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "validation"
	ErrorTypeImageDecode     ErrorType = "image_decode"
	ErrorTypeDegenerateImage ErrorType = "degenerate_image"
	ErrorTypePageRange       ErrorType = "page_range"
	ErrorTypeSource          ErrorType = "source"
	ErrorTypeOutput          ErrorType = "output"
	ErrorTypeCancelled       ErrorType = "cancelled"
	ErrorTypeBusy            ErrorType = "busy"
	ErrorTypeConfig          ErrorType = "config"
	ErrorTypeIO              ErrorType = "io"
)

// DomainError represents a domain-specific error with context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewError creates a new domain error
func NewError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// TypeOf returns the type of the first DomainError in err's chain, or ""
// if there is none.
func TypeOf(err error) ErrorType {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Type
	}
	return ""
}

// IsType reports whether err carries a DomainError of the given type.
func IsType(err error, errType ErrorType) bool {
	return err != nil && TypeOf(err) == errType
}

// Common error constructors
func ValidationError(message string, err error) *DomainError {
	return NewError(ErrorTypeValidation, message, err)
}

func ImageDecodeError(message string, err error) *DomainError {
	return NewError(ErrorTypeImageDecode, message, err)
}

func DegenerateImageError(message string, err error) *DomainError {
	return NewError(ErrorTypeDegenerateImage, message, err)
}

func PageRangeError(message string, err error) *DomainError {
	return NewError(ErrorTypePageRange, message, err)
}

func SourceError(message string, err error) *DomainError {
	return NewError(ErrorTypeSource, message, err)
}

func OutputError(message string, err error) *DomainError {
	return NewError(ErrorTypeOutput, message, err)
}

func CancelledError(message string, err error) *DomainError {
	return NewError(ErrorTypeCancelled, message, err)
}

func BusyError(message string, err error) *DomainError {
	return NewError(ErrorTypeBusy, message, err)
}

func ConfigError(message string, err error) *DomainError {
	return NewError(ErrorTypeConfig, message, err)
}

func IOError(message string, err error) *DomainError {
	return NewError(ErrorTypeIO, message, err)
}
