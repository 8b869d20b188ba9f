package config

import (
	"errors"
	"fmt"

	"github.com/dshills/runebridge/internal/config/loader"
)

// Sentinel errors for configuration operations.
var (
	// ErrInvalidConfig is returned when a setting fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrReloaderClosed is returned when Start is called after Close.
	ErrReloaderClosed = errors.New("config reloader closed")
)

// ParseError represents an error while parsing a configuration file.
type ParseError = loader.ParseError

// FieldError names the setting that failed validation.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidConfig, e.Field, e.Message)
}

// Is allows errors.Is to match FieldError with ErrInvalidConfig.
func (e *FieldError) Is(target error) bool {
	return target == ErrInvalidConfig
}

func invalid(field, format string, args ...any) error {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}
