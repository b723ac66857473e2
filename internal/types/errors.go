package types

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration is matched by every InvalidConfigurationError via errors.Is.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// InvalidConfigurationError reports configuration that must be rejected before analysis runs.
type InvalidConfigurationError struct {
	Field   string
	Message string
}

func (e *InvalidConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid configuration: %s", e.Message)
}

// Is makes errors.Is(err, ErrInvalidConfiguration) true.
func (e *InvalidConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}

// NewInvalidConfiguration builds an InvalidConfigurationError with a formatted message.
func NewInvalidConfiguration(field, format string, args ...any) error {
	return &InvalidConfigurationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
