// internal/api/errors.go
package api

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the requested resource does not exist or is not
// visible to the current identity. Distinguishable from transport failure.
var ErrNotFound = errors.New("not found")

// ValidationError is a client-side rejection of bad input. It never
// reaches the server.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a field-specific validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// StatusError is a non-2xx response from the commerce API carrying the
// server's own error message.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API call failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("API call failed with status %d: %s", e.StatusCode, e.Message)
}

// IsValidation reports whether err is a client-side validation rejection
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
