package model

import (
	"errors"
	"fmt"
)

// ValidationError reports missing or malformed borrower input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("validation failed: %s", e.Field)
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// ConfigurationError reports an invalid partner bank policy.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid policy configuration: %s: %s", e.Field, e.Reason)
}

func configErr(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// PolicyNotFoundError is returned when no policy exists for a bank code.
type PolicyNotFoundError struct {
	BankCode string
}

func (e *PolicyNotFoundError) Error() string {
	return fmt.Sprintf("no lending policy for bank %q", e.BankCode)
}

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------

var (
	ErrConcurrencyConflict = errors.New("concurrent modification of borrower state")
	ErrBorrowerNotFound    = errors.New("borrower profile not found")
	ErrDecisionNotFound    = errors.New("no decision recorded for borrower")
	ErrPermissionDenied    = errors.New("permission denied")
)

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConfiguration reports whether err wraps a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsPolicyNotFound reports whether err wraps a PolicyNotFoundError.
func IsPolicyNotFound(err error) bool {
	var pe *PolicyNotFoundError
	return errors.As(err, &pe)
}
