// Package errors provides a lightweight structured error type (NormError)
// for category-based classification in the batch core and its CLI wrapper.
package errors

import (
	"fmt"
)

// ErrorCategory classifies a NormError for reporting and exit-code mapping.
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryIngest     ErrorCategory = "ingest"

	// Batch processing errors
	CategoryNormalize ErrorCategory = "normalize"
	CategoryRegistry  ErrorCategory = "registry"
	CategoryResolve   ErrorCategory = "resolve"

	// Infrastructure errors
	CategoryStore    ErrorCategory = "store"
	CategoryEvents   ErrorCategory = "events"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// ContextFields carries structured context for NormError.
type ContextFields map[string]any

// NormError is a structured error with category and context.
type NormError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// Error implements the error interface.
func (e *NormError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping.
func (e *NormError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error.
func (e *NormError) WithContext(key string, value any) *NormError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new NormError.
func New(category ErrorCategory, severity ErrorSeverity, message string) *NormError {
	return &NormError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new NormError that wraps an existing error.
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *NormError {
	return &NormError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// IsCategory checks if an error belongs to a specific category.
func IsCategory(err error, category ErrorCategory) bool {
	if ne, ok := err.(*NormError); ok {
		return ne.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or CategoryInternal for
// plain errors.
func GetCategory(err error) ErrorCategory {
	if ne, ok := err.(*NormError); ok {
		return ne.Category
	}
	return CategoryInternal
}

// ValidationError creates a validation error for malformed extractor input.
func ValidationError(message string) *NormError {
	return New(CategoryValidation, SeverityError, message)
}

// StoreError wraps a report-store failure.
func StoreError(err error, message string) *NormError {
	return Wrap(err, CategoryStore, SeverityError, message)
}
