// Package errors defines the taxonomy of user-visible errors this data
// access layer raises, per the error handling design: schema errors,
// create/update conflicts, and the three planner-side "query unsupported"
// variants. Store I/O errors are never wrapped here — they propagate
// unchanged, per policy.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType categorizes an AppError.
type ErrorType string

const (
	// ErrorTypeValidation indicates a caller supplied invalid attributes.
	ErrorTypeValidation ErrorType = "VALIDATION"
	// ErrorTypeSchema indicates a persisted item is missing a required attribute.
	ErrorTypeSchema ErrorType = "SCHEMA"
	// ErrorTypeConflict indicates a uniqueness or optimistic-concurrency violation.
	ErrorTypeConflict ErrorType = "CONFLICT"
	// ErrorTypeUnsupportedQuery indicates the planner could not express a filter,
	// exceeded MAX_QUERIES, or a scan was attempted while disallowed.
	ErrorTypeUnsupportedQuery ErrorType = "UNSUPPORTED_QUERY"
	// ErrorTypeInternal indicates a defect in this layer, not caller input.
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// AppError is the error type surfaced across package boundaries by this module.
type AppError struct {
	Type    ErrorType
	Message string
	Code    string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap allows errors.Is/errors.As to reach the underlying store error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause attaches an underlying cause and returns the receiver.
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// NewValidation creates a validation error.
func NewValidation(message string) *AppError {
	return &AppError{Type: ErrorTypeValidation, Message: message}
}

// NewSchema creates a schema error: a read item is missing a required attribute.
func NewSchema(message string) *AppError {
	return &AppError{Type: ErrorTypeSchema, Message: message}
}

// Conflict creates a uniqueness/optimistic-concurrency conflict error.
func Conflict(message string) *AppError {
	return &AppError{Type: ErrorTypeConflict, Message: message}
}

// Query-unsupported error codes, distinguished by Code within ErrorTypeUnsupportedQuery.
const (
	CodeUnsupportedQuery       = "UNSUPPORTED_QUERY"
	CodeTooManyOperations      = "TOO_MANY_OPERATIONS"
	CodeTableScanRequired      = "TABLE_SCAN_REQUIRED"
)

// NewUnsupportedQuery signals a filter the planner cannot express.
func NewUnsupportedQuery(message string) *AppError {
	return &AppError{Type: ErrorTypeUnsupportedQuery, Code: CodeUnsupportedQuery, Message: message}
}

// NewTooManyOperations signals a plan exceeding MAX_QUERIES.
func NewTooManyOperations(count, max int) *AppError {
	return &AppError{
		Type:    ErrorTypeUnsupportedQuery,
		Code:    CodeTooManyOperations,
		Message: fmt.Sprintf("query requires %d operations, exceeding the maximum of %d", count, max),
	}
}

// NewTableScanRequired signals a scan attempted while disallowed.
func NewTableScanRequired(message string) *AppError {
	return &AppError{Type: ErrorTypeUnsupportedQuery, Code: CodeTableScanRequired, Message: message}
}

// NewInternal creates an internal defect error.
func NewInternal(message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeInternal, Message: message, Cause: cause}
}

// GetAppError extracts an *AppError from an error chain, if present.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == t
}

func IsConflict(err error) bool          { return IsType(err, ErrorTypeConflict) }
func IsValidation(err error) bool        { return IsType(err, ErrorTypeValidation) }
func IsSchema(err error) bool            { return IsType(err, ErrorTypeSchema) }
func IsUnsupportedQuery(err error) bool  { return IsType(err, ErrorTypeUnsupportedQuery) }
func IsInternal(err error) bool          { return IsType(err, ErrorTypeInternal) }

// Wrap wraps a non-AppError with additional context as an internal error;
// an existing AppError is returned unchanged so callers keep matching on Type.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr := GetAppError(err); appErr != nil {
		return appErr
	}
	return NewInternal(message, err)
}
