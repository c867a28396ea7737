package errors

import (
	stderrors "errors"
	"fmt"
)

// ShopError is the structured error type for shopindex.
// It carries enough context for logging, CLI presentation and errors.Is matching.
type ShopError struct {
	// Code is the unique error code (e.g., "ERR_207_CAPABILITY_UNAVAILABLE").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Validation, Internal).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the operator.
	Suggestion string
}

// Error implements the error interface.
func (e *ShopError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *ShopError) Unwrap() error {
	return e.Cause
}

// Is matches another ShopError by code, so sentinel values
// like ErrCapabilityUnavailable work with errors.Is.
func (e *ShopError) Is(target error) bool {
	if t, ok := target.(*ShopError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *ShopError) WithDetail(key, value string) *ShopError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the operator.
func (e *ShopError) WithSuggestion(suggestion string) *ShopError {
	e.Suggestion = suggestion
	return e
}

// New creates a new ShopError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *ShopError {
	return &ShopError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a ShopError from an existing error.
// The error's message becomes the ShopError message.
func Wrap(code string, err error) *ShopError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// Sentinels for errors.Is checks. Only the code is compared.
var (
	ErrCapabilityUnavailable = &ShopError{Code: ErrCodeCapabilityUnavailable}
	ErrTokenizerRejected     = &ShopError{Code: ErrCodeTokenizerRejected}
	ErrKeyOutOfRange         = &ShopError{Code: ErrCodeKeyOutOfRange}
	ErrUnknownKind           = &ShopError{Code: ErrCodeUnknownKind}
	ErrNotFound              = &ShopError{Code: ErrCodeNotFound}
	ErrStoreLocked           = &ShopError{Code: ErrCodeStoreLocked}
)

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *ShopError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// IOError creates a store I/O error.
func IOError(message string, cause error) *ShopError {
	return New(ErrCodeStoreUnavailable, message, cause)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *ShopError {
	return New(ErrCodeInvalidInput, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *ShopError {
	return New(ErrCodeInternal, message, cause)
}

// IsFatal reports whether err (or anything it wraps) is a fatal ShopError.
// Fatal errors must abort startup.
func IsFatal(err error) bool {
	var se *ShopError
	if stderrors.As(err, &se) {
		return se.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from the first ShopError in the chain.
// Returns empty string if there is none.
func GetCode(err error) string {
	var se *ShopError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ""
}

// GetCategory extracts the category from the first ShopError in the chain.
func GetCategory(err error) Category {
	var se *ShopError
	if stderrors.As(err, &se) {
		return se.Category
	}
	return ""
}
