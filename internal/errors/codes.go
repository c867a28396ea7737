// Package errors provides structured error handling for shopindex.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Store and environment errors
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates store and environment errors.
	CategoryIO Category = "IO"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// Store errors (200-299)
	ErrCodeStoreUnavailable      = "ERR_201_STORE_UNAVAILABLE"
	ErrCodeStoreLocked           = "ERR_202_STORE_LOCKED"
	ErrCodeStoreCorrupt          = "ERR_205_STORE_CORRUPT"
	ErrCodeCapabilityUnavailable = "ERR_207_CAPABILITY_UNAVAILABLE"
	ErrCodeTokenizerRejected     = "ERR_208_TOKENIZER_REJECTED"

	// Validation errors (400-499)
	ErrCodeInvalidInput  = "ERR_401_INVALID_INPUT"
	ErrCodeKeyOutOfRange = "ERR_407_KEY_OUT_OF_RANGE"
	ErrCodeUnknownKind   = "ERR_408_UNKNOWN_KIND"
	ErrCodeNotFound      = "ERR_409_NOT_FOUND"

	// Internal errors (500-599)
	ErrCodeInternal      = "ERR_501_INTERNAL"
	ErrCodeSearchFailed  = "ERR_503_SEARCH_FAILED"
	ErrCodeIndexFailed   = "ERR_505_INDEX_FAILED"
	ErrCodeRebuildFailed = "ERR_506_REBUILD_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Extract numeric portion (e.g., "207" from "ERR_207_CAPABILITY_UNAVAILABLE")
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeCapabilityUnavailable, ErrCodeStoreCorrupt:
		return SeverityFatal
	case ErrCodeTokenizerRejected:
		// Recovered locally by the plain tokenizer fallback.
		return SeverityWarning
	}
	return SeverityError
}
