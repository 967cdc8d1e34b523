// Package errors defines the coded error taxonomy for the research
// pipeline. Codes are partitioned by failure class; retryability and
// category are derived from the code so callers never switch on message
// text.
package errors

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Category represents the class of a failure.
type Category string

const (
	CategoryConfiguration Category = "configuration"
	CategoryProvider      Category = "provider"
	CategoryValidation    Category = "validation"
	CategorySession       Category = "session"
	CategoryUnknown       Category = "unknown"
)

const (
	// Configuration errors (1xxx): fatal only for the affected query.
	ErrCredentialMissing = "DR-1001" // Provider credential absent
	ErrCredentialInvalid = "DR-1002" // Provider rejected the credential

	// Provider errors (2xxx): converted to a nil outcome or fallback.
	ErrProviderStatus  = "DR-2001" // Non-2xx provider response
	ErrProviderNetwork = "DR-2002" // Transport-level failure
	ErrProviderDecode  = "DR-2003" // Unparseable provider payload
	ErrRateLimit       = "DR-2004" // Provider rate limit

	// Validation errors (3xxx): structured output violates its schema.
	ErrSchemaViolation = "DR-3001" // Output failed schema validation
	ErrEmptyGeneration = "DR-3002" // Generation returned no candidates

	// Session errors (4xxx): abort the session, partial state retained.
	ErrSessionAborted  = "DR-4001" // Unrecoverable phase failure
	ErrSessionCanceled = "DR-4002" // External cancellation signal
	ErrSessionTimeout  = "DR-4003" // Overall session deadline exceeded
	ErrReportNotFound  = "DR-4004" // Unknown research id
)

// Error is a coded pipeline error carrying its category, retryability
// and a correlation id for log stitching.
type Error struct {
	Code          string    `json:"code"`
	Category      Category  `json:"category"`
	Message       string    `json:"message"`
	Retryable     bool      `json:"retryable"`
	Timestamp     time.Time `json:"timestamp"`
	CorrelationID string    `json:"correlation_id"`

	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause to errors.Is/As.
func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error.
func New(code, message string) *Error {
	return &Error{
		Code:          code,
		Category:      categoryFromCode(code),
		Message:       message,
		Retryable:     retryableCode(code),
		Timestamp:     time.Now(),
		CorrelationID: uuid.New().String(),
	}
}

// Newf creates a coded error with a formatted message.
func Newf(code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap attaches a code to an existing error. Wrapping an *Error again
// re-codes it but keeps the original cause chain.
func Wrap(err error, code, message string) *Error {
	if err == nil {
		return nil
	}
	e := New(code, message)
	e.cause = err
	return e
}

// CodeOf returns the code of err, or "" for uncoded errors.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// CategoryOf returns the category of err, CategoryUnknown for uncoded
// errors.
func CategoryOf(err error) Category {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return CategoryUnknown
}

// IsRetryable reports whether err may be retried. Uncoded errors default
// to retryable so transient transport failures are not given up on.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return true
}

// IsConfiguration reports whether err is a configuration failure.
func IsConfiguration(err error) bool { return CategoryOf(err) == CategoryConfiguration }

// IsProvider reports whether err is a provider failure.
func IsProvider(err error) bool { return CategoryOf(err) == CategoryProvider }

// IsValidation reports whether err is a structured-output validation
// failure.
func IsValidation(err error) bool { return CategoryOf(err) == CategoryValidation }

func categoryFromCode(code string) Category {
	if len(code) < 6 {
		return CategoryUnknown
	}
	switch code[3:4] {
	case "1":
		return CategoryConfiguration
	case "2":
		return CategoryProvider
	case "3":
		return CategoryValidation
	case "4":
		return CategorySession
	default:
		return CategoryUnknown
	}
}

func retryableCode(code string) bool {
	switch code {
	case ErrProviderStatus, ErrProviderNetwork, ErrRateLimit,
		ErrSchemaViolation, ErrEmptyGeneration:
		return true
	default:
		return false
	}
}
