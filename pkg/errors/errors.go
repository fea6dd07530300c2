package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	// ErrorTypeNetwork covers transport failures: connect errors, timeouts,
	// broken reads. Always retryable.
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeStatus is a non-2xx HTTP status. Whether it retries depends
	// on the retry policy's allow-list.
	ErrorTypeStatus ErrorType = "status"
	// ErrorTypeRateLimit is a rate-limit denial, from a 429 or from a
	// rate-limit phrase in the body. Retries with amplified delay.
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeLoginRequired means the target redirected to its login wall.
	ErrorTypeLoginRequired ErrorType = "login_required"
	// ErrorTypeChallengeRequired means a challenge/verification screen.
	ErrorTypeChallengeRequired ErrorType = "challenge_required"
	// ErrorTypeNotFound means the page or account does not exist.
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeParsing is a malformed response or a missing required field.
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeRetryable is a generic retry signal, used for responses that
	// look truncated rather than denied.
	ErrorTypeRetryable ErrorType = "retryable"
	// ErrorTypeExhausted wraps the last failure after all retry attempts.
	ErrorTypeExhausted ErrorType = "exhausted"
	ErrorTypeUnknown   ErrorType = "unknown"
)

// Error represents a scrape error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Cause   error
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a typed error
func New(errorType ErrorType, message string) *Error {
	return &Error{Type: errorType, Message: message}
}

// Newf creates a typed error with a formatted message
func Newf(errorType ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: errorType, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a typed error that preserves the underlying cause
func Wrap(errorType ErrorType, message string, cause error) *Error {
	return &Error{Type: errorType, Message: message, Cause: cause}
}

// WithCode attaches an HTTP status code to the error
func (e *Error) WithCode(code int) *Error {
	e.Code = code
	return e
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeRetryable:
		return true
	case ErrorTypeLoginRequired, ErrorTypeChallengeRequired, ErrorTypeNotFound,
		ErrorTypeParsing, ErrorTypeExhausted:
		return false
	default:
		return false
	}
}

// IsFatalBlock reports whether the error type is an access decision that
// retrying cannot change.
func IsFatalBlock(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeLoginRequired, ErrorTypeChallengeRequired, ErrorTypeNotFound:
		return true
	default:
		return false
	}
}

// IsRateLimited reports whether the error carries a rate-limit denial,
// either typed as one or as a 429 status.
func IsRateLimited(err error) bool {
	var e *Error
	if !stderrors.As(err, &e) {
		return false
	}
	return e.Type == ErrorTypeRateLimit || e.Code == 429
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case 429: // Too Many Requests
		return true
	case 500, 502, 503, 504: // Server errors
		return true
	case 401, 403, 404: // Client errors that won't change
		return false
	default:
		return statusCode >= 500 // Retry all 5xx errors
	}
}
