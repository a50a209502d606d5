// Package errors provides error classification for the client SDK.
// Classification decides retry behavior: idempotent reads may be retried for
// recoverable failures, mutations never are.
package errors

import "fmt"

// ErrorCategory determines how a failure should be handled by retry logic.
type ErrorCategory int

const (
	// Recoverable failures may be retried with backoff.
	// Examples: 5xx responses, timeouts, connection resets.
	Recoverable ErrorCategory = iota

	// Irrecoverable failures fail immediately without retry.
	// Examples: 400 Bad Request, 401 Unauthorized, 404 Not Found.
	Irrecoverable
)

func (c ErrorCategory) String() string {
	switch c {
	case Recoverable:
		return "Recoverable"
	case Irrecoverable:
		return "Irrecoverable"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// ClassifiedError wraps a request failure with categorization metadata.
type ClassifiedError struct {
	Category   ErrorCategory
	StatusCode int    // HTTP status code (0 for network-level errors)
	Body       string // response body, kept for debugging
	Underlying error
}

func (e *ClassifiedError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%s] HTTP %d: %v", e.Category, e.StatusCode, e.Underlying)
	}
	return fmt.Sprintf("[%s] %v", e.Category, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ClassifiedError) Unwrap() error { return e.Underlying }

// IsRetryable reports whether err is a recoverable classified error.
func IsRetryable(err error) bool {
	if classified, ok := err.(*ClassifiedError); ok {
		return classified.Category == Recoverable
	}
	// Network-level errors arrive unclassified; treat them as transient.
	return err != nil
}
