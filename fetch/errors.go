package fetch

import (
	"context"
	"errors"
)

// ErrorClass represents whether an error should be retried or not.
type ErrorClass int

const (
	// ErrorClassRetryable covers every transport failure: dial errors, timeouts,
	// non-2xx statuses and truncated bodies.
	ErrorClassRetryable ErrorClass = iota
	// ErrorClassFatal covers decode failures, cancellation and malformed requests.
	ErrorClassFatal
)

// String returns a human-readable name for the error class.
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorClassRetryable:
		return "retryable"
	case ErrorClassFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// fatalError marks a failure the retry loop must not repeat.
type fatalError struct{ err error }

func (e *fatalError) Error() string { return e.err.Error() }
func (e *fatalError) Unwrap() error { return e.err }

// Classify decides whether the retry loop should try err again. Unknown errors are
// treated as transport failures; the loop never gives up on those.
func Classify(err error) ErrorClass {
	if err == nil {
		return ErrorClassRetryable
	}
	var fe *fatalError
	switch {
	case errors.As(err, &fe),
		errors.Is(err, ErrDecode),
		errors.Is(err, context.Canceled):
		return ErrorClassFatal
	}
	return ErrorClassRetryable
}

// IsRetryableError reports whether err would be retried.
func IsRetryableError(err error) bool { return Classify(err) == ErrorClassRetryable }
