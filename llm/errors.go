package llm

import (
	"context"
	"errors"
	"strings"
)

// ErrorClass categorizes provider errors for retry decisions.
type ErrorClass int

const (
	ErrClassRateLimit ErrorClass = iota
	ErrClassOverloaded
	ErrClassTimeout
	ErrClassTemporary
	ErrClassInvalidRequest
	ErrClassAuthentication
	ErrClassUnknown
)

// String returns a log-friendly name for the error class.
func (c ErrorClass) String() string {
	switch c {
	case ErrClassRateLimit:
		return "rate_limit"
	case ErrClassOverloaded:
		return "overloaded"
	case ErrClassTimeout:
		return "timeout"
	case ErrClassTemporary:
		return "temporary"
	case ErrClassInvalidRequest:
		return "invalid_request"
	case ErrClassAuthentication:
		return "authentication"
	default:
		return "unknown"
	}
}

// ClassifyError maps a provider error onto an ErrorClass. Both SDKs
// surface HTTP status codes in their error text, so classification works
// on the message rather than on SDK-specific error types.
func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ErrClassUnknown
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrClassTimeout
	}
	if errors.Is(err, context.Canceled) {
		return ErrClassTimeout
	}

	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "rate_limit"):
		return ErrClassRateLimit
	case strings.Contains(msg, "529") || strings.Contains(msg, "overloaded"):
		return ErrClassOverloaded
	case strings.Contains(msg, "401") || strings.Contains(msg, "403") ||
		strings.Contains(msg, "unauthorized") || strings.Contains(msg, "authentication") ||
		strings.Contains(msg, "api key") || strings.Contains(msg, "api_key"):
		return ErrClassAuthentication
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return ErrClassTimeout
	case strings.Contains(msg, "500") || strings.Contains(msg, "502") ||
		strings.Contains(msg, "503") || strings.Contains(msg, "504") ||
		strings.Contains(msg, "connection refused") || strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "eof"):
		return ErrClassTemporary
	case strings.Contains(msg, "400") || strings.Contains(msg, "invalid"):
		return ErrClassInvalidRequest
	}

	return ErrClassUnknown
}

// Retryable reports whether an error is worth retrying with backoff.
func Retryable(err error) bool {
	switch ClassifyError(err) {
	case ErrClassRateLimit, ErrClassOverloaded, ErrClassTimeout, ErrClassTemporary:
		// Cancelled contexts classify as timeouts but must not be retried.
		return !errors.Is(err, context.Canceled)
	default:
		return false
	}
}
