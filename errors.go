package staffgate

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind is the domain failure taxonomy shared by the service and the HTTP boundary.
type ErrorKind string

const (
	KindNotFound            ErrorKind = "not_found"
	KindRateLimited         ErrorKind = "rate_limited"
	KindInvalidInput        ErrorKind = "invalid_input"
	KindUpstreamUnavailable ErrorKind = "upstream_unavailable"
	KindUnknown             ErrorKind = "unknown"
	KindNoData              ErrorKind = "no_data"
)

// Retryable reports whether a failure of this kind is worth another attempt.
func (k ErrorKind) Retryable() bool {
	return k == KindRateLimited || k == KindUpstreamUnavailable
}

const (
	msgEmployeeNotFound    = "Employee not found"
	msgTooManyRequests     = "Too many requests – please try again later"
	msgInvalidEmployeeID   = "Invalid Employee Id"
	msgInvalidSearchString = "Employee name search string is invalid"
	msgUpstreamUnavailable = "Employee API is currently unavailable"
	msgNoData              = "No employee data returned from API"
	msgUnexpected          = "An unexpected error occurred. Please try again later."
	msgValidationFailed    = "Validation failed"
)

// Error is a classified failure. Message is safe to show to clients, Err is not.
type Error struct {
	Kind    ErrorKind
	Op      string
	Message string

	// Fields holds per-field messages for rejected input.
	Fields map[string]string

	// RetryAfter is the delay advised by the upstream, zero if none was sent.
	RetryAfter time.Duration

	Err error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}

	if e.Op != "" {
		msg = e.Op + ": " + msg
	}

	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a classified error, KindUnknown otherwise.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindUnknown
}

func invalidInput(op, message string) *Error {
	return &Error{
		Kind:    KindInvalidInput,
		Op:      op,
		Message: message,
	}
}

func noData(op string) *Error {
	return &Error{
		Kind:    KindNoData,
		Op:      op,
		Message: msgNoData,
	}
}
