package staffgate

import (
	"context"
	"time"
)

// Upstream is the employee-data API the façade delegates to.
// Every method issues exactly one HTTP request.
type Upstream interface {
	ListAll(ctx context.Context) (*Envelope[[]*RawEmployee], error)
	GetByID(ctx context.Context, id string) (*Envelope[*RawEmployee], error)
	Create(ctx context.Context, input CreateEmployeeInput) (*Envelope[*RawEmployee], error)
	DeleteByName(ctx context.Context, name string) error
}

// Envelope wraps every upstream payload. Data may be null.
type Envelope[T any] struct {
	Data   T      `json:"data"`
	Status string `json:"status"`
}

// RawEmployee is the upstream record shape. Every field is nullable on the wire.
type RawEmployee struct {
	ID     string  `json:"id"`
	Name   *string `json:"employee_name"`
	Salary *int    `json:"employee_salary"`
	Age    *int    `json:"employee_age"`
	Title  *string `json:"employee_title"`
	Email  *string `json:"employee_email"`
}

type UpstreamError struct {
	Kind   UpstreamErrorKind // Transport-level kind for the classifier.
	Status int               // HTTP status, set only for UpstreamBadStatus.

	// RetryAfter is parsed from the upstream Retry-After header when present.
	RetryAfter time.Duration

	Err error // Original error. Not for client!
}

// Error returns the upstream error kind. Error kind is a custom string type, not error interface!
func (ue *UpstreamError) Error() string {
	return string(ue.Kind)
}

// Unwrap returns the original error.
func (ue *UpstreamError) Unwrap() error {
	return ue.Err
}

type UpstreamErrorKind string

const (
	UpstreamTimeout      UpstreamErrorKind = "timeout"
	UpstreamCanceled     UpstreamErrorKind = "canceled"
	UpstreamConnection   UpstreamErrorKind = "connection"
	UpstreamBadStatus    UpstreamErrorKind = "bad_status"
	UpstreamReadError    UpstreamErrorKind = "read_error"
	UpstreamBodyTooLarge UpstreamErrorKind = "body_too_large"
	UpstreamMalformed    UpstreamErrorKind = "malformed"
	UpstreamCircuitOpen  UpstreamErrorKind = "circuit_open"
	UpstreamInternal     UpstreamErrorKind = "internal"
)
