package staffgate

import (
	"errors"
	"net/http"
)

// Classifier maps a failed call to a classified *Error.
type Classifier func(op string, err error) *Error

// Classify is the default Classifier. It applies the fixed status table to upstream
// failures and passes already classified errors through unchanged.
func Classify(op string, err error) *Error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	// Local failures, including the caller's own context, are never upstream signals.
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		return &Error{Kind: KindUnknown, Op: op, Message: msgUnexpected, Err: err}
	}

	switch ue.Kind {
	case UpstreamBadStatus:
		kind, message := classifyStatus(ue.Status)

		return &Error{
			Kind:       kind,
			Op:         op,
			Message:    message,
			RetryAfter: ue.RetryAfter,
			Err:        err,
		}
	case UpstreamTimeout, UpstreamConnection, UpstreamReadError, UpstreamCircuitOpen:
		return &Error{Kind: KindUpstreamUnavailable, Op: op, Message: msgUpstreamUnavailable, Err: err}
	default:
		return &Error{Kind: KindUnknown, Op: op, Message: msgUnexpected, Err: err}
	}
}

func classifyStatus(status int) (ErrorKind, string) {
	switch status {
	case http.StatusNotFound:
		return KindNotFound, msgEmployeeNotFound
	case http.StatusTooManyRequests:
		return KindRateLimited, msgTooManyRequests
	case http.StatusBadRequest:
		return KindInvalidInput, msgInvalidEmployeeID
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return KindUpstreamUnavailable, msgUpstreamUnavailable
	default:
		return KindUnknown, msgUnexpected
	}
}
