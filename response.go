package staffgate

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/starwalkn/staffgate/internal/metric"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    ClientError       `json:"code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type ClientError string

func (err ClientError) String() string {
	return string(err)
}

const (
	ClientErrNotFound            ClientError = "NOT_FOUND"
	ClientErrRateLimitExceeded   ClientError = "RATE_LIMIT_EXCEEDED"
	ClientErrInvalidInput        ClientError = "INVALID_INPUT"
	ClientErrValidationFailed    ClientError = "VALIDATION_FAILED"
	ClientErrMalformedRequest    ClientError = "MALFORMED_REQUEST"
	ClientErrUpstreamUnavailable ClientError = "UPSTREAM_UNAVAILABLE"
	ClientErrNoData              ClientError = "NO_DATA"
	ClientErrInternal            ClientError = "INTERNAL"
	ClientErrRouteNotFound       ClientError = "ROUTE_NOT_FOUND"
	ClientErrMethodNotAllowed    ClientError = "METHOD_NOT_ALLOWED"
)

type errorMapping struct {
	status int
	code   ClientError
	reason metric.FailReason
}

// errorTable is the single ErrorKind to HTTP translation of the boundary.
var errorTable = map[ErrorKind]errorMapping{
	KindNotFound:            {http.StatusNotFound, ClientErrNotFound, metric.FailReasonUpstreamError},
	KindRateLimited:         {http.StatusTooManyRequests, ClientErrRateLimitExceeded, metric.FailReasonRateLimited},
	KindInvalidInput:        {http.StatusBadRequest, ClientErrInvalidInput, metric.FailReasonInvalidInput},
	KindUpstreamUnavailable: {http.StatusInternalServerError, ClientErrUpstreamUnavailable, metric.FailReasonUpstreamError},
	KindUnknown:             {http.StatusInternalServerError, ClientErrInternal, metric.FailReasonUnknown},
	KindNoData:              {http.StatusInternalServerError, ClientErrNoData, metric.FailReasonNoData},
}

func mappingFor(kind ErrorKind) errorMapping {
	if m, ok := errorTable[kind]; ok {
		return m
	}

	return errorTable[KindUnknown]
}

func WriteError(w http.ResponseWriter, status int, resp ErrorResponse) {
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// setRetryAfter writes the delay in whole seconds, rounded up.
func setRetryAfter(w http.ResponseWriter, d time.Duration) {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(secs))
}
