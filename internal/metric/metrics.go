package metric

import "time"

type FailReason string

const (
	FailReasonNoMatchedRoute FailReason = "no_matched_route"
	FailReasonRateLimited    FailReason = "rate_limited"
	FailReasonInvalidInput   FailReason = "invalid_input"
	FailReasonUpstreamError  FailReason = "upstream_error"
	FailReasonNoData         FailReason = "no_data"
	FailReasonUnknown        FailReason = "unknown"
)

type Metrics interface {
	IncRequestsTotal()
	UpdateRequestsDuration(route, method string, start time.Time)
	IncResponsesTotal(route string, status int)
	IncRequestsInFlight()
	DecRequestsInFlight()
	IncFailedRequestsTotal(FailReason)
	IncUpstreamRequests(op, outcome string)
	IncUpstreamRetries(op string)
	UpdateUpstreamLatency(op string, lat time.Duration)
}
