package staffgate

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/starwalkn/staffgate/internal/metric"
	"github.com/starwalkn/staffgate/internal/ratelimit"
)

const (
	headerRequestID = "X-Request-ID"
	maxBodySize     = 1 << 20
)

// Operation names a façade operation reachable through the route table.
type Operation string

const (
	OpListEmployees             Operation = "ListEmployees"
	OpSearchByName              Operation = "SearchByName"
	OpHighestSalary             Operation = "HighestSalary"
	OpTopTenHighestEarningNames Operation = "TopTenHighestEarningNames"
	OpGetEmployeeByID           Operation = "GetEmployeeByID"
	OpCreateEmployee            Operation = "CreateEmployee"
	OpDeleteEmployeeByID        Operation = "DeleteEmployeeByID"
)

type Route struct {
	Method    string
	Pattern   string
	Operation Operation
}

// routeTable lists every public route relative to the base path.
// Static segments win over {id} in chi, so the order only matters for readability.
var routeTable = []Route{
	{http.MethodGet, "/employee", OpListEmployees},
	{http.MethodGet, "/employee/search/{name}", OpSearchByName},
	{http.MethodGet, "/employee/highestSalary", OpHighestSalary},
	{http.MethodGet, "/employee/topTenHighestEarningEmployeeNames", OpTopTenHighestEarningNames},
	{http.MethodGet, "/employee/{id}", OpGetEmployeeByID},
	{http.MethodPost, "/employee", OpCreateEmployee},
	{http.MethodDelete, "/employee/{id}", OpDeleteEmployeeByID},
}

// Routes returns the route table with basePath prepended.
func Routes(basePath string) []Route {
	basePath = strings.TrimSuffix(basePath, "/")

	routes := make([]Route, 0, len(routeTable))
	for _, rt := range routeTable {
		rt.Pattern = basePath + rt.Pattern
		routes = append(routes, rt)
	}

	return routes
}

type Router struct {
	service    *Service
	mux        chi.Router
	retryAfter time.Duration

	log     *zap.Logger
	metrics metric.Metrics

	rateLimiter *ratelimit.RateLimit
}

type RouterOptions struct {
	BasePath    string
	RetryAfter  time.Duration
	RateLimiter *ratelimit.RateLimit
	Metrics     metric.Metrics
}

func NewRouter(service *Service, opts RouterOptions, log *zap.Logger) *Router {
	if opts.Metrics == nil {
		opts.Metrics = metric.NewNop()
	}

	r := &Router{
		service:     service,
		retryAfter:  opts.RetryAfter,
		log:         log,
		metrics:     opts.Metrics,
		rateLimiter: opts.RateLimiter,
	}

	handlers := map[Operation]http.HandlerFunc{
		OpListEmployees:             r.listEmployees,
		OpSearchByName:              r.searchByName,
		OpHighestSalary:             r.highestSalary,
		OpTopTenHighestEarningNames: r.topTenHighestEarningNames,
		OpGetEmployeeByID:           r.getEmployeeByID,
		OpCreateEmployee:            r.createEmployee,
		OpDeleteEmployeeByID:        r.deleteEmployeeByID,
	}

	mux := chi.NewRouter()
	mux.Use(r.requestID, r.instrument, r.rateLimit)

	for _, rt := range Routes(opts.BasePath) {
		mux.Method(rt.Method, rt.Pattern, handlers[rt.Operation])
	}

	mux.NotFound(func(w http.ResponseWriter, req *http.Request) {
		r.log.Warn("no route matched", zap.String("request_uri", req.URL.RequestURI()))
		r.metrics.IncFailedRequestsTotal(metric.FailReasonNoMatchedRoute)

		WriteError(w, http.StatusNotFound, ErrorResponse{Code: ClientErrRouteNotFound, Message: "Route not found"})
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, ErrorResponse{Code: ClientErrMethodNotAllowed, Message: "Method not allowed"})
	})

	r.mux = mux

	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) listEmployees(w http.ResponseWriter, req *http.Request) {
	employees, err := r.service.ListEmployees(req.Context())
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}

	writeJSON(w, http.StatusOK, employees)
}

func (r *Router) searchByName(w http.ResponseWriter, req *http.Request) {
	employees, err := r.service.SearchByName(req.Context(), urlParam(req, "name"))
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}

	writeJSON(w, http.StatusOK, employees)
}

func (r *Router) highestSalary(w http.ResponseWriter, req *http.Request) {
	highest, err := r.service.HighestSalary(req.Context())
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}

	writeJSON(w, http.StatusOK, highest)
}

func (r *Router) topTenHighestEarningNames(w http.ResponseWriter, req *http.Request) {
	names, err := r.service.TopTenHighestEarningNames(req.Context())
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}

	writeJSON(w, http.StatusOK, names)
}

func (r *Router) getEmployeeByID(w http.ResponseWriter, req *http.Request) {
	employee, err := r.service.GetEmployeeByID(req.Context(), urlParam(req, "id"))
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}

	writeJSON(w, http.StatusOK, employee)
}

func (r *Router) createEmployee(w http.ResponseWriter, req *http.Request) {
	var input CreateEmployeeInput

	if err := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodySize)).Decode(&input); err != nil {
		r.log.Warn("malformed create request", zap.Error(err))
		r.metrics.IncFailedRequestsTotal(metric.FailReasonInvalidInput)

		WriteError(w, http.StatusBadRequest, ErrorResponse{
			Code:    ClientErrMalformedRequest,
			Message: "Malformed request body",
		})

		return
	}

	if fields := ValidateCreateEmployeeInput(input); fields != nil {
		r.log.Warn("validation failed for request", zap.Any("fields", fields))
		r.metrics.IncFailedRequestsTotal(metric.FailReasonInvalidInput)

		WriteError(w, http.StatusBadRequest, ErrorResponse{
			Code:    ClientErrValidationFailed,
			Message: msgValidationFailed,
			Errors:  fields,
		})

		return
	}

	employee, err := r.service.CreateEmployee(req.Context(), input)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}

	writeJSON(w, http.StatusOK, employee)
}

func (r *Router) deleteEmployeeByID(w http.ResponseWriter, req *http.Request) {
	id := urlParam(req, "id")

	if _, err := r.service.DeleteEmployeeByID(req.Context(), id); err != nil {
		r.writeServiceError(w, req, err)
		return
	}

	writeJSON(w, http.StatusOK, fmt.Sprintf("Employee with ID %s deleted successfully.", id))
}

// writeServiceError translates a classified error through errorTable.
func (r *Router) writeServiceError(w http.ResponseWriter, req *http.Request, err error) {
	var classified *Error
	if !errors.As(err, &classified) {
		classified = &Error{Kind: KindUnknown, Message: msgUnexpected, Err: err}
	}

	m := mappingFor(classified.Kind)

	fields := []zap.Field{
		zap.String("request_id", w.Header().Get(headerRequestID)),
		zap.String("path", req.URL.Path),
		zap.String("kind", string(classified.Kind)),
		zap.Int("status", m.status),
		zap.Error(err),
	}

	if m.status >= http.StatusInternalServerError {
		r.log.Error("request failed", fields...)
	} else {
		r.log.Warn("request failed", fields...)
	}

	r.metrics.IncFailedRequestsTotal(m.reason)

	if classified.Kind == KindRateLimited {
		retryAfter := classified.RetryAfter
		if retryAfter <= 0 {
			retryAfter = r.retryAfter
		}

		setRetryAfter(w, retryAfter)
	}

	message := classified.Message
	if message == "" {
		message = msgUnexpected
	}

	WriteError(w, m.status, ErrorResponse{
		Code:    m.code,
		Message: message,
		Errors:  classified.Fields,
	})
}

func (r *Router) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		requestID := getOrCreateRequestID(req)

		req.Header.Set(headerRequestID, requestID)
		w.Header().Set(headerRequestID, requestID)

		next.ServeHTTP(w, req)
	})
}

func (r *Router) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.metrics.IncRequestsTotal()

		r.metrics.IncRequestsInFlight()
		defer r.metrics.DecRequestsInFlight()

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, req)

		pattern := "unmatched"
		if rctx := chi.RouteContext(req.Context()); rctx != nil && rctx.RoutePattern() != "" {
			pattern = rctx.RoutePattern()
		}

		r.metrics.UpdateRequestsDuration(pattern, req.Method, start)
		r.metrics.IncResponsesTotal(pattern, sw.status)
	})
}

func (r *Router) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if r.rateLimiter != nil {
			if ok, retryAfter := r.rateLimiter.Allow(extractClientIP(req)); !ok {
				r.metrics.IncFailedRequestsTotal(metric.FailReasonRateLimited)

				setRetryAfter(w, retryAfter)
				WriteError(w, http.StatusTooManyRequests, ErrorResponse{
					Code:    ClientErrRateLimitExceeded,
					Message: msgTooManyRequests,
				})

				return
			}
		}

		next.ServeHTTP(w, req)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// urlParam returns the decoded path parameter. chi matches against RawPath when it is set,
// so escaped values such as %2F arrive still encoded.
func urlParam(req *http.Request, key string) string {
	raw := chi.URLParam(req, key)

	value, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}

	return value
}

func extractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}

	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return xrip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}

	return r.RemoteAddr
}

func getOrCreateRequestID(r *http.Request) string {
	requestID := r.Header.Get(headerRequestID)
	if requestID != "" {
		return requestID
	}

	t := time.Now()
	entropy := ulid.Monotonic(rand.Reader, math.MaxInt64)

	return strings.ToLower(ulid.MustNew(ulid.Timestamp(t), entropy).String())
}
