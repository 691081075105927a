package staffgate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/starwalkn/staffgate/internal/circuitbreaker"
	"github.com/starwalkn/staffgate/internal/metric"
)

const (
	opListAll      = "list_all"
	opGetByID      = "get_by_id"
	opCreate       = "create"
	opDeleteByName = "delete_by_name"
)

// maxErrorBodySize bounds how much of a non-2xx body is drained for connection reuse.
const maxErrorBodySize = 64 * 1024

// httpUpstream is an implementation of Upstream interface.
type httpUpstream struct {
	id                  string
	baseURL             string
	readTimeout         time.Duration
	maxResponseBodySize int64

	circuitBreaker *circuitbreaker.CircuitBreaker

	client  *http.Client
	log     *zap.Logger
	metrics metric.Metrics
}

func (u *httpUpstream) ListAll(ctx context.Context) (*Envelope[[]*RawEmployee], error) {
	var env *Envelope[[]*RawEmployee]

	if err := u.do(ctx, opListAll, http.MethodGet, "", nil, &env); err != nil {
		return nil, err
	}

	return env, nil
}

func (u *httpUpstream) GetByID(ctx context.Context, id string) (*Envelope[*RawEmployee], error) {
	var env *Envelope[*RawEmployee]

	if err := u.do(ctx, opGetByID, http.MethodGet, id, nil, &env); err != nil {
		return nil, err
	}

	return env, nil
}

func (u *httpUpstream) Create(ctx context.Context, input CreateEmployeeInput) (*Envelope[*RawEmployee], error) {
	var env *Envelope[*RawEmployee]

	if err := u.do(ctx, opCreate, http.MethodPost, "", input, &env); err != nil {
		return nil, err
	}

	return env, nil
}

func (u *httpUpstream) DeleteByName(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return &UpstreamError{
			Kind: UpstreamInternal,
			Err:  errors.New("refusing to delete with an empty employee name"),
		}
	}

	return u.do(ctx, opDeleteByName, http.MethodDelete, name, nil, nil)
}

// do sends a single request and decodes a successful JSON body into out.
// An empty body leaves out untouched.
func (u *httpUpstream) do(ctx context.Context, op, method, segment string, payload, out any) error {
	if u.circuitBreaker != nil && !u.circuitBreaker.Allow() {
		return &UpstreamError{
			Kind: UpstreamCircuitOpen,
			Err:  errors.New("upstream circuit breaker is open"),
		}
	}

	start := time.Now()
	defer func() {
		u.metrics.UpdateUpstreamLatency(op, time.Since(start))
	}()

	body, uerr := u.call(ctx, method, segment, payload)

	if u.circuitBreaker != nil {
		if u.isBreakerFailure(uerr) {
			u.circuitBreaker.OnFailure()
		} else {
			u.circuitBreaker.OnSuccess()
		}
	}

	if uerr != nil {
		u.log.Debug("upstream call failed",
			zap.String("op", op),
			zap.String("kind", string(uerr.Kind)),
			zap.Int("status", uerr.Status),
			zap.Error(uerr.Err),
		)

		return uerr
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &UpstreamError{
			Kind: UpstreamMalformed,
			Err:  fmt.Errorf("cannot decode upstream response: %w", err),
		}
	}

	return nil
}

func (u *httpUpstream) call(ctx context.Context, method, segment string, payload any) ([]byte, *UpstreamError) {
	ctx, cancel := context.WithTimeout(ctx, u.readTimeout)
	defer cancel()

	req, err := u.newRequest(ctx, method, segment, payload)
	if err != nil {
		return nil, &UpstreamError{
			Kind: UpstreamInternal,
			Err:  err,
		}
	}

	hresp, err := u.client.Do(req)
	if err != nil {
		kind := UpstreamConnection

		var nerr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
			kind = UpstreamTimeout
		}

		if errors.Is(err, context.Canceled) {
			kind = UpstreamCanceled
		}

		return nil, &UpstreamError{
			Kind: kind,
			Err:  err,
		}
	}
	defer hresp.Body.Close()

	if hresp.StatusCode < http.StatusOK || hresp.StatusCode >= http.StatusMultipleChoices {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(hresp.Body, maxErrorBodySize))

		return nil, &UpstreamError{
			Kind:       UpstreamBadStatus,
			Status:     hresp.StatusCode,
			RetryAfter: parseRetryAfter(hresp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("upstream responded with status %d", hresp.StatusCode),
		}
	}

	var reader io.Reader = hresp.Body
	if u.maxResponseBodySize > 0 {
		reader = io.LimitReader(hresp.Body, u.maxResponseBodySize+1)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, &UpstreamError{
			Kind: UpstreamReadError,
			Err:  err,
		}
	}

	if u.maxResponseBodySize > 0 && int64(len(body)) > u.maxResponseBodySize {
		return nil, &UpstreamError{
			Kind: UpstreamBodyTooLarge,
			Err:  fmt.Errorf("response body larger than limit of %d bytes", u.maxResponseBodySize),
		}
	}

	return body, nil
}

func (u *httpUpstream) newRequest(ctx context.Context, method, segment string, payload any) (*http.Request, error) {
	var body io.Reader

	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("cannot encode upstream request: %w", err)
		}

		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.endpoint(segment), body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// endpoint returns the base URL, or the base URL with one escaped path segment appended.
func (u *httpUpstream) endpoint(segment string) string {
	if segment == "" {
		return u.baseURL
	}

	return strings.TrimSuffix(u.baseURL, "/") + "/" + url.PathEscape(segment)
}

func (u *httpUpstream) isBreakerFailure(uerr *UpstreamError) bool {
	if uerr == nil {
		return false
	}

	switch uerr.Kind { //nolint:exhaustive // only transport failures and 5xx trip the breaker
	case UpstreamTimeout, UpstreamConnection, UpstreamReadError:
		return true
	case UpstreamBadStatus:
		return uerr.Status >= http.StatusInternalServerError
	default:
		return false
	}
}

// parseRetryAfter parses a Retry-After header given in seconds or as an HTTP date.
// Returns 0 when the header is missing or invalid.
func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}

	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}

	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}

	return 0
}
