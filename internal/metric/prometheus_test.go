package metric

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheus_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheus(reg).(*prometheusMetrics)

	m.IncRequestsTotal()
	m.IncRequestsTotal()
	m.IncResponsesTotal("/api/v1/employee", http.StatusOK)
	m.IncFailedRequestsTotal(FailReasonRateLimited)
	m.IncUpstreamRequests("list_all", "rate_limited")
	m.IncUpstreamRequests("list_all", "ok")
	m.IncUpstreamRetries("list_all")
	m.UpdateUpstreamLatency("list_all", 20*time.Millisecond)
	m.UpdateRequestsDuration("/api/v1/employee", http.MethodGet, time.Now())

	if got := testutil.ToFloat64(m.requestsTotal); got != 2 {
		t.Errorf("expected 2 requests, got %v", got)
	}

	if got := testutil.ToFloat64(m.responsesTotal.WithLabelValues("/api/v1/employee", "200")); got != 1 {
		t.Errorf("expected one 200 response, got %v", got)
	}

	if got := testutil.ToFloat64(m.failedRequestsTotal.WithLabelValues(string(FailReasonRateLimited))); got != 1 {
		t.Errorf("expected one rate limited failure, got %v", got)
	}

	if got := testutil.ToFloat64(m.upstreamRetries.WithLabelValues("list_all")); got != 1 {
		t.Errorf("expected one retry, got %v", got)
	}

	if got := testutil.CollectAndCount(m.upstreamRequests); got != 2 {
		t.Errorf("expected two upstream outcome series, got %d", got)
	}
}

func TestPrometheus_InFlight(t *testing.T) {
	m := NewPrometheus(prometheus.NewRegistry()).(*prometheusMetrics)

	m.IncRequestsInFlight()
	m.IncRequestsInFlight()
	m.DecRequestsInFlight()

	if got := testutil.ToFloat64(m.requestsInFlight); got != 1 {
		t.Fatalf("expected 1 in flight, got %v", got)
	}
}
