package metric

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "staffgate"

type prometheusMetrics struct {
	requestsTotal       prometheus.Counter
	requestsDuration    *prometheus.HistogramVec
	responsesTotal      *prometheus.CounterVec
	requestsInFlight    prometheus.Gauge
	failedRequestsTotal *prometheus.CounterVec
	upstreamRequests    *prometheus.CounterVec
	upstreamRetries     *prometheus.CounterVec
	upstreamLatency     *prometheus.HistogramVec
}

// NewPrometheus registers the collectors on reg.
func NewPrometheus(reg prometheus.Registerer) Metrics {
	f := promauto.With(reg)

	return &prometheusMetrics{
		requestsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests received.",
		}),
		requestsDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		responsesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "responses_total",
			Help:      "Total number of HTTP responses by route and status.",
		}, []string{"route", "status"}),
		requestsInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests being served.",
		}),
		failedRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failed_requests_total",
			Help:      "Total number of failed HTTP requests by reason.",
		}, []string{"reason"}),
		upstreamRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Upstream call attempts by operation and outcome.",
		}, []string{"op", "outcome"}),
		upstreamRetries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_retries_total",
			Help:      "Scheduled upstream retries by operation.",
		}, []string{"op"}),
		upstreamLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_latency_seconds",
			Help:      "Latency of single upstream requests by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}
}

func (m *prometheusMetrics) IncRequestsTotal() {
	m.requestsTotal.Inc()
}

func (m *prometheusMetrics) UpdateRequestsDuration(route, method string, start time.Time) {
	m.requestsDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
}

func (m *prometheusMetrics) IncResponsesTotal(route string, status int) {
	m.responsesTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

func (m *prometheusMetrics) IncRequestsInFlight() {
	m.requestsInFlight.Inc()
}

func (m *prometheusMetrics) DecRequestsInFlight() {
	m.requestsInFlight.Dec()
}

func (m *prometheusMetrics) IncFailedRequestsTotal(reason FailReason) {
	m.failedRequestsTotal.WithLabelValues(string(reason)).Inc()
}

func (m *prometheusMetrics) IncUpstreamRequests(op, outcome string) {
	m.upstreamRequests.WithLabelValues(op, outcome).Inc()
}

func (m *prometheusMetrics) IncUpstreamRetries(op string) {
	m.upstreamRetries.WithLabelValues(op).Inc()
}

func (m *prometheusMetrics) UpdateUpstreamLatency(op string, lat time.Duration) {
	m.upstreamLatency.WithLabelValues(op).Observe(lat.Seconds())
}
