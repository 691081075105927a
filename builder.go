package staffgate

import (
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/starwalkn/staffgate/internal/circuitbreaker"
	"github.com/starwalkn/staffgate/internal/metric"
	"github.com/starwalkn/staffgate/internal/ratelimit"
)

// connectTimeout bounds dialing the upstream. It is not configurable.
const connectTimeout = 5 * time.Second

// NewHTTPUpstream builds the HTTP client for the upstream employee API described by cfg.
func NewHTTPUpstream(cfg UpstreamConfig, log *zap.Logger, metrics metric.Metrics) Upstream {
	if metrics == nil {
		metrics = metric.NewNop()
	}

	readTimeout := cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}

	//nolint:mnd // be configurable in future
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ResponseHeaderTimeout: readTimeout,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	id := uuid.NewString()

	var circuitBreaker *circuitbreaker.CircuitBreaker
	if cfg.CircuitBreaker.Enabled {
		circuitBreaker = circuitbreaker.New(
			cfg.CircuitBreaker.MaxFailures,
			cfg.CircuitBreaker.ResetTimeout,
			log.Named("circuitbreaker"),
		)
	}

	return &httpUpstream{
		id:                  id,
		baseURL:             cfg.BaseURL,
		readTimeout:         readTimeout,
		maxResponseBodySize: cfg.MaxResponseBodySize,
		circuitBreaker:      circuitBreaker,
		client: &http.Client{
			Transport: transport,
		},
		log:     log.With(zap.String("upstream_id", id)),
		metrics: metrics,
	}
}

// NewServiceFromConfig wires the upstream client, the retrier and the service.
func NewServiceFromConfig(cfg Config, log *zap.Logger, metrics metric.Metrics) *Service {
	if metrics == nil {
		metrics = metric.NewNop()
	}

	upstream := NewHTTPUpstream(cfg.Upstream, log.Named("upstream"), metrics)
	retrier := NewRetrier(cfg.Upstream.RetryPolicy(), Classify, log.Named("retry"), metrics)

	return NewService(upstream, retrier, log.Named("service"))
}

// NewRouterFromConfig builds the service and the public router. The returned
// rate limiter is nil when rate limiting is disabled; the caller owns Start and Stop.
func NewRouterFromConfig(cfg Config, log *zap.Logger, metrics metric.Metrics) (*Router, *ratelimit.RateLimit) {
	if metrics == nil {
		metrics = metric.NewNop()
	}

	var rateLimiter *ratelimit.RateLimit
	if cfg.Server.RateLimiter.Enabled {
		rateLimiter = ratelimit.New(cfg.Server.RateLimiter.Limit, cfg.Server.RateLimiter.Window)
	}

	router := NewRouter(NewServiceFromConfig(cfg, log, metrics), RouterOptions{
		BasePath:    cfg.Server.BasePath,
		RetryAfter:  cfg.Server.RetryAfter,
		RateLimiter: rateLimiter,
		Metrics:     metrics,
	}, log.Named("router"))

	return router, rateLimiter
}
