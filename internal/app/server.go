package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/starwalkn/staffgate"
	"github.com/starwalkn/staffgate/internal/metric"
	"github.com/starwalkn/staffgate/internal/ratelimit"
)

type Server struct {
	http        *http.Server
	rateLimiter *ratelimit.RateLimit
	log         *zap.Logger
}

func NewServer(cfg staffgate.Config, log *zap.Logger) *Server {
	mux := http.NewServeMux()

	metrics := metric.NewNop()

	if cfg.Server.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		metrics = metric.NewPrometheus(reg)

		mux.Handle(cfg.Server.Metrics.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router, rateLimiter := staffgate.NewRouterFromConfig(cfg, log, metrics)

	mux.Handle("/", router)

	return &Server{
		log:         log,
		rateLimiter: rateLimiter,
		http: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      mux,
			ReadTimeout:  cfg.Server.Timeout,
			WriteTimeout: cfg.Server.Timeout,
		},
	}
}

func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) Start() error {
	if s.rateLimiter != nil {
		s.rateLimiter.Start()
	}

	s.log.Info("server listening", zap.String("addr", s.http.Addr))

	return s.http.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	return s.http.Shutdown(ctx)
}
