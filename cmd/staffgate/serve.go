package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/starwalkn/staffgate"
	"github.com/starwalkn/staffgate/internal/app"
	"github.com/starwalkn/staffgate/internal/logger"
	"github.com/starwalkn/staffgate/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	cfg, err := staffgate.LoadConfig(resolveConfigPath())
	if err != nil {
		return err
	}

	log := logger.New(cfg.Debug)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		shutdownTracing, terr := telemetry.Setup(ctx, telemetry.Options{
			ServiceName: cfg.Name,
			Version:     cfg.Version,
			Endpoint:    cfg.Tracing.Endpoint,
			Insecure:    cfg.Tracing.Insecure,
			SampleRatio: cfg.Tracing.SampleRatio,
		})
		if terr != nil {
			return terr
		}

		defer func() {
			tctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if serr := shutdownTracing(tctx); serr != nil {
				log.Warn("cannot flush traces", zap.Error(serr))
			}
		}()
	}

	srv := app.NewServer(cfg, log)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if serr := srv.Start(); serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			return serr
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return srv.Stop(shutdownCtx)
	})

	if err = g.Wait(); err != nil {
		log.Error("server stopped with error", zap.Error(err))
		return err
	}

	log.Info("server stopped")

	return nil
}
