package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/starwalkn/staffgate/internal/logger"
	"github.com/starwalkn/staffgate/internal/mockapi"
)

var (
	mockPort           int
	mockSeed           int
	mockRateLimitRatio float64
)

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Run an in-memory upstream employee API for local development",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runMock()
	},
}

func init() {
	mockCmd.Flags().IntVar(&mockPort, "port", 8112, "port to listen on")
	mockCmd.Flags().IntVar(&mockSeed, "seed", 50, "number of generated employees")
	mockCmd.Flags().Float64Var(&mockRateLimitRatio, "rate-limit-ratio", 0, "share of requests answered with 429, between 0 and 1")

	rootCmd.AddCommand(mockCmd)
}

func runMock() error {
	log := logger.New(true)
	defer func() { _ = log.Sync() }()

	api := mockapi.New(mockapi.Options{
		RateLimitRatio: mockRateLimitRatio,
	}, log.Named("mockapi"))
	api.Seed(mockSeed)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", mockPort),
		Handler: api,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	log.Info("mock upstream listening", zap.String("addr", srv.Addr))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
