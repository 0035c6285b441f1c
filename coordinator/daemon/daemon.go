// Package daemon assembles and runs the coordinator service: middleware
// chain, rendezvous TCP server and HTTP status API under one errgroup.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/boostmesh/boostmesh/coordinator"
	"github.com/boostmesh/boostmesh/coordinator/api"
	"github.com/boostmesh/boostmesh/coordinator/middleware"
	"github.com/boostmesh/boostmesh/pkg/prometheus"
	"github.com/boostmesh/boostmesh/pkg/storage"
)

const (
	svcName         = "coordinator"
	shutdownTimeout = 5 * time.Second
)

type Config struct {
	LogLevel        string
	InstanceID      string
	SessionName     string
	ListenAddress   string
	HTTPAddress     string
	ExpectedWorkers int
	BarrierMode     bool
}

// StartCoordinator runs the rendezvous TCP server and the HTTP status API
// until ctx is cancelled.
func StartCoordinator(ctx context.Context, cancel context.CancelFunc, cfg Config) error {
	g, ctx := errgroup.WithContext(ctx)

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return fmt.Errorf("failed to parse log level: %s", err.Error())
	}
	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(logHandler).With(
		slog.String("service", svcName),
		slog.String("session_name", cfg.SessionName),
	)
	slog.SetDefault(logger)

	tracer := noop.NewTracerProvider().Tracer(svcName)

	svc := coordinator.NewService(coordinator.Config{
		ExpectedWorkers: cfg.ExpectedWorkers,
		BarrierMode:     cfg.BarrierMode,
	}, storage.NewInMemoryStorage(), logger)
	svc = middleware.Logging(logger, svc)
	svc = middleware.Tracing(tracer, svc)
	counter, latency := prometheus.MakeMetrics(svcName, "rendezvous")
	svc = middleware.Metrics(counter, latency, svc)

	tcpServer := coordinator.NewTCPServer(cfg.ListenAddress, svc, logger)
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddress,
		Handler: api.MakeHandler(svc, logger, cfg.InstanceID),
	}

	g.Go(func() error {
		defer cancel()

		return tcpServer.Listen(ctx)
	})

	g.Go(func() error {
		logger.Info("HTTP status server listening", slog.String("address", cfg.HTTPAddress))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error(fmt.Sprintf("%s service exited with error: %s", svcName, err))

		return err
	}

	return nil
}
