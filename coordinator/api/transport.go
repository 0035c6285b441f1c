package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/boostmesh/boostmesh/coordinator"
	"github.com/boostmesh/boostmesh/pkg/api"
)

// MakeHandler exposes the coordinator's status surface: session state,
// health and Prometheus metrics.
func MakeHandler(svc coordinator.Service, logger *slog.Logger, instanceID string) http.Handler {
	mux := chi.NewRouter()

	opts := []kithttp.ServerOption{
		kithttp.ServerErrorEncoder(func(ctx context.Context, err error, w http.ResponseWriter) {
			logger.Warn("request failed", slog.Any("error", err))
			api.EncodeError(ctx, err, w)
		}),
	}

	mux.Get("/session", otelhttp.NewHandler(kithttp.NewServer(
		statusEndpoint(svc),
		decodeNothing,
		api.EncodeResponse,
		opts...,
	), "get-session").ServeHTTP)

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_ = api.EncodeResponse(r.Context(), w, healthResponse{Status: "ok", InstanceID: instanceID})
	})

	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

func decodeNothing(_ context.Context, _ *http.Request) (any, error) {
	return nil, nil
}
