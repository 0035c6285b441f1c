package middleware

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/boostmesh/boostmesh/coordinator"
)

var _ coordinator.Service = (*tracing)(nil)

type tracing struct {
	tracer trace.Tracer
	svc    coordinator.Service
}

func Tracing(tracer trace.Tracer, svc coordinator.Service) coordinator.Service {
	return &tracing{tracer, svc}
}

func (tm *tracing) Register(ctx context.Context, addr string) error {
	ctx, span := tm.tracer.Start(ctx, "register", trace.WithAttributes(
		attribute.String("address", addr),
	))
	defer span.End()

	return tm.svc.Register(ctx, addr)
}

func (tm *tracing) RegisterEmpty(ctx context.Context) error {
	ctx, span := tm.tracer.Start(ctx, "register-empty")
	defer span.End()

	return tm.svc.RegisterEmpty(ctx)
}

func (tm *tracing) Finish(ctx context.Context) error {
	ctx, span := tm.tracer.Start(ctx, "finish")
	defer span.End()

	return tm.svc.Finish(ctx)
}

func (tm *tracing) Wait(ctx context.Context) ([]string, error) {
	ctx, span := tm.tracer.Start(ctx, "wait")
	defer span.End()

	return tm.svc.Wait(ctx)
}

func (tm *tracing) Status(ctx context.Context) (coordinator.Status, error) {
	ctx, span := tm.tracer.Start(ctx, "status")
	defer span.End()

	return tm.svc.Status(ctx)
}
