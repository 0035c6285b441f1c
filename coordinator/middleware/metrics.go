package middleware

import (
	"context"
	"time"

	"github.com/go-kit/kit/metrics"

	"github.com/boostmesh/boostmesh/coordinator"
)

var _ coordinator.Service = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	svc     coordinator.Service
}

func Metrics(counter metrics.Counter, latency metrics.Histogram, svc coordinator.Service) coordinator.Service {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		svc:     svc,
	}
}

func (mm *metricsMiddleware) Register(ctx context.Context, addr string) error {
	defer func(begin time.Time) {
		mm.counter.With("method", "register").Add(1)
		mm.latency.With("method", "register").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Register(ctx, addr)
}

func (mm *metricsMiddleware) RegisterEmpty(ctx context.Context) error {
	defer func(begin time.Time) {
		mm.counter.With("method", "register-empty").Add(1)
		mm.latency.With("method", "register-empty").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.RegisterEmpty(ctx)
}

func (mm *metricsMiddleware) Finish(ctx context.Context) error {
	defer func(begin time.Time) {
		mm.counter.With("method", "finish").Add(1)
		mm.latency.With("method", "finish").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Finish(ctx)
}

func (mm *metricsMiddleware) Wait(ctx context.Context) ([]string, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "wait").Add(1)
		mm.latency.With("method", "wait").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Wait(ctx)
}

func (mm *metricsMiddleware) Status(ctx context.Context) (coordinator.Status, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "status").Add(1)
		mm.latency.With("method", "status").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Status(ctx)
}
