package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/boostmesh/boostmesh/coordinator"
)

var _ coordinator.Service = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger *slog.Logger
	svc    coordinator.Service
}

func Logging(logger *slog.Logger, svc coordinator.Service) coordinator.Service {
	return &loggingMiddleware{
		logger: logger,
		svc:    svc,
	}
}

func (lm *loggingMiddleware) Register(ctx context.Context, addr string) (err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("address", addr),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Register worker failed", args...)

			return
		}
		lm.logger.Info("Register worker completed successfully", args...)
	}(time.Now())

	return lm.svc.Register(ctx, addr)
}

func (lm *loggingMiddleware) RegisterEmpty(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Register empty partition failed", args...)

			return
		}
		lm.logger.Info("Register empty partition completed successfully", args...)
	}(time.Now())

	return lm.svc.RegisterEmpty(ctx)
}

func (lm *loggingMiddleware) Finish(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Finish session failed", args...)

			return
		}
		lm.logger.Info("Finish session completed successfully", args...)
	}(time.Now())

	return lm.svc.Finish(ctx)
}

func (lm *loggingMiddleware) Wait(ctx context.Context) (peers []string, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Int("peers", len(peers)),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Wait for session failed", args...)

			return
		}
		lm.logger.Info("Wait for session completed successfully", args...)
	}(time.Now())

	return lm.svc.Wait(ctx)
}

func (lm *loggingMiddleware) Status(ctx context.Context) (status coordinator.Status, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("session_id", status.SessionID),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Get status failed", args...)

			return
		}
		lm.logger.Debug("Get status completed successfully", args...)
	}(time.Now())

	return lm.svc.Status(ctx)
}
