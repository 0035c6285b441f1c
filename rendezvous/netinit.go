package rendezvous

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/boostmesh/boostmesh/engine"
	"github.com/boostmesh/boostmesh/pkg/errors"
)

const defaultListenTimeout = 120 // seconds

// InitOptions bounds the network bring-up retry. The engine's network layer
// may race against residual socket state from the just-closed probe
// listener, so short transient failures are expected and self-healing.
type InitOptions struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries uint64

	// InitialDelay is the wait before the first retry; it doubles on every
	// subsequent one.
	InitialDelay time.Duration

	// ListenTimeout in seconds, passed through to the engine. Zero uses
	// the default of 120.
	ListenTimeout int
}

// InitNetwork brings up the engine's network layer over the peer list,
// retrying with exponential backoff. After the retry budget is exhausted
// the last engine error is surfaced, wrapped as a network-init failure.
func InitNetwork(ctx context.Context, eng engine.Engine, peers []string, localPort int, opts InitOptions, logger *slog.Logger) error {
	listenTimeout := opts.ListenTimeout
	if listenTimeout <= 0 {
		listenTimeout = defaultListenTimeout
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = opts.InitialDelay
	bo.RandomizationFactor = 0
	bo.Multiplier = 2
	bo.MaxInterval = 10 * time.Minute
	bo.MaxElapsedTime = 0

	attempt := 0
	op := func() error {
		attempt++
		err := eng.NetworkInit(ctx, peers, localPort, listenTimeout, len(peers))
		if err != nil {
			logger.Warn("network init failed",
				slog.Int("attempt", attempt),
				slog.Int("peers", len(peers)),
				slog.Int("local_port", localPort),
				slog.Any("error", err),
			)

			return err
		}

		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, opts.MaxRetries), ctx)); err != nil {
		return stderrors.Join(errors.ErrNetworkInit, err)
	}

	logger.Info("network initialized",
		slog.Int("peers", len(peers)),
		slog.Int("local_port", localPort),
		slog.Int("attempts", attempt),
	)

	return nil
}
