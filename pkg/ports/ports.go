// Package ports finds a free listen port for a worker, offset by its slot
// identity so that several workers sharing a host do not probe the same
// range in lockstep.
package ports

import (
	"fmt"
	"log/slog"
	"net"

	"github.com/boostmesh/boostmesh/pkg/errors"
)

const (
	// MaxPort is the highest candidate port ever probed.
	MaxPort = 65535

	maxAttempts = 1000
)

// Find binds a free TCP port starting at basePort + workerSlot*slotsPerMachine,
// incrementing by one on every bind failure. It returns the bound listener and
// the chosen port; the caller keeps the listener open until the port has been
// announced to the coordinator and closes it before the engine network layer
// rebinds it.
//
// Probing only guards against single-host contention. Another host claiming
// the same port between announce and rebind remains a residual risk.
func Find(basePort, workerSlot, slotsPerMachine int, logger *slog.Logger) (net.Listener, int, error) {
	if basePort <= 0 || basePort > MaxPort {
		return nil, 0, fmt.Errorf("base port %d out of range: %w", basePort, errors.ErrPortRangeExceeded)
	}

	candidate := basePort + workerSlot*slotsPerMachine

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if candidate > MaxPort {
			return nil, 0, fmt.Errorf("candidate port %d exceeds %d after %d attempts: %w", candidate, MaxPort, attempt, errors.ErrPortRangeExceeded)
		}

		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", candidate))
		if err != nil {
			logger.Debug("port busy, trying next",
				slog.Int("port", candidate),
				slog.Int("attempt", attempt),
				slog.Any("error", err),
			)
			candidate++

			continue
		}

		logger.Info("allocated listen port",
			slog.Int("port", candidate),
			slog.Int("base_port", basePort),
			slog.Int("worker_slot", workerSlot),
		)

		return ln, candidate, nil
	}

	return nil, 0, fmt.Errorf("gave up after %d attempts from base %d: %w", maxAttempts, basePort, errors.ErrPortRangeExceeded)
}
