// Package coordinator implements the driver-side rendezvous collector: it
// gathers worker announcements for a fixed-size worker set and hands every
// active worker the identical ordered peer list.
package coordinator

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/boostmesh/boostmesh/pkg/errors"
	"github.com/boostmesh/boostmesh/pkg/storage"
)

// Config fixes the shape of one rendezvous session.
type Config struct {
	// ExpectedWorkers is the total worker count, empty partitions included.
	ExpectedWorkers int

	// BarrierMode waits for the FINISHED sentinel instead of counting
	// announcements; the workers coordinate completion through their
	// barrier.
	BarrierMode bool
}

// Status is a point-in-time view of the session.
type Status struct {
	SessionID string    `json:"session_id"`
	Expected  int       `json:"expected"`
	Announced int       `json:"announced"`
	Ignored   int       `json:"ignored"`
	Completed bool      `json:"completed"`
	Peers     []string  `json:"peers,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

// Service collects one rendezvous session.
type Service interface {
	// Register records an active worker's address. Duplicate addresses are
	// rejected.
	Register(ctx context.Context, addr string) error

	// RegisterEmpty counts a worker whose partition is empty.
	RegisterEmpty(ctx context.Context) error

	// Finish marks collection complete; sent by the designated worker in
	// barrier mode.
	Finish(ctx context.Context) error

	// Wait blocks until the session completes and returns the ordered peer
	// list every active worker receives.
	Wait(ctx context.Context) ([]string, error)

	// Status reports the current session state.
	Status(ctx context.Context) (Status, error)
}

type service struct {
	cfg       Config
	sessionID string
	store     storage.Storage
	logger    *slog.Logger
	startedAt time.Time

	mu        sync.Mutex
	announced int
	ignored   int
	completed bool
	failErr   error
	peers     []string
	done      chan struct{}
}

func NewService(cfg Config, store storage.Storage, logger *slog.Logger) Service {
	return &service{
		cfg:       cfg,
		sessionID: uuid.NewString(),
		store:     store,
		logger:    logger,
		startedAt: time.Now(),
		done:      make(chan struct{}),
	}
}

func (s *service) Register(ctx context.Context, addr string) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil || host == "" {
		return stderrors.Join(errors.ErrInvalidData, err)
	}

	if err := s.store.Create(ctx, addr, addr); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.announced++
	s.logger.Info("worker announced",
		slog.String("address", addr),
		slog.Int("announced", s.announced),
		slog.Int("expected", s.cfg.ExpectedWorkers),
	)
	s.maybeComplete(ctx)

	return nil
}

func (s *service) RegisterEmpty(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ignored++
	s.logger.Info("empty partition announced", slog.Int("ignored", s.ignored))
	s.maybeComplete(context.Background())

	return nil
}

func (s *service) Finish(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("finished sentinel received")
	s.complete(ctx)

	return nil
}

// maybeComplete closes the session once every expected worker has reported,
// unless barrier mode delegates that decision to the FINISHED sentinel.
// Callers hold s.mu.
func (s *service) maybeComplete(ctx context.Context) {
	if s.cfg.BarrierMode || s.completed {
		return
	}
	if s.announced+s.ignored >= s.cfg.ExpectedWorkers {
		s.complete(ctx)
	}
}

// complete freezes the peer list, sorted so every session run distributes
// the same bytes regardless of arrival order. A store failure marks the
// session failed rather than leaving it open: the completion condition has
// already been consumed, so waiters must be released either way. Callers
// hold s.mu.
func (s *service) complete(ctx context.Context) {
	if s.completed {
		return
	}

	values, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error("listing announcements failed", slog.Any("error", err))
		s.failErr = fmt.Errorf("failed to list announcements: %w", err)
		s.completed = true
		close(s.done)

		return
	}

	peers := make([]string, 0, len(values))
	for _, v := range values {
		if addr, ok := v.(string); ok {
			peers = append(peers, addr)
		}
	}
	sort.Strings(peers)

	s.peers = peers
	s.completed = true
	close(s.done)
	s.logger.Info("rendezvous complete",
		slog.String("session_id", s.sessionID),
		slog.Int("peers", len(peers)),
		slog.Int("ignored", s.ignored),
	)
}

func (s *service) Wait(ctx context.Context) ([]string, error) {
	select {
	case <-s.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return nil, s.failErr
	}

	return append([]string(nil), s.peers...), nil
}

func (s *service) Status(_ context.Context) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Status{
		SessionID: s.sessionID,
		Expected:  s.cfg.ExpectedWorkers,
		Announced: s.announced,
		Ignored:   s.ignored,
		Completed: s.completed,
		Peers:     append([]string(nil), s.peers...),
		StartedAt: s.startedAt,
	}, nil
}
