// Package rendezvous implements the worker side of the address-discovery
// handshake that runs before distributed training starts, plus the retried
// bring-up of the engine's network layer from the discovered peer list.
package rendezvous

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/boostmesh/boostmesh/pkg/errors"
)

// Wire sentinels of the line protocol.
const (
	IgnoreSentinel   = "IGNORE"
	FinishedSentinel = "FINISHED"
)

// Barrier is a collective synchronization point across the full worker set,
// provided by the host framework. Await returns once every participating
// worker has arrived.
type Barrier interface {
	Await(ctx context.Context) error
}

// ClientConfig bounds the handshake's blocking I/O. Zero values fall back
// to the transport defaults, which can block for a long time; callers that
// need bounded startup latency should set both.
type ClientConfig struct {
	DialTimeout time.Duration
	ReadTimeout time.Duration
}

// Client announces one worker to the coordinator and collects the peer
// list. Socket failures surface immediately and are not retried here;
// retrying the handshake is the caller's decision.
type Client struct {
	coordinator string
	cfg         ClientConfig
	logger      *slog.Logger
}

func NewClient(coordinatorAddr string, cfg ClientConfig, logger *slog.Logger) *Client {
	return &Client{
		coordinator: coordinatorAddr,
		cfg:         cfg,
		logger:      logger,
	}
}

// Announcement describes this worker's part in the handshake.
type Announcement struct {
	// LocalPort is the port allocated for the engine's network layer.
	LocalPort int

	// EmptyPartition sends the IGNORE sentinel instead of an address; the
	// worker then takes no part in training and receives no peer list.
	EmptyPartition bool

	// PartitionZero marks the single designated worker that reports
	// FINISHED to the coordinator after the barrier.
	PartitionZero bool

	// Barrier, when non-nil, is awaited by every worker between announcing
	// and reading the peer list.
	Barrier Barrier
}

// Announce performs the handshake. It returns the ordered peer address list
// for active workers, or nil for an empty partition. Every non-empty worker
// receives the identical list; the engine assigns ranks by list position.
func (c *Client) Announce(ctx context.Context, a Announcement) ([]string, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return nil, stderrors.Join(errors.ErrRendezvous, err)
	}
	defer conn.Close()

	line := IgnoreSentinel
	if !a.EmptyPartition {
		host, _, err := net.SplitHostPort(conn.LocalAddr().String())
		if err != nil {
			return nil, stderrors.Join(errors.ErrRendezvous, err)
		}
		line = net.JoinHostPort(host, strconv.Itoa(a.LocalPort))
	}

	if _, err := fmt.Fprintf(conn, "%s\n", line); err != nil {
		return nil, stderrors.Join(errors.ErrRendezvous, err)
	}
	c.logger.Info("announced to coordinator",
		slog.String("coordinator", c.coordinator),
		slog.String("line", line),
	)

	if a.Barrier != nil {
		if err := a.Barrier.Await(ctx); err != nil {
			return nil, stderrors.Join(errors.ErrRendezvous, err)
		}
		if a.PartitionZero {
			if err := c.sendFinished(ctx); err != nil {
				return nil, err
			}
		}
	}

	if a.EmptyPartition {
		c.logger.Info("empty partition, skipping peer list")

		return nil, nil
	}

	if c.cfg.ReadTimeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout)); err != nil {
			return nil, stderrors.Join(errors.ErrRendezvous, err)
		}
	}

	reply, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return nil, stderrors.Join(errors.ErrRendezvous, err)
	}

	peers := strings.Split(strings.TrimSpace(reply), ",")
	c.logger.Info("received peer list", slog.Int("peers", len(peers)))

	return peers, nil
}

// sendFinished opens a second connection and reports that rendezvous
// collection is complete.
func (c *Client) sendFinished(ctx context.Context) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return stderrors.Join(errors.ErrRendezvous, err)
	}
	defer conn.Close()

	if _, err := fmt.Fprintf(conn, "%s\n", FinishedSentinel); err != nil {
		return stderrors.Join(errors.ErrRendezvous, err)
	}
	c.logger.Info("reported rendezvous finished")

	return nil
}

func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	d := net.Dialer{Timeout: c.cfg.DialTimeout}

	return d.DialContext(ctx, "tcp", c.coordinator)
}
