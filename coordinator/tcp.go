package coordinator

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/boostmesh/boostmesh/rendezvous"
)

// TCPServer speaks the line protocol of the rendezvous handshake: one line
// in per connection, and for address lines one peer-list line out once the
// session completes.
type TCPServer struct {
	address string
	svc     Service
	logger  *slog.Logger
}

func NewTCPServer(address string, svc Service, logger *slog.Logger) *TCPServer {
	return &TCPServer{
		address: address,
		svc:     svc,
		logger:  logger,
	}
}

// Listen serves rendezvous connections until ctx is cancelled.
func (s *TCPServer) Listen(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	s.logger.Info("rendezvous server listening", slog.String("address", ln.Addr().String()))

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			return fmt.Errorf("accept failed: %w", err)
		}

		go s.handle(ctx, conn)
	}
}

func (s *TCPServer) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		s.logger.Warn("failed to read announcement", slog.Any("error", err))

		return
	}
	line = strings.TrimSpace(line)

	switch line {
	case rendezvous.IgnoreSentinel:
		if err := s.svc.RegisterEmpty(ctx); err != nil {
			s.logger.Warn("failed to register empty partition", slog.Any("error", err))
		}
	case rendezvous.FinishedSentinel:
		if err := s.svc.Finish(ctx); err != nil {
			s.logger.Warn("failed to finish session", slog.Any("error", err))
		}
	default:
		s.serveWorker(ctx, conn, line)
	}
}

// serveWorker registers the address and keeps the connection open until the
// peer list is ready, then writes it back.
func (s *TCPServer) serveWorker(ctx context.Context, conn net.Conn, addr string) {
	if err := s.svc.Register(ctx, addr); err != nil {
		s.logger.Warn("rejected announcement",
			slog.String("address", addr),
			slog.Any("error", err),
		)

		return
	}

	peers, err := s.svc.Wait(ctx)
	if err != nil {
		s.logger.Warn("session wait aborted", slog.Any("error", err))

		return
	}

	if _, err := fmt.Fprintf(conn, "%s\n", strings.Join(peers, ",")); err != nil {
		s.logger.Warn("failed to send peer list",
			slog.String("address", addr),
			slog.Any("error", err),
		)
	}
}
