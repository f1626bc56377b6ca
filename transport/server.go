// Package transport exposes the sales room over a gRPC bidirectional stream of JSON envelopes.
package transport

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"salesroom/auth"
	"salesroom/contract"
	"salesroom/domain"
	"salesroom/errors"
	"salesroom/observability"
	"salesroom/sink"
	"sync/atomic"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Gateway is what the transport needs from the runtime.
type Gateway interface {
	Join(ctx context.Context, connectionID string, room domain.Room, sink domain.ConnectionSink) error
	Update(ctx context.Context, connectionID string, in domain.Inbound) error
	Leave(connectionID string)
	Registry() contract.IRegistry
	Counters() *observability.Counters
}

var _ DashboardServer = (*Server)(nil)

type Server struct {
	log                  *slog.Logger
	gateway              Gateway
	authenticator        *auth.Authenticator
	connectionBufferSize int
}

func NewServer(log *slog.Logger, gateway Gateway, authenticator *auth.Authenticator, connectionBufferSize int) *Server {
	return &Server{log: log, gateway: gateway, authenticator: authenticator, connectionBufferSize: connectionBufferSize}
}

// Connect serves one client for its whole lifetime.
// Inbound envelopes are read on a dedicated goroutine; every outbound envelope, including
// validation errors raised here, goes through the connection sink so only this goroutine
// writes to the stream. Leaving is always queued behind the connection's earlier commands.
func (s *Server) Connect(stream grpc.ServerStream) error {
	ctx := stream.Context()
	connectionID := uuid.NewString()
	out := sink.NewStreamSink(s.connectionBufferSize)
	defer out.Close()

	var joined atomic.Bool
	defer func() {
		if joined.Load() {
			s.gateway.Leave(connectionID)
		}
	}()

	s.log.Debug("Connection opened", "connection_id", connectionID)
	recvErr := make(chan error, 1)
	go func(errs chan<- error) {
		for {
			var env domain.Envelope
			if err := stream.RecvMsg(&env); err != nil {
				errs <- err
				return
			}
			if err := s.handle(ctx, connectionID, out, env, &joined); err != nil {
				errs <- err
				return
			}
		}
	}(recvErr)

	for {
		select {
		case <-ctx.Done():
			s.log.Debug("Connection closed", "connection_id", connectionID)
			return nil
		case err := <-recvErr:
			if stderrors.Is(err, io.EOF) {
				// Half-close: the client stopped sending but still listens.
				recvErr = nil
				continue
			}
			if status.Code(err) == codes.Canceled || ctx.Err() != nil {
				return nil
			}
			s.log.Debug("Connection receive failed", "connection_id", connectionID, "error", err)
			return errors.MapToGRPCError(err)
		case env := <-out.Outbound():
			if err := stream.SendMsg(&env); err != nil {
				s.log.Error("failed to push envelope to stream",
					"connection_id", connectionID,
					"type", env.Type,
					"error", err)
				return err
			}
		}
	}
}

// handle routes one inbound envelope. Client mistakes are answered on the stream,
// only a stopped runtime ends the connection.
func (s *Server) handle(ctx context.Context, connectionID string, out *sink.StreamSink, env domain.Envelope, joined *atomic.Bool) error {
	var err error
	switch env.Type {
	case domain.JoinDashboard, domain.JoinControl:
		room, _ := domain.ParseRoom(env.Type)
		if err = s.authenticator.AuthorizeRoom(ctx, room); err != nil {
			s.reject(out, connectionID, err)
			return nil
		}
		joined.Store(true)
		err = s.gateway.Join(ctx, connectionID, room, out)
	default:
		in, decodeErr := domain.DecodeInbound(env)
		if decodeErr != nil {
			s.reject(out, connectionID, decodeErr)
			return nil
		}
		err = s.gateway.Update(ctx, connectionID, in)
	}
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func (s *Server) reject(out *sink.StreamSink, connectionID string, err error) {
	s.gateway.Counters().Rejected.Add(1)
	s.log.Debug("Inbound envelope rejected", "connection_id", connectionID, "error", err)
	env, encodeErr := domain.NewEnvelope(domain.ValidationErrorEvent, domain.ValidationError{Message: err.Error()})
	if encodeErr != nil {
		return
	}
	if !out.Deliver(env) {
		s.gateway.Counters().DroppedMessages.Add(1)
	}
}

func (s *Server) Stats(_ context.Context, _ *StatsRequest) (*StatsResponse, error) {
	registry := s.gateway.Registry()
	return &StatsResponse{
		Dashboards: registry.Count(domain.DashboardRoom),
		Controls:   registry.Count(domain.ControlRoom),
		Counters:   s.gateway.Counters().Snapshot(),
	}, nil
}
