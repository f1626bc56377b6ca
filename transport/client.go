package transport

import (
	"context"
	"salesroom/domain"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

// Client is a thin caller of the Dashboard service used by the watcher and tests.
type Client struct {
	conn  *grpc.ClientConn
	token string
}

// NewClient connects lazily to target. Extra options are appended to the defaults
// (plaintext transport, JSON content-subtype).
func NewClient(target, token string, opts ...grpc.DialOption) (*Client, error) {
	defaults := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	}
	conn, err := grpc.NewClient(target, append(defaults, opts...)...)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, token: token}, nil
}

func (c *Client) Close() error { return c.conn.Close() }

func (c *Client) withToken(ctx context.Context) context.Context {
	if c.token == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.token)
}

// Connect opens the envelope stream. Canceling ctx closes it.
func (c *Client) Connect(ctx context.Context) (*Session, error) {
	stream, err := c.conn.NewStream(c.withToken(ctx), &ServiceDesc.Streams[0], ConnectMethod)
	if err != nil {
		return nil, err
	}
	return &Session{stream: stream}, nil
}

func (c *Client) Stats(ctx context.Context) (*StatsResponse, error) {
	out := new(StatsResponse)
	if err := c.conn.Invoke(c.withToken(ctx), StatsMethod, &StatsRequest{}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Session is one open Connect stream. Send and Recv may be used from two goroutines.
type Session struct {
	stream grpc.ClientStream
}

func (s *Session) Send(t domain.EventType, payload any) error {
	env, err := domain.NewEnvelope(t, payload)
	if err != nil {
		return err
	}
	return s.stream.SendMsg(&env)
}

// Join sends the join event of room.
func (s *Session) Join(room domain.Room) error {
	t := domain.JoinDashboard
	if room == domain.ControlRoom {
		t = domain.JoinControl
	}
	return s.stream.SendMsg(&domain.Envelope{Type: t})
}

func (s *Session) Recv() (domain.Envelope, error) {
	var env domain.Envelope
	err := s.stream.RecvMsg(&env)
	return env, err
}

func (s *Session) CloseSend() error { return s.stream.CloseSend() }
