package e2e

import (
	"context"
	"fmt"
	"salesroom/domain"
	"salesroom/transport"
	"time"

	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
)

type BaseGrpcSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseGrpcSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.ServerAddr == "" {
		s.T().Skip("E2E_SERVER_ADDR is not set")
	}
}

func (s *BaseGrpcSuite) header(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// WithSession opens a stream joined to room and hands it to fn within a contextual test step
func (s *BaseGrpcSuite) WithSession(name string, room domain.Room, fn func(ctx context.Context, session *transport.Session)) {
	s.header(name)
	client, err := transport.NewClient(s.Config.ServerAddr, s.Config.ControlToken)
	s.Require().NoError(err, "Failed to connect to gRPC server at "+s.Config.ServerAddr)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	session, err := client.Connect(ctx)
	s.Require().NoError(err)
	s.Require().NoError(session.Join(room))
	fn(ctx, session)
}

// Await reads envelopes until one of type t arrives.
func (s *BaseGrpcSuite) Await(session *transport.Session, t domain.EventType) domain.Envelope {
	for {
		env, err := session.Recv()
		s.Require().NoError(err)
		if s.Config.DebugJSON {
			s.T().Logf("RECEIVED %s %s", env.Type, string(env.Payload))
		}
		if env.Type == t {
			return env
		}
	}
}
