package transport

import (
	"context"
	"io"
	"log/slog"
	"net"
	"salesroom/auth"
	"salesroom/clock"
	"salesroom/domain"
	"salesroom/runtime"
	"salesroom/runtime/workers"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type harness struct {
	client        *Client
	authenticator *auth.Authenticator
	orchestrator  *runtime.Orchestrator
}

func startServer(t *testing.T, authenticator *auth.Authenticator, token string) *harness {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	orchestrator := runtime.NewOrchestrator(log, clock.Real{}, workers.NewSupervisor(log, 10*time.Millisecond),
		runtime.NewRegistry(), nil, runtime.Options{
			BufferSize:     64,
			AlertInterval:  time.Hour,
			HealthInterval: time.Hour,
			Location:       time.UTC,
		})
	require.NoError(t, orchestrator.Start(context.Background()))

	listener := bufconn.Listen(1 << 20)
	server := grpc.NewServer(
		grpc.ChainStreamInterceptor(authenticator.StreamInterceptor()),
		grpc.ChainUnaryInterceptor(authenticator.UnaryInterceptor()),
	)
	RegisterDashboardServer(server, NewServer(log, orchestrator, authenticator, 32))
	go func() { _ = server.Serve(listener) }()

	client, err := NewClient("passthrough:///bufnet", token,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
		server.Stop()
		orchestrator.Stop()
	})
	return &harness{client: client, authenticator: authenticator, orchestrator: orchestrator}
}

func recvType(t *testing.T, session *Session, want domain.EventType) domain.Envelope {
	t.Helper()
	for {
		env, err := session.Recv()
		require.NoError(t, err)
		if env.Type == want {
			return env
		}
	}
}

func TestConnect_Dashboard_Is_Hydrated_Then_Sees_Updates(t *testing.T) {
	req := require.New(t)
	h := startServer(t, nil, "")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Given a dashboard connected
	dashboard, err := h.client.Connect(ctx)
	req.NoError(err)
	req.NoError(dashboard.Join(domain.DashboardRoom))

	// Then its hydration arrives in order
	for _, want := range []domain.EventType{domain.DashboardSnapshotEvent, domain.QuotaSnapshotEvent, domain.ForecastSnapshotEvent} {
		env, err := dashboard.Recv()
		req.NoError(err)
		req.Equal(want, env.Type)
	}

	// When a control connection sets an active deal
	control, err := h.client.Connect(ctx)
	req.NoError(err)
	req.NoError(control.Join(domain.ControlRoom))
	recvType(t, control, domain.ForecastSnapshotEvent)
	req.NoError(control.Send(domain.SetActiveDeal, domain.SetActiveDealPayload{DealID: "d1", SalespersonID: "s1", CustomerName: "Acme"}))

	// Then the control gets an ack and the dashboard a new snapshot
	ack := recvType(t, control, domain.UpdateAckEvent)
	var payload domain.UpdateAck
	req.NoError(ack.Decode(&payload))
	req.Equal(domain.UpdateAck{Success: true, EntityID: "d1"}, payload)

	env := recvType(t, dashboard, domain.DashboardSnapshotEvent)
	var snapshot domain.DashboardSnapshot
	req.NoError(env.Decode(&snapshot))
	req.Len(snapshot, 1)
	req.Equal("Acme", snapshot[0].Value.CustomerName)
}

func TestConnect_Dashboard_Update_Gets_Validation_Error(t *testing.T) {
	req := require.New(t)
	h := startServer(t, nil, "")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dashboard, err := h.client.Connect(ctx)
	req.NoError(err)
	req.NoError(dashboard.Join(domain.DashboardRoom))
	recvType(t, dashboard, domain.ForecastSnapshotEvent)

	req.NoError(dashboard.Send(domain.SetQuota, domain.SetQuotaPayload{SalespersonID: "s1", SalespersonName: "Ana", Target: lo.ToPtr(1.0)}))

	env := recvType(t, dashboard, domain.ValidationErrorEvent)
	var msg domain.ValidationError
	req.NoError(env.Decode(&msg))
	req.NotEmpty(msg.Message)
}

func TestConnect_Unknown_Event_Keeps_Connection_Open(t *testing.T) {
	req := require.New(t)
	h := startServer(t, nil, "")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	control, err := h.client.Connect(ctx)
	req.NoError(err)
	req.NoError(control.Join(domain.ControlRoom))
	recvType(t, control, domain.ForecastSnapshotEvent)

	// When an unsupported event is sent
	req.NoError(control.Send("rename-everything", map[string]string{"x": "y"}))
	recvType(t, control, domain.ValidationErrorEvent)

	// Then the connection still accepts updates
	req.NoError(control.Send(domain.RegisterMeeting, domain.RegisterMeetingPayload{SalespersonID: "s1"}))
	recvType(t, control, domain.UpdateAckEvent)
}

func TestConnect_Disconnect_Leaves_Room(t *testing.T) {
	req := require.New(t)
	h := startServer(t, nil, "")
	ctx, cancel := context.WithCancel(context.Background())

	dashboard, err := h.client.Connect(ctx)
	req.NoError(err)
	req.NoError(dashboard.Join(domain.DashboardRoom))
	recvType(t, dashboard, domain.ForecastSnapshotEvent)
	req.Equal(1, h.orchestrator.Registry().Count(domain.DashboardRoom))

	cancel()

	req.Eventually(func() bool {
		return h.orchestrator.Registry().Count(domain.DashboardRoom) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestConnect_Control_Requires_Role_When_Auth_Enabled(t *testing.T) {
	req := require.New(t)
	authenticator := auth.NewAuthenticator("transport_secret", time.Hour)
	token, err := authenticator.GenerateToken("viewer-1", []string{auth.RoleViewer})
	req.NoError(err)
	h := startServer(t, authenticator, token)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session, err := h.client.Connect(ctx)
	req.NoError(err)
	req.NoError(session.Join(domain.ControlRoom))

	env := recvType(t, session, domain.ValidationErrorEvent)
	var msg domain.ValidationError
	req.NoError(env.Decode(&msg))
	req.Contains(msg.Message, "role")
	req.Zero(h.orchestrator.Registry().Count(domain.ControlRoom))
}

func TestConnect_Without_Token_Is_Unauthenticated(t *testing.T) {
	req := require.New(t)
	h := startServer(t, auth.NewAuthenticator("transport_secret", time.Hour), "")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session, err := h.client.Connect(ctx)
	if err == nil {
		_, err = session.Recv()
	}

	req.Equal(codes.Unauthenticated, status.Code(err))
}

func TestStats(t *testing.T) {
	req := require.New(t)
	h := startServer(t, nil, "")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dashboard, err := h.client.Connect(ctx)
	req.NoError(err)
	req.NoError(dashboard.Join(domain.DashboardRoom))
	recvType(t, dashboard, domain.ForecastSnapshotEvent)

	stats, err := h.client.Stats(ctx)

	req.NoError(err)
	req.Equal(1, stats.Dashboards)
	req.Equal(uint64(1), stats.Counters["hydrations"])
}
