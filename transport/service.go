package transport

import (
	"context"

	"google.golang.org/grpc"
)

const (
	ServiceName   = "salesroom.v1.Dashboard"
	ConnectMethod = "/salesroom.v1.Dashboard/Connect"
	StatsMethod   = "/salesroom.v1.Dashboard/Stats"
)

type StatsRequest struct{}

type StatsResponse struct {
	Dashboards int               `json:"dashboards"`
	Controls   int               `json:"controls"`
	Counters   map[string]uint64 `json:"counters"`
}

// DashboardServer is the server API of the real-time channel.
type DashboardServer interface {
	// Connect is a bidirectional stream of domain.Envelope values.
	Connect(stream grpc.ServerStream) error
	Stats(ctx context.Context, req *StatsRequest) (*StatsResponse, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DashboardServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Stats", Handler: statsHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Connect", Handler: connectHandler, ServerStreams: true, ClientStreams: true},
	},
	Metadata: "salesroom/v1/dashboard",
}

func RegisterDashboardServer(s grpc.ServiceRegistrar, srv DashboardServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func connectHandler(srv any, stream grpc.ServerStream) error {
	return srv.(DashboardServer).Connect(stream)
}

func statsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(StatsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DashboardServer).Stats(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: StatsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DashboardServer).Stats(ctx, req.(*StatsRequest))
	}
	return interceptor(ctx, in, info, handler)
}
