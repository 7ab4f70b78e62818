package api

// Service definitions are hand-written rather than generated from a
// .proto file. The JSON codec in codec.go lets plain Go structs travel as
// gRPC messages.

import (
	"context"

	"github.com/simplert/srt/internal/ops"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const serviceName = "api.v1.SimpleRT"

// ── Request / Response types ────────────────────────────────────────────────

type Empty struct{}

type StatusResponse struct {
	Version string     `json:"version"`
	Relay   ops.Status `json:"relay"`
}

type StartRelayResponse struct {
	Session string              `json:"session"`
	Steps   []ops.ProgressEvent `json:"steps,omitempty"`
}

// ── Service interface ───────────────────────────────────────────────────────

type SimpleRTServer interface {
	GetStatus(ctx context.Context, req *Empty) (*StatusResponse, error)
	StartRelay(ctx context.Context, req *Empty) (*StartRelayResponse, error)
	StopRelay(ctx context.Context, req *Empty) (*Empty, error)
}

// ── Registration ────────────────────────────────────────────────────────────

func RegisterSimpleRTServer(s *grpc.Server, srv SimpleRTServer) {
	methods := []grpc.MethodDesc{
		unaryMethod("GetStatus", func(srv any, ctx context.Context, dec func(any) error) (any, error) {
			req := new(Empty)
			if err := dec(req); err != nil {
				return nil, err
			}
			return srv.(SimpleRTServer).GetStatus(ctx, req)
		}),
		unaryMethod("StartRelay", func(srv any, ctx context.Context, dec func(any) error) (any, error) {
			req := new(Empty)
			if err := dec(req); err != nil {
				return nil, err
			}
			return srv.(SimpleRTServer).StartRelay(ctx, req)
		}),
		unaryMethod("StopRelay", func(srv any, ctx context.Context, dec func(any) error) (any, error) {
			req := new(Empty)
			if err := dec(req); err != nil {
				return nil, err
			}
			return srv.(SimpleRTServer).StopRelay(ctx, req)
		}),
	}

	sd := grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*SimpleRTServer)(nil),
		Methods:     methods,
		Streams:     []grpc.StreamDesc{},
	}
	s.RegisterService(&sd, srv)
}

// unaryMethod builds a grpc.MethodDesc with interceptor support.
func unaryMethod(name string, fn func(srv any, ctx context.Context, dec func(any) error) (any, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			if interceptor == nil {
				return fn(srv, ctx, dec)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/" + name}
			return interceptor(ctx, nil, info, func(ctx context.Context, _ any) (any, error) {
				return fn(srv, ctx, dec)
			})
		},
	}
}

// ── Unimplemented base ──────────────────────────────────────────────────────

type UnimplementedSimpleRTServer struct{}

func (UnimplementedSimpleRTServer) GetStatus(context.Context, *Empty) (*StatusResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "not implemented")
}
func (UnimplementedSimpleRTServer) StartRelay(context.Context, *Empty) (*StartRelayResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "not implemented")
}
func (UnimplementedSimpleRTServer) StopRelay(context.Context, *Empty) (*Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "not implemented")
}
