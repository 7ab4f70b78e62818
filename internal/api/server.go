package api

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/simplert/srt/internal/ops"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// Server serves the control API for one Ops.
type Server struct {
	addr string
	gs   *grpc.Server
}

func NewServer(o *ops.Ops, addr string) *Server {
	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(logCalls))
	RegisterSimpleRTServer(gs, &handler{ops: o})
	return &Server{addr: addr, gs: gs}
}

// logCalls records every RPC with its outcome at debug level.
func logCalls(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
	began := time.Now()
	resp, err := next(ctx, req)
	slog.Debug("api call",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"took", time.Since(began))
	return resp, err
}

// Run listens on the configured address and serves until Stop.
func (s *Server) Run() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(lis)
}

// Serve serves on an existing listener until Stop.
func (s *Server) Serve(lis net.Listener) error {
	slog.Info("control API listening", "addr", lis.Addr().String())
	return s.gs.Serve(lis)
}

// Stop lets in-flight calls finish, then closes every connection.
func (s *Server) Stop() {
	s.gs.GracefulStop()
}
