package api

import (
	"context"
	"errors"
	"sync"

	"github.com/simplert/srt/internal/ops"
	"github.com/simplert/srt/internal/tunnel"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Version is reported by GetStatus.
const Version = "0.1.0-dev"

type handler struct {
	UnimplementedSimpleRTServer
	ops *ops.Ops
}

func (h *handler) GetStatus(ctx context.Context, req *Empty) (*StatusResponse, error) {
	return &StatusResponse{Version: Version, Relay: h.ops.Status()}, nil
}

func (h *handler) StartRelay(ctx context.Context, req *Empty) (*StartRelayResponse, error) {
	var (
		mu    sync.Mutex
		steps []ops.ProgressEvent
	)
	err := h.ops.StartRelay(func(e ops.ProgressEvent) {
		mu.Lock()
		steps = append(steps, e)
		mu.Unlock()
	})
	if err != nil {
		return nil, withSteps(statusOf(err), steps).Err()
	}
	return &StartRelayResponse{Session: h.ops.Status().Tunnel.Session, Steps: steps}, nil
}

func (h *handler) StopRelay(ctx context.Context, req *Empty) (*Empty, error) {
	if err := h.ops.StopRelay(ctx); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

func toStatus(err error) error {
	return statusOf(err).Err()
}

func statusOf(err error) *status.Status {
	switch {
	case errors.Is(err, tunnel.ErrAlreadyRunning), errors.Is(err, tunnel.ErrDraining):
		return status.New(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.New(codes.DeadlineExceeded, err.Error())
	default:
		return status.New(codes.Internal, err.Error())
	}
}
