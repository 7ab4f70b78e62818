package api

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
)

// Client talks to the control API of a running daemon.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to the daemon at addr and waits until the connection is
// ready or ctx is done.
func Dial(ctx context.Context, addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	)
	if err != nil {
		return nil, fmt.Errorf("api client for %s: %w", addr, err)
	}

	conn.Connect()
	for s := conn.GetState(); s != connectivity.Ready; s = conn.GetState() {
		if !conn.WaitForStateChange(ctx, s) {
			conn.Close()
			return nil, fmt.Errorf("connecting to %s: %w", addr, ctx.Err())
		}
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() {
	c.conn.Close()
}

func call[Resp any](ctx context.Context, c *Client, method string) (*Resp, error) {
	resp := new(Resp)
	err := c.conn.Invoke(ctx, "/"+serviceName+"/"+method, &Empty{}, resp)
	return resp, err
}

func (c *Client) GetStatus(ctx context.Context) (*StatusResponse, error) {
	return call[StatusResponse](ctx, c, "GetStatus")
}

// StartRelay asks the daemon to start the relay. The returned response is
// never nil: when the start fails, Steps holds the progress the daemon
// reported up to and including the failed step.
func (c *Client) StartRelay(ctx context.Context) (*StartRelayResponse, error) {
	resp, err := call[StartRelayResponse](ctx, c, "StartRelay")
	if err != nil {
		resp.Steps = stepsFromError(err)
	}
	return resp, err
}

func (c *Client) StopRelay(ctx context.Context) error {
	_, err := call[Empty](ctx, c, "StopRelay")
	return err
}
