//go:build unix

package api

import (
	"context"
	"errors"
	"net"
	"os"
	"testing"
	"time"

	"github.com/simplert/srt/internal/config"
	"github.com/simplert/srt/internal/ops"
	"github.com/simplert/srt/internal/tunnel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func endpointPair(t *testing.T, name string, peers chan<- *os.File) (*os.File, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, err
	}
	peer := os.NewFile(uintptr(fds[0]), name+"-peer")
	t.Cleanup(func() { peer.Close() })
	peers <- peer
	return os.NewFile(uintptr(fds[1]), name), nil
}

func startServer(t *testing.T) (*Client, <-chan *os.File) {
	t.Helper()
	peers := make(chan *os.File, 16)
	client := serve(t, ops.WithEndpoints(
		func(config.TunConfig) (*os.File, error) { return endpointPair(t, "tun", peers) },
		func(config.AccessoryConfig) (*os.File, error) { return endpointPair(t, "accessory", peers) },
	))
	return client, peers
}

func serve(t *testing.T, opts ...ops.Option) *Client {
	t.Helper()
	t.Setenv("SRT_CONFIG_DIR", t.TempDir())
	o := ops.New(config.Default(), tunnel.New(), opts...)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := NewServer(o, lis.Addr().String())
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := Dial(ctx, lis.Addr().String())
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func TestRelayLifecycleOverGRPC(t *testing.T) {
	client, peers := startServer(t)
	ctx := context.Background()

	st, err := client.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, Version, st.Version)
	assert.Equal(t, ops.StateStopped, st.Relay.State)

	started, err := client.StartRelay(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, started.Session)
	require.Len(t, started.Steps, 6)
	assert.Equal(t, "completed", started.Steps[5].Status)

	st, err = client.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, ops.StateRunning, st.Relay.State)
	assert.True(t, st.Relay.Running)
	assert.Equal(t, started.Session, st.Relay.Tunnel.Session)

	_, err = client.StartRelay(ctx)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	// Closing the peers lets the forwarders' reads return during Stop.
	go func() {
		time.Sleep(20 * time.Millisecond)
		for i := 0; i < 2; i++ {
			(<-peers).Close()
		}
	}()
	require.NoError(t, client.StopRelay(ctx))

	st, err = client.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, ops.StateStopped, st.Relay.State)
	assert.False(t, st.Relay.Running)
}

func TestStopIdleOverGRPC(t *testing.T) {
	client, _ := startServer(t)
	require.NoError(t, client.StopRelay(context.Background()))
}

func TestDialUnreachable(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	lis.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, err = Dial(ctx, addr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStartRelayFailureCarriesSteps(t *testing.T) {
	peers := make(chan *os.File, 4)
	client := serve(t, ops.WithEndpoints(
		func(config.TunConfig) (*os.File, error) { return endpointPair(t, "tun", peers) },
		func(config.AccessoryConfig) (*os.File, error) { return nil, errors.New("no accessory attached") },
	))

	resp, err := client.StartRelay(context.Background())
	require.Error(t, err)
	assert.Equal(t, codes.Internal, status.Code(err))
	require.NotNil(t, resp)
	assert.Empty(t, resp.Session)

	require.Len(t, resp.Steps, 4)
	assert.Equal(t, ops.ProgressEvent{Step: 1, Total: 3, Label: "TUN endpoint", Status: "completed", Message: "tun"}, resp.Steps[1])
	assert.Equal(t, ops.ProgressEvent{
		Step:   2,
		Total:  3,
		Label:  "Accessory endpoint",
		Status: "failed",
		Error:  "no accessory attached",
	}, resp.Steps[3])

	st, err := client.GetStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ops.StateError, st.Relay.State)
}
