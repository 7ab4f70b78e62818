package dashboard

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/simplert/srt/internal/config"
	"github.com/simplert/srt/internal/ops"
	"github.com/simplert/srt/internal/tunnel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	t.Setenv("SRT_CONFIG_DIR", t.TempDir())
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	noAccessory := func(config.AccessoryConfig) (*os.File, error) {
		return nil, errors.New("no accessory attached")
	}
	noTun := func(config.TunConfig) (*os.File, error) {
		return nil, errors.New("no tun device")
	}
	o := ops.New(config.Default(), tunnel.New(), ops.WithEndpoints(noTun, noAccessory))

	ts := httptest.NewServer(NewServer(":0", o).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestLogBufferRing(t *testing.T) {
	b := newLogBuffer(2)
	b.add(LogEntry{Message: "a"})
	b.add(LogEntry{Message: "b"})
	b.add(LogEntry{Message: "c"})

	got := b.snapshot()
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Message)
	assert.Equal(t, "c", got[1].Message)

	backlog, ch, unsubscribe := b.subscribe()
	assert.Len(t, backlog, 2)
	b.add(LogEntry{Message: "d"})
	assert.Equal(t, "d", (<-ch).Message)
	unsubscribe()
	b.add(LogEntry{Message: "e"})
	assert.Len(t, ch, 0)
}

func TestTeeHandlerKeepsBoundAttrs(t *testing.T) {
	buf := newLogBuffer(10)
	inner := slog.NewTextHandler(&strings.Builder{}, &slog.HandlerOptions{Level: slog.LevelDebug})
	log := slog.New(newTeeHandler(inner, buf)).With("session", "ab12cd34").WithGroup("pkt")

	log.Debug("forwarded", "bytes", 4)

	got := buf.snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, "DEBUG", got[0].Level)
	assert.Equal(t, "forwarded session=ab12cd34 pkt.bytes=4", got[0].Message)
}

func TestStatusEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var st ops.Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, ops.StateStopped, st.State)
	assert.False(t, st.Running)
}

func TestStartEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/start")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Post(ts.URL+"/api/start", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "no tun device", body["error"])
}

func TestStopEndpointIdle(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/stop", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogStream(t *testing.T) {
	ts := newTestServer(t)
	slog.Info("before connect")

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/logs/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var e LogEntry
	require.NoError(t, conn.ReadJSON(&e))
	assert.Equal(t, "before connect", e.Message)

	// The failed start is logged step by step.
	resp, err := http.Post(ts.URL+"/api/start", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()

	for {
		require.NoError(t, conn.ReadJSON(&e))
		if e.Level == "ERROR" {
			break
		}
	}
	assert.Contains(t, e.Message, "TUN endpoint")
	assert.Contains(t, e.Message, "no tun device")
}
