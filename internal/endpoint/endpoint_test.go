package endpoint

import (
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/simplert/srt/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in      string
		network string
		addr    string
	}{
		{"unix:/run/srt/acc.sock", "unix", "/run/srt/acc.sock"},
		{"tcp:127.0.0.1:7000", "tcp", "127.0.0.1:7000"},
		{"file:/dev/usb_accessory", "file", "/dev/usb_accessory"},
		{"/dev/usb_accessory", "file", "/dev/usb_accessory"},
		{"", "file", ""},
	}
	for _, tt := range tests {
		network, addr := ParseAddress(tt.in)
		assert.Equal(t, tt.network, network, tt.in)
		assert.Equal(t, tt.addr, addr, tt.in)
	}
}

// roundTrip writes through the accessory file and reads it back on conn.
func roundTrip(t *testing.T, f *os.File, conn net.Conn) {
	t.Helper()
	msg := []byte{0x45, 0x00, 0x00, 0x1c}
	_, err := f.Write(msg)
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	got := make([]byte, len(msg))
	_, err = io.ReadFull(conn, got)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func acceptOne(t *testing.T, ln net.Listener) <-chan net.Conn {
	t.Helper()
	ch := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			close(ch)
			return
		}
		ch <- c
	}()
	return ch
}

func TestOpenAccessorySockets(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "acc.sock")
	unixLn, err := net.Listen("unix", sock)
	require.NoError(t, err)
	defer unixLn.Close()

	tcpLn, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer tcpLn.Close()

	for _, tc := range []struct {
		name string
		ln   net.Listener
		path string
	}{
		{"unix", unixLn, "unix:" + sock},
		{"tcp", tcpLn, "tcp:" + tcpLn.Addr().String()},
	} {
		t.Run(tc.name, func(t *testing.T) {
			accepted := acceptOne(t, tc.ln)

			f, err := OpenAccessory(config.AccessoryConfig{Path: tc.path, FD: -1})
			require.NoError(t, err)
			defer f.Close()

			conn, ok := <-accepted
			require.True(t, ok)
			defer conn.Close()

			roundTrip(t, f, conn)
		})
	}
}

func TestOpenAccessoryDevicePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usb_accessory")
	require.NoError(t, os.WriteFile(path, nil, 0600))

	f, err := OpenAccessory(config.AccessoryConfig{Path: "file:" + path, FD: -1})
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Write([]byte("abc"))
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
}

func TestOpenAccessoryErrors(t *testing.T) {
	_, err := OpenAccessory(config.AccessoryConfig{Path: filepath.Join(t.TempDir(), "missing"), FD: -1})
	assert.Error(t, err)

	_, err = OpenAccessory(config.AccessoryConfig{Path: "unix:" + filepath.Join(t.TempDir(), "none.sock"), FD: -1})
	assert.ErrorContains(t, err, "dialing accessory")
}
