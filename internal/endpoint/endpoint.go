// Package endpoint opens the two descriptors a relay session forwards
// between: the TUN interface and the accessory transport.
package endpoint

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"time"

	"github.com/simplert/srt/internal/config"
)

// ErrUnsupported is returned when a TUN device cannot be created on this
// platform. On unix an inherited descriptor still works.
var ErrUnsupported = errors.New("tun devices are not supported on this platform")

const dialTimeout = 10 * time.Second

// ParseAddress splits an accessory address into a network and an address.
// "unix:" and "tcp:" prefixes select a socket; anything else, with or
// without a "file:" prefix, is a device path.
func ParseAddress(s string) (network, addr string) {
	for _, n := range []string{"unix", "tcp", "file"} {
		if rest, ok := strings.CutPrefix(s, n+":"); ok {
			return n, rest
		}
	}
	return "file", s
}

// OpenTun returns the TUN side of a session: a duplicate of the inherited
// descriptor when cfg.FD is set, a freshly created device otherwise.
func OpenTun(cfg config.TunConfig) (*os.File, error) {
	if cfg.FD >= 0 {
		return inherited(cfg.FD, "tun")
	}
	f, err := openTunDevice(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening tun device %q: %w", cfg.Name, err)
	}
	return f, nil
}

// OpenAccessory returns the accessory side of a session.
func OpenAccessory(cfg config.AccessoryConfig) (*os.File, error) {
	if cfg.FD >= 0 {
		return inherited(cfg.FD, "accessory")
	}

	network, addr := ParseAddress(cfg.Path)
	switch network {
	case "unix", "tcp":
		return dialFile(network, addr)
	default:
		f, err := os.OpenFile(addr, os.O_RDWR, 0)
		if err != nil {
			return nil, fmt.Errorf("opening accessory: %w", err)
		}
		slog.Info("accessory opened", "path", addr)
		return f, nil
	}
}

type fileConn interface {
	File() (*os.File, error)
}

// dialFile connects and keeps only a duplicate of the socket descriptor.
func dialFile(network, addr string) (*os.File, error) {
	conn, err := net.DialTimeout(network, addr, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("dialing accessory %s:%s: %w", network, addr, err)
	}
	defer conn.Close()

	fc, ok := conn.(fileConn)
	if !ok {
		return nil, fmt.Errorf("accessory %s connection has no descriptor", network)
	}
	f, err := fc.File()
	if err != nil {
		return nil, fmt.Errorf("accessory descriptor: %w", err)
	}
	slog.Info("accessory connected", "network", network, "addr", addr)
	return f, nil
}
