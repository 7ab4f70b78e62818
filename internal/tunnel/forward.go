package tunnel

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/simplert/srt/internal/hexdump"
)

// BufferSize is the size of a single read from the source endpoint.
const BufferSize = 4096

// Direction selects which endpoint a forwarder reads from.
type Direction int

const (
	TunToAccessory Direction = iota
	AccessoryToTun
)

func (d Direction) String() string {
	switch d {
	case TunToAccessory:
		return "tun->acc"
	case AccessoryToTun:
		return "acc->tun"
	default:
		return "unknown"
	}
}

// spawn runs l on its own goroutine. Whatever ends the forwarder, the
// session flag is cleared so the sibling exits on its next check.
func (s *session) spawn(l link) {
	s.wg.Add(1)
	s.live.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.live.Add(-1)
		defer l.close()
		defer func() {
			if s.halt() {
				slog.Info("tunnel session ended", "session", s.id, "dir", l.dir)
			}
		}()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("tunnel: panic in forwarder", "session", s.id, "dir", l.dir, "panic", r)
			}
		}()
		s.forward(l)
	}()
}

func (s *session) forward(l link) {
	log := slog.With("session", s.id, "dir", l.dir)
	log.Debug("forwarder started")

	c := &s.stats[l.dir]
	buf := make([]byte, BufferSize)
	for s.running.Load() {
		n, err := l.src.Read(buf)
		if n == 0 || err != nil {
			if err == nil || errors.Is(err, io.EOF) {
				log.Info("endpoint closed")
			} else {
				log.Warn("read failed", "error", err)
			}
			return
		}

		if _, err := l.dst.Write(buf[:n]); err != nil {
			log.Warn("write failed", "error", err)
			return
		}
		c.packets.Add(1)
		c.bytes.Add(uint64(n))

		if log.Enabled(context.Background(), slog.LevelDebug) {
			log.Debug("forwarded", "bytes", n, "data", hexdump.Preview(buf[:n]))
		}
	}
	log.Debug("forwarder stopped")
}
