// Package tunnel relays raw packets between a TUN descriptor and an
// accessory descriptor. A Tunnel runs at most one session at a time; each
// session owns two forwarder goroutines, one per direction.
package tunnel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrAlreadyRunning is returned by Start while a session is forwarding.
	ErrAlreadyRunning = errors.New("tunnel already running")
	// ErrDraining is returned by Start when the previous session stopped
	// itself but one of its forwarders is still blocked in a read.
	// Stop must be called to reclaim it.
	ErrDraining = errors.New("previous session still draining")
	// ErrAcquire wraps every failure to turn a raw descriptor into a stream.
	ErrAcquire = errors.New("handle acquisition failed")
)

// Tunnel forwards bytes between two descriptors until stopped or until
// either side fails.
type Tunnel struct {
	mu  sync.Mutex // serialises Start and Stop
	cur atomic.Pointer[session]
}

// New returns an idle Tunnel.
func New() *Tunnel {
	return &Tunnel{}
}

// DirectionStats counts what a forwarder has relayed.
type DirectionStats struct {
	Packets uint64 `json:"packets"`
	Bytes   uint64 `json:"bytes"`
}

// Stats is a snapshot of the current session.
type Stats struct {
	Session        string         `json:"session,omitempty"`
	Started        time.Time      `json:"started,omitempty"`
	Running        bool           `json:"running"`
	TunToAccessory DirectionStats `json:"tun_to_acc"`
	AccessoryToTun DirectionStats `json:"acc_to_tun"`
}

type counters struct {
	packets atomic.Uint64
	bytes   atomic.Uint64
}

func (c *counters) snapshot() DirectionStats {
	return DirectionStats{Packets: c.packets.Load(), Bytes: c.bytes.Load()}
}

type session struct {
	id      string
	started time.Time
	running atomic.Bool
	live    atomic.Int32
	wg      sync.WaitGroup
	ended   chan struct{} // closed when running goes false
	done    chan struct{} // closed when both forwarders returned
	stats   [2]counters
}

func newSession() *session {
	s := &session{
		id:      uuid.New().String()[:8],
		started: time.Now(),
		ended:   make(chan struct{}),
		done:    make(chan struct{}),
	}
	s.running.Store(true)
	return s
}

// halt clears the running flag. It reports whether this call did it.
func (s *session) halt() bool {
	if s.running.CompareAndSwap(true, false) {
		close(s.ended)
		return true
	}
	return false
}

func (s *session) finished() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Start acquires both descriptors and launches one forwarder per direction.
// The caller keeps ownership of tunFD and accFD; the Tunnel works on
// duplicates and closes only those.
func (t *Tunnel) Start(tunFD, accFD int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if prev := t.cur.Load(); prev != nil {
		if prev.running.Load() {
			return ErrAlreadyRunning
		}
		if !prev.finished() {
			return ErrDraining
		}
		t.cur.Store(nil)
	}

	links, err := acquireLinks(tunFD, accFD)
	if err != nil {
		return err
	}

	s := newSession()
	t.cur.Store(s)
	for _, l := range links {
		s.spawn(l)
	}
	go func() {
		s.wg.Wait()
		close(s.done)
	}()

	slog.Info("tunnel started", "session", s.id, "tun_fd", tunFD, "acc_fd", accFD)
	return nil
}

// Stop clears the running flag and waits for both forwarders to exit.
// A forwarder blocked in a read only notices after that read returns.
// Stop on an idle Tunnel is a no-op.
func (t *Tunnel) Stop() {
	_ = t.StopContext(context.Background())
}

// StopContext is Stop with a bounded wait. If ctx expires first the session
// stays registered as draining and ctx.Err() is returned.
func (t *Tunnel) StopContext(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.cur.Load()
	if s == nil {
		return nil
	}
	if s.halt() {
		slog.Info("tunnel stopping", "session", s.id)
	}

	select {
	case <-s.done:
	case <-ctx.Done():
		slog.Warn("tunnel stop timed out, forwarders still blocked", "session", s.id, "live", s.live.Load())
		return ctx.Err()
	}

	t.cur.Store(nil)
	slog.Info("tunnel stopped", "session", s.id)
	return nil
}

// IsStarted reports whether a session is forwarding.
func (t *Tunnel) IsStarted() bool {
	s := t.cur.Load()
	return s != nil && s.running.Load()
}

var closedChan = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Ended returns a channel closed once the current session stops forwarding,
// whether through Stop or a failing endpoint. It is already closed when
// the Tunnel is idle.
func (t *Tunnel) Ended() <-chan struct{} {
	if s := t.cur.Load(); s != nil {
		return s.ended
	}
	return closedChan
}

// Stats returns counters for the current session, or zero values when idle.
func (t *Tunnel) Stats() Stats {
	s := t.cur.Load()
	if s == nil {
		return Stats{}
	}
	return Stats{
		Session:        s.id,
		Started:        s.started,
		Running:        s.running.Load(),
		TunToAccessory: s.stats[TunToAccessory].snapshot(),
		AccessoryToTun: s.stats[AccessoryToTun].snapshot(),
	}
}

func (t *Tunnel) liveWorkers() int {
	if s := t.cur.Load(); s != nil {
		return int(s.live.Load())
	}
	return 0
}

// link is one direction of a session: a source and a sink, both owned by
// the forwarder that runs it.
type link struct {
	dir Direction
	src io.ReadCloser
	dst io.WriteCloser
}

func (l link) close() {
	l.src.Close()
	l.dst.Close()
}

// acquireLinks opens an independent stream pair for each direction. On
// failure everything opened so far is closed again.
func acquireLinks(tunFD, accFD int) ([]link, error) {
	var opened []*os.File
	fail := func(err error) ([]link, error) {
		for _, f := range opened {
			f.Close()
		}
		slog.Error("tunnel: acquiring endpoints", "error", err)
		return nil, err
	}

	links := make([]link, 0, 2)
	for _, dir := range []Direction{TunToAccessory, AccessoryToTun} {
		tun, err := acquire(tunFD, "tun")
		if err != nil {
			return fail(err)
		}
		opened = append(opened, tun)

		acc, err := acquire(accFD, "accessory")
		if err != nil {
			return fail(err)
		}
		opened = append(opened, acc)

		if dir == TunToAccessory {
			links = append(links, link{dir: dir, src: tun, dst: acc})
		} else {
			links = append(links, link{dir: dir, src: acc, dst: tun})
		}
	}
	return links, nil
}

func invalidFD(name string, fd int) error {
	return fmt.Errorf("%w: %s: invalid descriptor %d", ErrAcquire, name, fd)
}
