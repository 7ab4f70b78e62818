package ops

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/simplert/srt/internal/config"
	"github.com/simplert/srt/internal/tunnel"
)

// ErrSessionEnded is reported in Status when a session stopped because one
// of its endpoints failed.
var ErrSessionEnded = errors.New("session ended")

// Status describes the relay.
type Status struct {
	State      State        `json:"state"`
	Error      string       `json:"error,omitempty"`
	Running    bool         `json:"running"`
	Tunnel     tunnel.Stats `json:"tunnel"`
	ConfigPath string       `json:"config_path"`
}

// StartRelay opens both endpoints and starts forwarding between them.
func (o *Ops) StartRelay(progress ProgressFunc) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.tunnel.IsStarted() {
		return fmt.Errorf("relay: %w", tunnel.ErrAlreadyRunning)
	}
	if progress == nil {
		progress = func(ProgressEvent) {}
	}

	// A session that ended on its own still holds its descriptors.
	o.releaseLocked()
	o.state = StateStarting
	o.lastErr = ""

	const total = 3
	fail := func(step int, label string, err error, opened ...*os.File) error {
		for _, f := range opened {
			f.Close()
		}
		o.state = StateError
		o.lastErr = err.Error()
		progress(ProgressEvent{Step: step, Total: total, Label: label, Status: "failed", Error: err.Error()})
		return err
	}

	progress(ProgressEvent{Step: 1, Total: total, Label: "TUN endpoint", Status: "running"})
	tun, err := o.openTun(o.cfg.Tun)
	if err != nil {
		return fail(1, "TUN endpoint", err)
	}
	progress(ProgressEvent{Step: 1, Total: total, Label: "TUN endpoint", Status: "completed", Message: tun.Name()})

	progress(ProgressEvent{Step: 2, Total: total, Label: "Accessory endpoint", Status: "running"})
	acc, err := o.openAccessory(o.cfg.Accessory)
	if err != nil {
		return fail(2, "Accessory endpoint", err, tun)
	}
	progress(ProgressEvent{Step: 2, Total: total, Label: "Accessory endpoint", Status: "completed", Message: acc.Name()})

	progress(ProgressEvent{Step: 3, Total: total, Label: "Tunnel", Status: "running"})
	if err := o.tunnel.Start(int(tun.Fd()), int(acc.Fd())); err != nil {
		return fail(3, "Tunnel", err, tun, acc)
	}
	o.files = []*os.File{tun, acc}
	o.state = StateRunning
	o.gen++
	go o.watch(o.gen, o.tunnel.Ended())

	progress(ProgressEvent{Step: 3, Total: total, Label: "Tunnel", Status: "completed", Message: o.tunnel.Stats().Session})
	return nil
}

// watch moves the relay to the error state when session gen stops on its
// own rather than through StopRelay.
func (o *Ops) watch(gen int, ended <-chan struct{}) {
	<-ended

	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.gen || o.state != StateRunning {
		return
	}
	o.state = StateError
	o.lastErr = ErrSessionEnded.Error()
	slog.Warn("relay session ended by endpoint failure")
}

// StopRelay stops forwarding and releases both endpoints. The wait for the
// forwarders is bounded by relay.stop_timeout when set. Stopping an idle
// relay is a no-op.
func (o *Ops) StopRelay(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if timeout := o.cfg.Relay.StopTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	o.state = StateStopping
	err := o.tunnel.StopContext(ctx)
	// Forwarders hold their own duplicates, so this is safe even if they
	// are still draining.
	o.releaseLocked()
	if err != nil {
		o.state = StateError
		o.lastErr = fmt.Sprintf("stop: %v", err)
		return fmt.Errorf("stopping relay: %w", err)
	}
	o.state = StateStopped
	o.lastErr = ""
	return nil
}

func (o *Ops) releaseLocked() {
	for _, f := range o.files {
		if err := f.Close(); err != nil {
			slog.Debug("closing endpoint", "name", f.Name(), "error", err)
		}
	}
	o.files = nil
}

// Status returns the relay state and the tunnel counters.
func (o *Ops) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Status{
		State:      o.state,
		Error:      o.lastErr,
		Running:    o.tunnel.IsStarted(),
		Tunnel:     o.tunnel.Stats(),
		ConfigPath: config.FilePath(),
	}
}
