package ops

import (
	"os"
	"sync"

	"github.com/simplert/srt/internal/config"
	"github.com/simplert/srt/internal/endpoint"
	"github.com/simplert/srt/internal/tunnel"
)

// ProgressEvent describes one step in a long-running operation.
type ProgressEvent struct {
	Step    int    `json:"step"`
	Total   int    `json:"total"`
	Label   string `json:"label"`
	Status  string `json:"status"` // "running", "completed", "failed"
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ProgressFunc is a callback for reporting progress. CLI callers print to
// stdout; dashboard callers log through slog.
type ProgressFunc func(ProgressEvent)

// State represents the lifecycle state of the relay.
type State string

const (
	StateStopped  State = "stopped"
	StateStarting State = "starting"
	StateRunning  State = "running"
	StateStopping State = "stopping"
	StateError    State = "error"
)

// Ops is the host-facing side of the relay, shared by the CLI, the gRPC API
// and the dashboard. It owns the endpoint descriptors of the current
// session; the Tunnel owns the forwarders.
type Ops struct {
	mu      sync.Mutex // serialises relay operations
	cfg     *config.Config
	tunnel  *tunnel.Tunnel
	state   State
	lastErr string
	gen     int
	files   []*os.File

	openTun       func(config.TunConfig) (*os.File, error)
	openAccessory func(config.AccessoryConfig) (*os.File, error)
}

// Option customises an Ops.
type Option func(*Ops)

// WithEndpoints replaces the functions that open the TUN and accessory
// descriptors at the start of each session.
func WithEndpoints(tun func(config.TunConfig) (*os.File, error), acc func(config.AccessoryConfig) (*os.File, error)) Option {
	return func(o *Ops) {
		o.openTun = tun
		o.openAccessory = acc
	}
}

// New returns an Ops driving t with cfg. t is the process's only Tunnel.
func New(cfg *config.Config, t *tunnel.Tunnel, opts ...Option) *Ops {
	o := &Ops{
		cfg:           cfg,
		tunnel:        t,
		state:         StateStopped,
		openTun:       endpoint.OpenTun,
		openAccessory: endpoint.OpenAccessory,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Config returns the current configuration (read-only snapshot).
func (o *Ops) Config() *config.Config {
	o.mu.Lock()
	defer o.mu.Unlock()
	c := *o.cfg
	return &c
}
