package dashboard

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// LogEntry is a single log line kept for the dashboard.
type LogEntry struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Message string `json:"msg"`
}

// logBuffer is a fixed-size ring buffer of log entries with subscriber support.
type logBuffer struct {
	mu      sync.Mutex
	entries []LogEntry
	max     int
	subs    map[int]chan LogEntry
	nextID  int
}

func newLogBuffer(max int) *logBuffer {
	return &logBuffer{
		entries: make([]LogEntry, 0, max),
		max:     max,
		subs:    make(map[int]chan LogEntry),
	}
}

func (b *logBuffer) add(e LogEntry) {
	b.mu.Lock()
	if len(b.entries) >= b.max {
		b.entries = b.entries[1:]
	}
	b.entries = append(b.entries, e)
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default: // drop if subscriber is slow
		}
	}
	b.mu.Unlock()
}

// snapshot returns a copy of all buffered entries.
func (b *logBuffer) snapshot() []LogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]LogEntry, len(b.entries))
	copy(out, b.entries)
	return out
}

// subscribe returns the buffered entries, a channel that receives every
// entry added afterwards, and an unsubscribe func.
func (b *logBuffer) subscribe() ([]LogEntry, <-chan LogEntry, func()) {
	b.mu.Lock()
	backlog := make([]LogEntry, len(b.entries))
	copy(backlog, b.entries)
	id := b.nextID
	b.nextID++
	ch := make(chan LogEntry, 64)
	b.subs[id] = ch
	b.mu.Unlock()

	return backlog, ch, func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// teeHandler is a slog.Handler that forwards records to an inner handler
// and also writes them to a logBuffer. Attributes bound with With are kept
// preformatted in prefix.
type teeHandler struct {
	inner  slog.Handler
	buf    *logBuffer
	prefix string
	group  string
}

func newTeeHandler(inner slog.Handler, buf *logBuffer) *teeHandler {
	return &teeHandler{inner: inner, buf: buf}
}

func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var sb strings.Builder
	sb.WriteString(r.Message)
	sb.WriteString(h.prefix)
	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&sb, a)
		return true
	})

	h.buf.add(LogEntry{
		Time:    r.Time.Format(time.TimeOnly),
		Level:   r.Level.String(),
		Message: sb.String(),
	})
	return h.inner.Handle(ctx, r)
}

func (h *teeHandler) appendAttr(sb *strings.Builder, a slog.Attr) {
	sb.WriteByte(' ')
	if h.group != "" {
		sb.WriteString(h.group)
		sb.WriteByte('.')
	}
	sb.WriteString(a.Key)
	sb.WriteByte('=')
	sb.WriteString(a.Value.String())
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var sb strings.Builder
	sb.WriteString(h.prefix)
	for _, a := range attrs {
		h.appendAttr(&sb, a)
	}
	return &teeHandler{inner: h.inner.WithAttrs(attrs), buf: h.buf, prefix: sb.String(), group: h.group}
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &teeHandler{inner: h.inner.WithGroup(name), buf: h.buf, prefix: h.prefix, group: group}
}
