package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/simplert/srt/internal/ops"
)

const logBufferSize = 500

// Server serves the relay status and controls over HTTP.
type Server struct {
	addr string
	mux  *http.ServeMux
	ops  *ops.Ops
	logs *logBuffer
}

// NewServer builds the dashboard and starts teeing the default slog logger
// into its log buffer.
func NewServer(addr string, o *ops.Ops) *Server {
	s := &Server{
		addr: addr,
		mux:  http.NewServeMux(),
		ops:  o,
		logs: newLogBuffer(logBufferSize),
	}
	slog.SetDefault(slog.New(newTeeHandler(slog.Default().Handler(), s.logs)))
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/status", s.apiStatus)
	s.mux.HandleFunc("/api/start", s.apiStart)
	s.mux.HandleFunc("/api/stop", s.apiStop)
	s.mux.HandleFunc("/api/logs", s.apiLogs)
	s.mux.HandleFunc("/api/logs/ws", s.apiLogStream)
}

// Handler exposes the routes, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run starts the HTTP server (blocking).
func (s *Server) Run() error {
	slog.Info("dashboard listening", "addr", s.addr)
	return http.ListenAndServe(s.addr, s.mux)
}
