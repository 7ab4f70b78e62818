package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/simplert/srt/internal/ops"
	"github.com/simplert/srt/internal/tunnel"
)

func jsonOK(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) apiStatus(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, s.ops.Status())
}

func (s *Server) apiLogs(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, s.logs.snapshot())
}

// slogProgress logs ProgressEvents so they appear in the log buffer.
func slogProgress(e ops.ProgressEvent) {
	step := fmt.Sprintf("%d/%d", e.Step, e.Total)
	switch e.Status {
	case "failed":
		slog.Error(e.Label, "step", step, "error", e.Error)
	default:
		slog.Info(e.Label, "step", step, "status", e.Status)
	}
}

func (s *Server) apiStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.ops.StartRelay(slogProgress); err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, tunnel.ErrAlreadyRunning) || errors.Is(err, tunnel.ErrDraining) {
			code = http.StatusConflict
		}
		jsonError(w, err.Error(), code)
		return
	}
	jsonOK(w, s.ops.Status())
}

func (s *Server) apiStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.ops.StopRelay(r.Context()); err != nil {
		jsonError(w, err.Error(), http.StatusGatewayTimeout)
		return
	}
	jsonOK(w, s.ops.Status())
}
