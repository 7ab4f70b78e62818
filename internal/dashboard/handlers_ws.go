package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// apiLogStream upgrades to a WebSocket, sends the buffered log entries and
// then every new one as a JSON text message.
func (s *Server) apiLogStream(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	backlog, entries, unsubscribe := s.logs.subscribe()
	defer unsubscribe()

	for _, e := range backlog {
		if err := conn.WriteJSON(e); err != nil {
			return
		}
	}

	// The reader only notices the browser going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case e := <-entries:
			if err := conn.WriteJSON(e); err != nil {
				return
			}
		}
	}
}
