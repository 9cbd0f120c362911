package control

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 2 * time.Second

// envelope is every message the server sends.
type envelope struct {
	Type     string `json:"type"`
	Controls any    `json:"controls,omitempty"`
	Stats    *Stats `json:"stats,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Server exposes a Panel over websocket at /ws and the current controls as
// JSON at /controls. Connected clients receive the latest Stats on every
// broadcast tick and the controls whenever any client changes them.
type Server struct {
	panel    *Panel
	log      *slog.Logger
	upgrader websocket.Upgrader

	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]*sync.Mutex

	statsMu sync.Mutex
	stats   Stats
	fresh   bool
}

func NewServer(panel *Panel, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		panel: panel,
		log:   logger.With("component", "control"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // local tool, any origin
			},
		},
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/controls", s.handleControls)
	return mux
}

// Publish records the latest frame statistics. It never blocks on clients.
func (s *Server) Publish(stats Stats) {
	s.statsMu.Lock()
	s.stats = stats
	s.fresh = true
	s.statsMu.Unlock()
}

// Run serves on addr and broadcasts stats every interval until ctx is done.
func (s *Server) Run(ctx context.Context, addr string, interval time.Duration) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					s.log.Debug("control server shutdown", "error", err)
				}
				s.closeAll()
				return
			case <-ticker.C:
				s.BroadcastStats()
			}
		}
	}()

	s.log.Info("control server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleControls(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.panel.Snapshot()); err != nil {
		s.log.Debug("write controls failed", "error", err)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	connMutex := &sync.Mutex{}
	s.clientsMu.Lock()
	s.clients[conn] = connMutex
	s.clientsMu.Unlock()
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, conn)
		s.clientsMu.Unlock()
	}()

	if err := s.send(conn, connMutex, envelope{Type: "controls", Controls: s.panel.Snapshot()}); err != nil {
		s.log.Debug("websocket write failed", "error", err)
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("websocket read ended", "error", err)
			}
			return
		}

		var msg Message
		err = json.Unmarshal(data, &msg)
		if err == nil {
			err = s.panel.Apply(msg)
		}
		if err != nil {
			s.log.Warn("rejected control message", "error", err)
			if err := s.send(conn, connMutex, envelope{Type: "error", Error: err.Error()}); err != nil {
				s.log.Debug("websocket write failed", "error", err)
				return
			}
			continue
		}
		s.broadcast(envelope{Type: "controls", Controls: s.panel.Snapshot()})
	}
}

// BroadcastStats sends the latest stats if they changed since the last call.
func (s *Server) BroadcastStats() {
	s.statsMu.Lock()
	if !s.fresh {
		s.statsMu.Unlock()
		return
	}
	stats := s.stats
	s.fresh = false
	s.statsMu.Unlock()

	s.broadcast(envelope{Type: "stats", Stats: &stats})
}

func (s *Server) send(conn *websocket.Conn, mu *sync.Mutex, env envelope) error {
	mu.Lock()
	defer mu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(env)
}

func (s *Server) broadcast(env envelope) {
	s.clientsMu.RLock()
	var failed []*websocket.Conn
	for client, mutex := range s.clients {
		if err := s.send(client, mutex, env); err != nil {
			s.log.Debug("websocket write failed", "error", err)
			failed = append(failed, client)
		}
	}
	s.clientsMu.RUnlock()

	if len(failed) > 0 {
		s.clientsMu.Lock()
		for _, client := range failed {
			client.Close()
			delete(s.clients, client)
		}
		s.clientsMu.Unlock()
	}
}

func (s *Server) closeAll() {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for client := range s.clients {
		client.Close()
		delete(s.clients, client)
	}
}

// Clients returns the number of connected websocket clients.
func (s *Server) Clients() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}
