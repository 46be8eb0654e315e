package module

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// socketHub serves a mock websocket route and tracks its connections.
type socketHub struct {
	cfg      SocketMock
	mount    string
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
}

func newSocketHub(cfg SocketMock, mount string, logger *slog.Logger) *socketHub {
	return &socketHub{
		cfg:     cfg,
		mount:   mount,
		logger:  logger,
		clients: make(map[*websocket.Conn]*sync.Mutex),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // mock routes accept any origin
			},
		},
	}
}

// ServeHTTP upgrades the connection and runs the read loop until the
// client disconnects.
func (h *socketHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !websocket.IsWebSocketUpgrade(r) {
		http.Error(w, "websocket upgrade required", http.StatusUpgradeRequired)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed",
			slog.String("component", "routex"),
			slog.String("path", h.mount),
			slog.String("error", err.Error()))
		return
	}

	lock := &sync.Mutex{}
	h.mu.Lock()
	h.clients[conn] = lock
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	if h.cfg.Greeting != "" {
		if err := h.write(conn, lock, websocket.TextMessage, []byte(h.cfg.Greeting)); err != nil {
			return
		}
	}

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if h.cfg.Echo {
			if err := h.write(conn, lock, kind, data); err != nil {
				return
			}
		}
		if h.cfg.Broadcast {
			h.broadcast(conn, kind, data)
		}
	}
}

func (h *socketHub) write(conn *websocket.Conn, lock *sync.Mutex, kind int, data []byte) error {
	lock.Lock()
	defer lock.Unlock()
	return conn.WriteMessage(kind, data)
}

// broadcast sends data to every client except from.
func (h *socketHub) broadcast(from *websocket.Conn, kind int, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn, lock := range h.clients {
		if conn == from {
			continue
		}
		_ = h.write(conn, lock, kind, data)
	}
}

// Len returns the number of connected clients.
func (h *socketHub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
