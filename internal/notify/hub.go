package notify

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/feastline/ordercore/internal/domain/model"
)

// Conn is one live operator connection. Send must be safe for use from
// concurrent broadcasts; the transport wrapper owns that discipline.
type Conn interface {
	Send(data []byte) error
	Close() error
}

// Hub is a concurrency-safe registry of live operator connections with a
// broadcast primitive. A failed send removes the connection (self-healing).
type Hub struct {
	mu     sync.RWMutex
	conns  map[string]Conn
	logger *slog.Logger
}

// NewHub constructs an empty connection registry.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		conns:  make(map[string]Conn),
		logger: logger,
	}
}

// Connect registers a connection under the client id, replacing and closing
// any prior entry with the same id.
func (h *Hub) Connect(clientID string, conn Conn) {
	h.mu.Lock()
	prev := h.conns[clientID]
	h.conns[clientID] = conn
	h.mu.Unlock()

	if prev != nil {
		_ = prev.Close()
	}
	h.logger.Info("client connected", slog.String("client", clientID))
}

// Disconnect removes the entry; a no-op if already absent. The conn argument,
// when non-nil, guards against a reconnect racing the old connection's close:
// only the registered conn is removed.
func (h *Hub) Disconnect(clientID string, conn Conn) {
	h.mu.Lock()
	current, ok := h.conns[clientID]
	if ok && (conn == nil || current == conn) {
		delete(h.conns, clientID)
	} else {
		ok = false
	}
	h.mu.Unlock()

	if ok {
		h.logger.Info("client disconnected", slog.String("client", clientID))
	}
}

// Broadcast serializes the message once and delivers it to every registered
// connection. One connection failing does not prevent delivery to the others.
func (h *Hub) Broadcast(n model.Notification) {
	data, err := json.Marshal(n)
	if err != nil {
		h.logger.Error("marshal notification", slog.String("error", err.Error()))
		return
	}

	h.mu.RLock()
	targets := make(map[string]Conn, len(h.conns))
	for id, conn := range h.conns {
		targets[id] = conn
	}
	h.mu.RUnlock()

	for id, conn := range targets {
		if err := conn.Send(data); err != nil {
			h.logger.Warn("send to client failed, dropping connection",
				slog.String("client", id),
				slog.String("error", err.Error()),
			)
			h.Disconnect(id, conn)
			_ = conn.Close()
		}
	}
}

// Len reports the number of live connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
