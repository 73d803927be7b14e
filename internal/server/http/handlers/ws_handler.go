package handlers

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/feastline/ordercore/internal/notify"
)

// WSHandler upgrades operator clients onto the notification hub.
type WSHandler struct {
	hub      *notify.Hub
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler constructs WSHandler.
func NewWSHandler(hub *notify.Hub, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			// Operator clients connect from the admin UI origin; the edge
			// gateway enforces access, so cross-origin upgrades are allowed.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// wsConn adapts a gorilla connection to the hub. Gorilla permits one
// concurrent writer, so sends are serialized behind a mutex.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsConn) Send(data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

func (w *wsConn) Close() error {
	return w.conn.Close()
}

// Serve handles GET /ws/:sid. The connection is registered for broadcasts
// until the client goes away; inbound frames are logged and otherwise ignored.
func (h *WSHandler) Serve(c *gin.Context) {
	sid := c.Param("sid")
	if sid == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			slog.String("client", sid),
			slog.String("error", err.Error()),
		)
		return
	}

	wrapped := &wsConn{conn: conn}
	h.hub.Connect(sid, wrapped)
	defer func() {
		h.hub.Disconnect(sid, wrapped)
		_ = wrapped.Close()
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return
		}
		h.logger.Info("message from client",
			slog.String("client", sid),
			slog.String("message", string(message)),
		)
	}
}
