package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"garage-dashboard/internal/infrastructure/hub"
	"garage-dashboard/internal/infrastructure/logger"
)

// WebSocketHandler upgrades dashboard clients and hands them to the hub.
type WebSocketHandler struct {
	hub      *hub.Hub
	cfg      hub.WebSocketConfig
	logger   logger.Logger
	upgrader websocket.Upgrader
}

func NewWebSocketHandler(hubInstance *hub.Hub, cfg hub.WebSocketConfig, logger logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hubInstance,
		cfg:    cfg,
		logger: logger.WithField("handler", "websocket"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Channels carry no secrets and are not authenticated.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Connect handles WebSocket connection upgrade requests
func (h *WebSocketHandler) Connect(c *gin.Context) {
	if !h.hub.IsRunning() {
		h.logger.Error("Hub is not running")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Service temporarily unavailable",
		})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("Failed to upgrade connection: %v", err)
		return
	}

	wsConn := hub.NewWebSocketConnection(newConnectionID(), conn, h.cfg, h.hub.HandleInbound, h.logger)
	if err := h.hub.RegisterConnection(wsConn); err != nil {
		h.logger.Errorf("Failed to register WebSocket connection: %v", err)
		wsConn.CloseWithCode(websocket.CloseTryAgainLater, "hub unavailable")
		return
	}

	<-wsConn.Context().Done()
	h.logger.Debugf("WebSocket connection %s disconnected", wsConn.ID())
}

type connectionInfo struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"`
	State         string   `json:"state"`
	Subscriptions []string `json:"subscriptions"`
}

func describe(conns []hub.Connection) []connectionInfo {
	out := make([]connectionInfo, len(conns))
	for i, conn := range conns {
		out[i] = connectionInfo{
			ID:            conn.ID(),
			Type:          conn.Type(),
			State:         conn.State().String(),
			Subscriptions: conn.Subscriptions().List(),
		}
	}
	return out
}

// GetConnections lists WebSocket subscribers and their channels.
func (h *WebSocketHandler) GetConnections(c *gin.Context) {
	connections := h.hub.GetConnectionsByType("websocket")

	c.JSON(http.StatusOK, gin.H{
		"total_connections": len(connections),
		"connections":       describe(connections),
		"hub_running":       h.hub.IsRunning(),
	})
}

func newConnectionID() string {
	return "ws-" + uuid.NewString()
}
