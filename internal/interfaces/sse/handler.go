package sse

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"garage-dashboard/internal/infrastructure/hub"
	"garage-dashboard/internal/infrastructure/logger"
)

// ServerSentEventHandler serves read-only subscribers that cannot open a
// WebSocket. Channels are chosen once, from the query string.
type ServerSentEventHandler struct {
	hub    *hub.Hub
	buffer int
	logger logger.Logger
	now    func() time.Time
}

func NewServerSentEventHandler(hubInstance *hub.Hub, buffer int, logger logger.Logger) *ServerSentEventHandler {
	return &ServerSentEventHandler{
		hub:    hubInstance,
		buffer: buffer,
		logger: logger.WithField("handler", "sse"),
		now:    time.Now,
	}
}

// parseChannels splits ?channels=a,b and also accepts the parameter
// repeated. Blank names are dropped.
func parseChannels(values []string) []string {
	var channels []string
	for _, v := range values {
		for _, ch := range strings.Split(v, ",") {
			if ch = strings.TrimSpace(ch); ch != "" {
				channels = append(channels, ch)
			}
		}
	}
	return channels
}

// Connect streams envelopes for the requested channels until the client
// goes away or the hub stops.
func (h *ServerSentEventHandler) Connect(c *gin.Context) {
	if !h.hub.IsRunning() {
		h.logger.Error("Hub is not running")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Service temporarily unavailable",
		})
		return
	}

	channels := parseChannels(c.QueryArray("channels"))
	conn := hub.NewSSEConnection(c.Request.Context(), "sse-"+uuid.NewString(), c.Writer, h.buffer, h.logger)
	hub.Subscribe(conn, channels)

	if err := h.hub.RegisterConnection(conn); err != nil {
		h.logger.Errorf("Failed to register connection: %v", err)
		_ = conn.Close()
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Service temporarily unavailable",
		})
		return
	}

	err := conn.WriteEvent("connected", gin.H{
		"connection_id": conn.ID(),
		"channels":      conn.Subscriptions().List(),
		"timestamp":     h.now().UTC().Format(hub.TimestampFormat),
	})
	if err != nil {
		h.logger.Warnf("Failed to greet %s: %v", conn.ID(), err)
		h.hub.UnregisterConnection(conn.ID())
		return
	}

	conn.Stream()
	h.logger.Debugf("SSE connection %s finished", conn.ID())
}

// GetConnections lists SSE subscribers and their channels.
func (h *ServerSentEventHandler) GetConnections(c *gin.Context) {
	connections := h.hub.GetConnectionsByType("sse")
	connectionInfo := make([]gin.H, len(connections))

	for i, conn := range connections {
		connectionInfo[i] = gin.H{
			"id":            conn.ID(),
			"type":          conn.Type(),
			"state":         conn.State().String(),
			"subscriptions": conn.Subscriptions().List(),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"total_connections": len(connections),
		"connections":       connectionInfo,
		"hub_running":       h.hub.IsRunning(),
	})
}
