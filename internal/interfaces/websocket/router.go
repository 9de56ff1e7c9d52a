package websocket

import (
	"garage-dashboard/internal/infrastructure/hub"
	"garage-dashboard/internal/infrastructure/logger"

	"github.com/gin-gonic/gin"
)

// InitWebSocketRouter mounts the subscriber endpoint at path and its
// introspection API.
func InitWebSocketRouter(logger logger.Logger, hubInstance *hub.Hub, cfg hub.WebSocketConfig, path string, rg *gin.RouterGroup) {
	wsHandler := NewWebSocketHandler(hubInstance, cfg, logger)

	rg.GET(path, wsHandler.Connect)

	apiGroup := rg.Group("/api/v1/ws")
	apiGroup.GET("/connections", wsHandler.GetConnections)
}
