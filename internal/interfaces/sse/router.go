package sse

import (
	"github.com/gin-gonic/gin"

	"garage-dashboard/internal/infrastructure/hub"
	"garage-dashboard/internal/infrastructure/logger"
)

func InitSSERouter(logger logger.Logger, hubInstance *hub.Hub, buffer int, rg *gin.RouterGroup) {
	sseHandler := NewServerSentEventHandler(hubInstance, buffer, logger)

	rg.GET("/sse", sseHandler.Connect)

	apiGroup := rg.Group("/api/v1/sse")
	apiGroup.GET("/connections", sseHandler.GetConnections)
}
