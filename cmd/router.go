package main

import (
	"net/http"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"

	"garage-dashboard/internal/infrastructure/config"
	"garage-dashboard/internal/infrastructure/hub"
	"garage-dashboard/internal/infrastructure/logger"
	"garage-dashboard/internal/infrastructure/metrics"
	"garage-dashboard/internal/interfaces/rest/middleware"
	"garage-dashboard/internal/interfaces/rest/v1/handler"
	"garage-dashboard/internal/interfaces/sse"
	"garage-dashboard/internal/interfaces/websocket"
)

func InitRouter(
	cfg *config.Config,
	hubInstance *hub.Hub,
	recorder *metrics.Hub,
	uc handler.UseCases,
	log logger.Logger,
) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log.WithField("component", "router")))
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	rootGroup := router.Group("")

	rootGroup.GET("/hub/status", func(c *gin.Context) {
		counts := hubInstance.ChannelCounts()
		channels := make([]gin.H, 0, len(counts))
		for name, n := range counts {
			channels = append(channels, gin.H{"channel": name, "subscribers": n})
		}
		sort.Slice(channels, func(i, j int) bool {
			return channels[i]["channel"].(string) < channels[j]["channel"].(string)
		})

		uptime := hubInstance.Uptime()
		c.JSON(http.StatusOK, gin.H{
			"status":         "healthy",
			"hub_running":    hubInstance.IsRunning(),
			"connections":    hubInstance.ConnectionCount(),
			"channels":       channels,
			"started":        humanize.Time(time.Now().Add(-uptime)),
			"uptime_seconds": int64(uptime.Seconds()),
		})
	})

	rootGroup.GET("/metrics", func(c *gin.Context) {
		c.Header("Content-Type", metrics.ContentType)
		c.Status(http.StatusOK)
		if err := recorder.WriteText(c.Writer); err != nil {
			log.Errorf("Failed to write metrics: %v", err)
		}
	})

	apiGroup := rootGroup.Group("/api")
	apiGroup.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	handler.InitRESTRouter(log, uc, apiGroup)

	sse.InitSSERouter(log, hubInstance, cfg.Hub.SendBuffer, rootGroup)
	websocket.InitWebSocketRouter(log, hubInstance, cfg.Hub.WebSocket(), cfg.Server.WSPath, rootGroup)

	return router
}
