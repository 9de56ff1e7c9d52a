package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"garage-dashboard/internal/infrastructure/logger"
	"garage-dashboard/internal/port/inbound"
)

// defaultGarageID is used by the summary endpoints when ?garageId is absent.
const defaultGarageID = 1

type AnalyticsHandler struct {
	analytics inbound.AnalyticsUseCase
	logger    logger.Logger
}

func NewAnalyticsHandler(analytics inbound.AnalyticsUseCase, log logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics: analytics,
		logger:    log.WithField("handler", "analytics"),
	}
}

// rangeQuery reads garageId, startDate and endDate; all are required.
func rangeQuery(c *gin.Context) (int64, time.Time, time.Time, bool) {
	fail := func() (int64, time.Time, time.Time, bool) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid parameters"})
		return 0, time.Time{}, time.Time{}, false
	}

	garageID, ok := garageIDQuery(c, 0)
	if !ok {
		return 0, time.Time{}, time.Time{}, false
	}
	from, err := parseDate(c.Query("startDate"))
	if err != nil {
		return fail()
	}
	to, err := parseDate(c.Query("endDate"))
	if err != nil || to.Before(from) {
		return fail()
	}
	return garageID, from, to, true
}

func (h *AnalyticsHandler) Bookings(c *gin.Context) {
	garageID, from, to, ok := rangeQuery(c)
	if !ok {
		return
	}
	data, err := h.analytics.BookingCountByDate(c.Request.Context(), garageID, from, to)
	if err != nil {
		respondError(c, h.logger, err, "Garage", "get booking analytics")
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *AnalyticsHandler) Revenue(c *gin.Context) {
	garageID, from, to, ok := rangeQuery(c)
	if !ok {
		return
	}
	data, err := h.analytics.RevenueByService(c.Request.Context(), garageID, from, to)
	if err != nil {
		respondError(c, h.logger, err, "Garage", "get revenue analytics")
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *AnalyticsHandler) TodaySummary(c *gin.Context) {
	garageID, ok := garageIDQuery(c, defaultGarageID)
	if !ok {
		return
	}
	summary, err := h.analytics.TodaySummary(c.Request.Context(), garageID)
	if err != nil {
		respondError(c, h.logger, err, "Garage", "get today's summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *AnalyticsHandler) HeroMetrics(c *gin.Context) {
	garageID, ok := garageIDQuery(c, defaultGarageID)
	if !ok {
		return
	}
	metrics, err := h.analytics.HeroMetrics(c.Request.Context(), garageID)
	if err != nil {
		respondError(c, h.logger, err, "Garage", "get hero metrics")
		return
	}
	c.JSON(http.StatusOK, metrics)
}
