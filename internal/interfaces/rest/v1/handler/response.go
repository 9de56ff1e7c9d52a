package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"garage-dashboard/internal/application/facade"
	"garage-dashboard/internal/infrastructure/logger"
	"garage-dashboard/internal/port/outbound"
)

// respondError maps use case errors onto HTTP answers. entity names the
// resource in 404 bodies; action completes "Failed to ..." on 500s.
func respondError(c *gin.Context, log logger.Logger, err error, entity, action string) {
	switch {
	case errors.Is(err, outbound.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": entity + " not found"})
	case errors.Is(err, facade.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
	case errors.Is(err, facade.ErrInvalidReference):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Errorf("Failed to %s: %v", action, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}

func idParam(c *gin.Context, entity string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + entity + " ID"})
		return 0, false
	}
	return id, true
}

// garageIDQuery reads ?garageId. A missing value falls back to def when
// def is positive.
func garageIDQuery(c *gin.Context, def int64) (int64, bool) {
	raw, ok := c.GetQuery("garageId")
	if !ok && def > 0 {
		return def, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid garage ID"})
		return 0, false
	}
	return id, true
}

// parseDate accepts RFC 3339 timestamps and bare dates, read as UTC
// midnight.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return false
	}
	return true
}
