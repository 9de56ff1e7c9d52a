package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"garage-dashboard/internal/infrastructure/logger"
	"garage-dashboard/internal/interfaces/rest/validation"
	"garage-dashboard/internal/port/inbound"
)

type DriverHandler struct {
	drivers   inbound.DriverUseCase
	validator *validation.Validator
	logger    logger.Logger
}

func NewDriverHandler(drivers inbound.DriverUseCase, v *validation.Validator, log logger.Logger) *DriverHandler {
	return &DriverHandler{
		drivers:   drivers,
		validator: v,
		logger:    log.WithField("handler", "driver"),
	}
}

func (h *DriverHandler) List(c *gin.Context) {
	drivers, err := h.drivers.ListDrivers(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Driver", "get drivers")
		return
	}
	c.JSON(http.StatusOK, drivers)
}

func (h *DriverHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "driver")
	if !ok {
		return
	}
	d, err := h.drivers.GetDriver(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "Driver", "get driver")
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DriverHandler) Create(c *gin.Context) {
	var req inbound.CreateDriverInput
	if !bindJSON(c, &req) || !h.validator.ValidateStruct(c, req) {
		return
	}
	d, err := h.drivers.CreateDriver(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err, "Driver", "create driver")
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *DriverHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "driver")
	if !ok {
		return
	}
	var req inbound.DriverPatch
	if !bindJSON(c, &req) || !h.validator.ValidateStruct(c, req) {
		return
	}
	d, err := h.drivers.UpdateDriver(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err, "Driver", "update driver")
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DriverHandler) Bookings(c *gin.Context) {
	id, ok := idParam(c, "driver")
	if !ok {
		return
	}
	bookings, err := h.drivers.ListDriverBookings(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "Driver", "get driver bookings")
		return
	}
	c.JSON(http.StatusOK, bookings)
}
