package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"garage-dashboard/internal/domain/model"
	"garage-dashboard/internal/infrastructure/logger"
	"garage-dashboard/internal/interfaces/rest/validation"
	"garage-dashboard/internal/port/inbound"
)

type BookingHandler struct {
	bookings  inbound.BookingUseCase
	validator *validation.Validator
	logger    logger.Logger
}

func NewBookingHandler(bookings inbound.BookingUseCase, v *validation.Validator, log logger.Logger) *BookingHandler {
	return &BookingHandler{
		bookings:  bookings,
		validator: v,
		logger:    log.WithField("handler", "booking"),
	}
}

func (h *BookingHandler) List(c *gin.Context) {
	garageID, ok := garageIDQuery(c, 0)
	if !ok {
		return
	}
	bookings, err := h.bookings.ListBookings(c.Request.Context(), garageID)
	if err != nil {
		respondError(c, h.logger, err, "Booking", "get bookings")
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) Today(c *gin.Context) {
	garageID, ok := garageIDQuery(c, 0)
	if !ok {
		return
	}
	bookings, err := h.bookings.TodayBookings(c.Request.Context(), garageID)
	if err != nil {
		respondError(c, h.logger, err, "Booking", "get today's bookings")
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "booking")
	if !ok {
		return
	}
	details, err := h.bookings.GetBookingDetails(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "Booking", "get booking")
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *BookingHandler) Create(c *gin.Context) {
	var req inbound.CreateBookingInput
	if !bindJSON(c, &req) || !h.validator.ValidateStruct(c, req) {
		return
	}
	b, err := h.bookings.CreateBooking(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err, "Booking", "create booking")
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *BookingHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "booking")
	if !ok {
		return
	}
	var req inbound.BookingPatch
	if !bindJSON(c, &req) || !h.validator.ValidateStruct(c, req) {
		return
	}
	b, err := h.bookings.UpdateBooking(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err, "Booking", "update booking")
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	id, ok := idParam(c, "booking")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil || !model.BookingStatus(req.Status).Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}
	b, err := h.bookings.UpdateBookingStatus(c.Request.Context(), id, model.BookingStatus(req.Status))
	if err != nil {
		respondError(c, h.logger, err, "Booking", "update booking status")
		return
	}
	c.JSON(http.StatusOK, b)
}
