package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"garage-dashboard/internal/domain/model"
	"garage-dashboard/internal/infrastructure/logger"
	"garage-dashboard/internal/interfaces/rest/validation"
	"garage-dashboard/internal/port/inbound"
)

type GarageHandler struct {
	garages   inbound.GarageUseCase
	validator *validation.Validator
	logger    logger.Logger
}

func NewGarageHandler(garages inbound.GarageUseCase, v *validation.Validator, log logger.Logger) *GarageHandler {
	return &GarageHandler{
		garages:   garages,
		validator: v,
		logger:    log.WithField("handler", "garage"),
	}
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *GarageHandler) List(c *gin.Context) {
	garages, err := h.garages.ListGarages(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Garage", "get garages")
		return
	}
	c.JSON(http.StatusOK, garages)
}

func (h *GarageHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "garage")
	if !ok {
		return
	}
	g, err := h.garages.GetGarage(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "Garage", "get garage")
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *GarageHandler) Create(c *gin.Context) {
	var req inbound.CreateGarageInput
	if !bindJSON(c, &req) || !h.validator.ValidateStruct(c, req) {
		return
	}
	g, err := h.garages.CreateGarage(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err, "Garage", "create garage")
		return
	}
	c.JSON(http.StatusCreated, g)
}

func (h *GarageHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "garage")
	if !ok {
		return
	}
	var req inbound.GaragePatch
	if !bindJSON(c, &req) || !h.validator.ValidateStruct(c, req) {
		return
	}
	g, err := h.garages.UpdateGarage(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err, "Garage", "update garage")
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *GarageHandler) UpdateStatus(c *gin.Context) {
	id, ok := idParam(c, "garage")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil || !model.GarageStatus(req.Status).Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}
	g, err := h.garages.UpdateGarageStatus(c.Request.Context(), id, model.GarageStatus(req.Status))
	if err != nil {
		respondError(c, h.logger, err, "Garage", "update garage status")
		return
	}
	c.JSON(http.StatusOK, g)
}
