package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"garage-dashboard/internal/infrastructure/logger"
	"garage-dashboard/internal/interfaces/rest/validation"
	"garage-dashboard/internal/port/inbound"
)

// CatalogHandler serves both /services and /products.
type CatalogHandler struct {
	catalog   inbound.CatalogUseCase
	validator *validation.Validator
	logger    logger.Logger
}

func NewCatalogHandler(catalog inbound.CatalogUseCase, v *validation.Validator, log logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog:   catalog,
		validator: v,
		logger:    log.WithField("handler", "catalog"),
	}
}

func (h *CatalogHandler) ListServices(c *gin.Context) {
	garageID, ok := garageIDQuery(c, 0)
	if !ok {
		return
	}
	services, err := h.catalog.ListServices(c.Request.Context(), garageID)
	if err != nil {
		respondError(c, h.logger, err, "Service", "get services")
		return
	}
	c.JSON(http.StatusOK, services)
}

func (h *CatalogHandler) CreateService(c *gin.Context) {
	var req inbound.CreateServiceInput
	if !bindJSON(c, &req) || !h.validator.ValidateStruct(c, req) {
		return
	}
	svc, err := h.catalog.CreateService(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err, "Service", "create service")
		return
	}
	c.JSON(http.StatusCreated, svc)
}

func (h *CatalogHandler) UpdateService(c *gin.Context) {
	id, ok := idParam(c, "service")
	if !ok {
		return
	}
	var req inbound.ServicePatch
	if !bindJSON(c, &req) || !h.validator.ValidateStruct(c, req) {
		return
	}
	svc, err := h.catalog.UpdateService(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err, "Service", "update service")
		return
	}
	c.JSON(http.StatusOK, svc)
}

func (h *CatalogHandler) DeleteService(c *gin.Context) {
	id, ok := idParam(c, "service")
	if !ok {
		return
	}
	if err := h.catalog.DeleteService(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "Service", "delete service")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	garageID, ok := garageIDQuery(c, 0)
	if !ok {
		return
	}
	products, err := h.catalog.ListProducts(c.Request.Context(), garageID)
	if err != nil {
		respondError(c, h.logger, err, "Product", "get products")
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req inbound.CreateProductInput
	if !bindJSON(c, &req) || !h.validator.ValidateStruct(c, req) {
		return
	}
	p, err := h.catalog.CreateProduct(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err, "Product", "create product")
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := idParam(c, "product")
	if !ok {
		return
	}
	var req inbound.ProductPatch
	if !bindJSON(c, &req) || !h.validator.ValidateStruct(c, req) {
		return
	}
	p, err := h.catalog.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err, "Product", "update product")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	id, ok := idParam(c, "product")
	if !ok {
		return
	}
	if err := h.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "Product", "delete product")
		return
	}
	c.Status(http.StatusNoContent)
}
