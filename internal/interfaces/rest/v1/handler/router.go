package handler

import (
	"github.com/gin-gonic/gin"

	"garage-dashboard/internal/infrastructure/logger"
	"garage-dashboard/internal/interfaces/rest/validation"
	"garage-dashboard/internal/port/inbound"
)

// UseCases groups what the REST API drives.
type UseCases struct {
	Garages   inbound.GarageUseCase
	Catalog   inbound.CatalogUseCase
	Drivers   inbound.DriverUseCase
	Bookings  inbound.BookingUseCase
	Analytics inbound.AnalyticsUseCase
}

// InitRESTRouter mounts the dashboard API on rg, usually the /api group.
func InitRESTRouter(log logger.Logger, uc UseCases, rg *gin.RouterGroup) {
	v := validation.New()

	garages := NewGarageHandler(uc.Garages, v, log)
	g := rg.Group("/garages")
	g.GET("", garages.List)
	g.POST("", garages.Create)
	g.GET("/:id", garages.Get)
	g.PATCH("/:id", garages.Update)
	g.PATCH("/:id/status", garages.UpdateStatus)

	catalog := NewCatalogHandler(uc.Catalog, v, log)
	s := rg.Group("/services")
	s.GET("", catalog.ListServices)
	s.POST("", catalog.CreateService)
	s.PATCH("/:id", catalog.UpdateService)
	s.DELETE("/:id", catalog.DeleteService)

	p := rg.Group("/products")
	p.GET("", catalog.ListProducts)
	p.POST("", catalog.CreateProduct)
	p.PATCH("/:id", catalog.UpdateProduct)
	p.DELETE("/:id", catalog.DeleteProduct)

	drivers := NewDriverHandler(uc.Drivers, v, log)
	d := rg.Group("/drivers")
	d.GET("", drivers.List)
	d.POST("", drivers.Create)
	d.GET("/:id", drivers.Get)
	d.PATCH("/:id", drivers.Update)
	d.GET("/:id/bookings", drivers.Bookings)

	bookings := NewBookingHandler(uc.Bookings, v, log)
	b := rg.Group("/bookings")
	b.GET("", bookings.List)
	b.GET("/today", bookings.Today)
	b.POST("", bookings.Create)
	b.GET("/:id", bookings.Get)
	b.PATCH("/:id", bookings.Update)
	b.PATCH("/:id/status", bookings.UpdateStatus)

	analytics := NewAnalyticsHandler(uc.Analytics, log)
	a := rg.Group("/analytics")
	a.GET("/bookings", analytics.Bookings)
	a.GET("/revenue", analytics.Revenue)
	a.GET("/today-summary", analytics.TodaySummary)
	a.GET("/hero-metrics", analytics.HeroMetrics)
}
