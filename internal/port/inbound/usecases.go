// Package inbound declares the use cases the HTTP layer drives.
package inbound

import (
	"context"
	"time"

	"garage-dashboard/internal/domain/model"
)

type GarageUseCase interface {
	ListGarages(ctx context.Context) ([]model.Garage, error)
	GetGarage(ctx context.Context, id int64) (model.Garage, error)
	CreateGarage(ctx context.Context, in CreateGarageInput) (model.Garage, error)
	UpdateGarage(ctx context.Context, id int64, patch GaragePatch) (model.Garage, error)
	UpdateGarageStatus(ctx context.Context, id int64, status model.GarageStatus) (model.Garage, error)
}

type CatalogUseCase interface {
	ListServices(ctx context.Context, garageID int64) ([]model.Service, error)
	CreateService(ctx context.Context, in CreateServiceInput) (model.Service, error)
	UpdateService(ctx context.Context, id int64, patch ServicePatch) (model.Service, error)
	DeleteService(ctx context.Context, id int64) error

	ListProducts(ctx context.Context, garageID int64) ([]model.Product, error)
	CreateProduct(ctx context.Context, in CreateProductInput) (model.Product, error)
	UpdateProduct(ctx context.Context, id int64, patch ProductPatch) (model.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type DriverUseCase interface {
	ListDrivers(ctx context.Context) ([]model.Driver, error)
	GetDriver(ctx context.Context, id int64) (model.Driver, error)
	CreateDriver(ctx context.Context, in CreateDriverInput) (model.Driver, error)
	UpdateDriver(ctx context.Context, id int64, patch DriverPatch) (model.Driver, error)
	ListDriverBookings(ctx context.Context, driverID int64) ([]model.Booking, error)
}

type BookingUseCase interface {
	ListBookings(ctx context.Context, garageID int64) ([]model.Booking, error)
	TodayBookings(ctx context.Context, garageID int64) ([]model.Booking, error)
	GetBookingDetails(ctx context.Context, id int64) (model.BookingWithDetails, error)
	CreateBooking(ctx context.Context, in CreateBookingInput) (model.Booking, error)
	UpdateBooking(ctx context.Context, id int64, patch BookingPatch) (model.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status model.BookingStatus) (model.Booking, error)
}

type AnalyticsUseCase interface {
	BookingCountByDate(ctx context.Context, garageID int64, from, to time.Time) ([]model.DailyBookingCount, error)
	RevenueByService(ctx context.Context, garageID int64, from, to time.Time) ([]model.ServiceRevenue, error)
	TodaySummary(ctx context.Context, garageID int64) (model.TodaySummary, error)
	HeroMetrics(ctx context.Context, garageID int64) (model.HeroMetrics, error)
}
