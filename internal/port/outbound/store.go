package outbound

import (
	"context"
	"errors"
	"time"

	"garage-dashboard/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// Store persists the dashboard entities. Update replaces the whole row;
// IDs are assigned on Create.
type Store interface {
	GetGarage(ctx context.Context, id int64) (model.Garage, error)
	ListGarages(ctx context.Context) ([]model.Garage, error)
	CreateGarage(ctx context.Context, g model.Garage) (model.Garage, error)
	UpdateGarage(ctx context.Context, g model.Garage) (model.Garage, error)

	GetService(ctx context.Context, id int64) (model.Service, error)
	ListServicesByGarage(ctx context.Context, garageID int64) ([]model.Service, error)
	CreateService(ctx context.Context, s model.Service) (model.Service, error)
	UpdateService(ctx context.Context, s model.Service) (model.Service, error)
	DeleteService(ctx context.Context, id int64) error

	GetProduct(ctx context.Context, id int64) (model.Product, error)
	ListProductsByGarage(ctx context.Context, garageID int64) ([]model.Product, error)
	CreateProduct(ctx context.Context, p model.Product) (model.Product, error)
	UpdateProduct(ctx context.Context, p model.Product) (model.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	GetDriver(ctx context.Context, id int64) (model.Driver, error)
	ListDrivers(ctx context.Context) ([]model.Driver, error)
	CreateDriver(ctx context.Context, d model.Driver) (model.Driver, error)
	UpdateDriver(ctx context.Context, d model.Driver) (model.Driver, error)

	GetBooking(ctx context.Context, id int64) (model.Booking, error)
	ListBookingsByGarage(ctx context.Context, garageID int64) ([]model.Booking, error)
	ListBookingsByDriver(ctx context.Context, driverID int64) ([]model.Booking, error)
	// ListBookingsBetween returns bookings with from <= date < to.
	ListBookingsBetween(ctx context.Context, garageID int64, from, to time.Time) ([]model.Booking, error)
	CreateBooking(ctx context.Context, b model.Booking) (model.Booking, error)
	UpdateBooking(ctx context.Context, b model.Booking) (model.Booking, error)

	Close() error
}
