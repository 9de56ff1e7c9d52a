package facade

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"garage-dashboard/internal/domain/event"
	"garage-dashboard/internal/domain/model"
	"garage-dashboard/internal/infrastructure/logger"
	"garage-dashboard/internal/port/inbound"
	"garage-dashboard/internal/port/outbound"
)

const (
	bookingNumberPrefix   = "BK-"
	bookingNumberLength   = 8
	bookingNumberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

type BookingApplicationService struct {
	store     outbound.Store
	publisher outbound.EventPublisher
	cache     outbound.Cache
	logger    logger.Logger
	now       Clock
}

var _ inbound.BookingUseCase = (*BookingApplicationService)(nil)

func NewBookingApplicationService(
	store outbound.Store,
	publisher outbound.EventPublisher,
	cache outbound.Cache,
	log logger.Logger,
	now Clock,
) *BookingApplicationService {
	return &BookingApplicationService{
		store:     store,
		publisher: publisher,
		cache:     cache,
		logger:    log.WithField("service", "booking"),
		now:       now,
	}
}

func newBookingNumber() (string, error) {
	b := make([]byte, bookingNumberLength)
	size := big.NewInt(int64(len(bookingNumberAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", fmt.Errorf("booking number: %w", err)
		}
		b[i] = bookingNumberAlphabet[n.Int64()]
	}
	return bookingNumberPrefix + string(b), nil
}

func (s *BookingApplicationService) ListBookings(ctx context.Context, garageID int64) ([]model.Booking, error) {
	return s.store.ListBookingsByGarage(ctx, garageID)
}

// TodayBookings returns the garage's bookings dated within the current
// local day.
func (s *BookingApplicationService) TodayBookings(ctx context.Context, garageID int64) ([]model.Booking, error) {
	start, end := dayBounds(s.now())
	return s.store.ListBookingsBetween(ctx, garageID, start, end)
}

// GetBookingDetails resolves the driver and catalog items of a booking.
// Items whose catalog entry has since been deleted are left out.
func (s *BookingApplicationService) GetBookingDetails(ctx context.Context, id int64) (model.BookingWithDetails, error) {
	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return model.BookingWithDetails{}, err
	}

	details := model.BookingWithDetails{
		Booking:  b,
		Services: make([]model.Service, 0, len(b.ServicesBooked)),
		Products: make([]model.Product, 0, len(b.ProductsBooked)),
	}

	if details.Driver, err = s.store.GetDriver(ctx, b.DriverID); err != nil && !errors.Is(err, outbound.ErrNotFound) {
		return model.BookingWithDetails{}, err
	}
	for _, item := range b.ServicesBooked {
		svc, err := s.store.GetService(ctx, item.ServiceID)
		if errors.Is(err, outbound.ErrNotFound) {
			continue
		}
		if err != nil {
			return model.BookingWithDetails{}, err
		}
		details.Services = append(details.Services, svc)
	}
	for _, item := range b.ProductsBooked {
		p, err := s.store.GetProduct(ctx, item.ProductID)
		if errors.Is(err, outbound.ErrNotFound) {
			continue
		}
		if err != nil {
			return model.BookingWithDetails{}, err
		}
		details.Products = append(details.Products, p)
	}
	return details, nil
}

// priceItems checks that every booked item exists and returns their total.
func (s *BookingApplicationService) priceItems(
	ctx context.Context,
	services []model.BookedService,
	products []model.BookedProduct,
) (int64, error) {
	var total int64
	for _, item := range services {
		svc, err := s.store.GetService(ctx, item.ServiceID)
		if err != nil {
			return 0, reference(err, "service", item.ServiceID)
		}
		total += svc.Price * int64(item.Quantity)
	}
	for _, item := range products {
		p, err := s.store.GetProduct(ctx, item.ProductID)
		if err != nil {
			return 0, reference(err, "product", item.ProductID)
		}
		total += p.Price * int64(item.Quantity)
	}
	return total, nil
}

// CreateBooking stores a booking and announces it on booking-updates.
// Missing fields default to status New, a generated booking number and,
// when totalPrice is zero, the catalog price of the booked items.
func (s *BookingApplicationService) CreateBooking(ctx context.Context, in inbound.CreateBookingInput) (model.Booking, error) {
	status := in.Status
	if status == "" {
		status = model.BookingNew
	}
	if !status.Valid() {
		return model.Booking{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	if _, err := s.store.GetGarage(ctx, in.GarageID); err != nil {
		return model.Booking{}, reference(err, "garage", in.GarageID)
	}
	if _, err := s.store.GetDriver(ctx, in.DriverID); err != nil {
		return model.Booking{}, reference(err, "driver", in.DriverID)
	}

	itemsTotal, err := s.priceItems(ctx, in.ServicesBooked, in.ProductsBooked)
	if err != nil {
		return model.Booking{}, err
	}
	total := in.TotalPrice
	if total == 0 {
		total = itemsTotal
	}

	number := in.BookingNumber
	if number == "" {
		if number, err = newBookingNumber(); err != nil {
			return model.Booking{}, err
		}
	}

	services := in.ServicesBooked
	if services == nil {
		services = []model.BookedService{}
	}
	products := in.ProductsBooked
	if products == nil {
		products = []model.BookedProduct{}
	}

	b, err := s.store.CreateBooking(ctx, model.Booking{
		BookingNumber:  number,
		GarageID:       in.GarageID,
		DriverID:       in.DriverID,
		Date:           in.Date,
		Status:         status,
		TotalPrice:     total,
		Notes:          in.Notes,
		ServicesBooked: services,
		ProductsBooked: products,
		CreatedAt:      s.now(),
	})
	if err != nil {
		return model.Booking{}, fmt.Errorf("create booking: %w", err)
	}

	s.logger.Infof("Booking %s created for garage %d", b.BookingNumber, b.GarageID)
	invalidateAnalytics(ctx, s.cache, s.logger, b.GarageID)
	publish(ctx, s.publisher, event.BookingCreated(b))
	return b, nil
}

func (s *BookingApplicationService) UpdateBooking(ctx context.Context, id int64, patch inbound.BookingPatch) (model.Booking, error) {
	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return model.Booking{}, err
	}

	if patch.ServicesBooked != nil || patch.ProductsBooked != nil {
		services, products := b.ServicesBooked, b.ProductsBooked
		if patch.ServicesBooked != nil {
			services = *patch.ServicesBooked
		}
		if patch.ProductsBooked != nil {
			products = *patch.ProductsBooked
		}
		if _, err := s.priceItems(ctx, services, products); err != nil {
			return model.Booking{}, err
		}
		b.ServicesBooked, b.ProductsBooked = services, products
	}
	if patch.Date != nil {
		b.Date = *patch.Date
	}
	if patch.TotalPrice != nil {
		b.TotalPrice = *patch.TotalPrice
	}
	if patch.Notes != nil {
		b.Notes = patch.Notes
	}

	b, err = s.store.UpdateBooking(ctx, b)
	if err != nil {
		return model.Booking{}, fmt.Errorf("update booking %d: %w", id, err)
	}

	invalidateAnalytics(ctx, s.cache, s.logger, b.GarageID)
	publish(ctx, s.publisher, event.BookingUpdated(b))
	return b, nil
}

func (s *BookingApplicationService) UpdateBookingStatus(ctx context.Context, id int64, status model.BookingStatus) (model.Booking, error) {
	if !status.Valid() {
		return model.Booking{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return model.Booking{}, err
	}
	b.Status = status

	b, err = s.store.UpdateBooking(ctx, b)
	if err != nil {
		return model.Booking{}, fmt.Errorf("update booking %d status: %w", id, err)
	}

	s.logger.Infof("Booking %s is now %s", b.BookingNumber, b.Status)
	invalidateAnalytics(ctx, s.cache, s.logger, b.GarageID)
	publish(ctx, s.publisher, event.BookingStatusChanged(b))
	return b, nil
}
