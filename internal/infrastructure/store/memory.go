package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"garage-dashboard/internal/domain/model"
	"garage-dashboard/internal/port/outbound"
)

// MemoryStore keeps every collection in maps keyed by auto-increment IDs.
// Contents are lost on restart.
type MemoryStore struct {
	mu sync.RWMutex

	garages  map[int64]model.Garage
	services map[int64]model.Service
	products map[int64]model.Product
	drivers  map[int64]model.Driver
	bookings map[int64]model.Booking

	nextID map[string]int64
}

var _ outbound.Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		garages:  make(map[int64]model.Garage),
		services: make(map[int64]model.Service),
		products: make(map[int64]model.Product),
		drivers:  make(map[int64]model.Driver),
		bookings: make(map[int64]model.Booking),
		nextID:   make(map[string]int64),
	}
}

func (s *MemoryStore) Close() error { return nil }

// allocate must be called with mu held.
func (s *MemoryStore) allocate(collection string) int64 {
	s.nextID[collection]++
	return s.nextID[collection]
}

func notFound(entity string, id int64) error {
	return fmt.Errorf("%s %d: %w", entity, id, outbound.ErrNotFound)
}

func sortedValues[T any](m map[int64]T, keep func(T) bool) []T {
	ids := make([]int64, 0, len(m))
	for id, v := range m {
		if keep == nil || keep(v) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}

func (s *MemoryStore) GetGarage(_ context.Context, id int64) (model.Garage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.garages[id]
	if !ok {
		return model.Garage{}, notFound("garage", id)
	}
	return g, nil
}

func (s *MemoryStore) ListGarages(context.Context) ([]model.Garage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.garages, nil), nil
}

func (s *MemoryStore) CreateGarage(_ context.Context, g model.Garage) (model.Garage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ID = s.allocate("garages")
	s.garages[g.ID] = g
	return g, nil
}

func (s *MemoryStore) UpdateGarage(_ context.Context, g model.Garage) (model.Garage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.garages[g.ID]; !ok {
		return model.Garage{}, notFound("garage", g.ID)
	}
	s.garages[g.ID] = g
	return g, nil
}

func (s *MemoryStore) GetService(_ context.Context, id int64) (model.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	svc, ok := s.services[id]
	if !ok {
		return model.Service{}, notFound("service", id)
	}
	return svc, nil
}

func (s *MemoryStore) ListServicesByGarage(_ context.Context, garageID int64) ([]model.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.services, func(v model.Service) bool { return v.GarageID == garageID }), nil
}

func (s *MemoryStore) CreateService(_ context.Context, svc model.Service) (model.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	svc.ID = s.allocate("services")
	s.services[svc.ID] = svc
	return svc, nil
}

func (s *MemoryStore) UpdateService(_ context.Context, svc model.Service) (model.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.services[svc.ID]; !ok {
		return model.Service{}, notFound("service", svc.ID)
	}
	s.services[svc.ID] = svc
	return svc, nil
}

func (s *MemoryStore) DeleteService(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.services[id]; !ok {
		return notFound("service", id)
	}
	delete(s.services, id)
	return nil
}

func (s *MemoryStore) GetProduct(_ context.Context, id int64) (model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return model.Product{}, notFound("product", id)
	}
	return p, nil
}

func (s *MemoryStore) ListProductsByGarage(_ context.Context, garageID int64) ([]model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.products, func(v model.Product) bool { return v.GarageID == garageID }), nil
}

func (s *MemoryStore) CreateProduct(_ context.Context, p model.Product) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.allocate("products")
	s.products[p.ID] = p
	return p, nil
}

func (s *MemoryStore) UpdateProduct(_ context.Context, p model.Product) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		return model.Product{}, notFound("product", p.ID)
	}
	s.products[p.ID] = p
	return p, nil
}

func (s *MemoryStore) DeleteProduct(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return notFound("product", id)
	}
	delete(s.products, id)
	return nil
}

func (s *MemoryStore) GetDriver(_ context.Context, id int64) (model.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drivers[id]
	if !ok {
		return model.Driver{}, notFound("driver", id)
	}
	return d, nil
}

func (s *MemoryStore) ListDrivers(context.Context) ([]model.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.drivers, nil), nil
}

func (s *MemoryStore) CreateDriver(_ context.Context, d model.Driver) (model.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = s.allocate("drivers")
	s.drivers[d.ID] = d
	return d, nil
}

func (s *MemoryStore) UpdateDriver(_ context.Context, d model.Driver) (model.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drivers[d.ID]; !ok {
		return model.Driver{}, notFound("driver", d.ID)
	}
	s.drivers[d.ID] = d
	return d, nil
}

// bookings hold slices, so they are copied on the way in and out.
func cloneBooking(b model.Booking) model.Booking {
	b.ServicesBooked = append([]model.BookedService{}, b.ServicesBooked...)
	b.ProductsBooked = append([]model.BookedProduct{}, b.ProductsBooked...)
	return b
}

func cloneBookings(in []model.Booking) []model.Booking {
	for i := range in {
		in[i] = cloneBooking(in[i])
	}
	return in
}

func (s *MemoryStore) GetBooking(_ context.Context, id int64) (model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return model.Booking{}, notFound("booking", id)
	}
	return cloneBooking(b), nil
}

func (s *MemoryStore) ListBookingsByGarage(_ context.Context, garageID int64) ([]model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneBookings(sortedValues(s.bookings, func(b model.Booking) bool { return b.GarageID == garageID })), nil
}

func (s *MemoryStore) ListBookingsByDriver(_ context.Context, driverID int64) ([]model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneBookings(sortedValues(s.bookings, func(b model.Booking) bool { return b.DriverID == driverID })), nil
}

func (s *MemoryStore) ListBookingsBetween(_ context.Context, garageID int64, from, to time.Time) ([]model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneBookings(sortedValues(s.bookings, func(b model.Booking) bool {
		return b.GarageID == garageID && !b.Date.Before(from) && b.Date.Before(to)
	})), nil
}

func (s *MemoryStore) CreateBooking(_ context.Context, b model.Booking) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.allocate("bookings")
	s.bookings[b.ID] = cloneBooking(b)
	return cloneBooking(b), nil
}

func (s *MemoryStore) UpdateBooking(_ context.Context, b model.Booking) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[b.ID]; !ok {
		return model.Booking{}, notFound("booking", b.ID)
	}
	s.bookings[b.ID] = cloneBooking(b)
	return cloneBooking(b), nil
}
