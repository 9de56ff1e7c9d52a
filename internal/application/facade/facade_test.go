package facade_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"garage-dashboard/internal/application/facade"
	"garage-dashboard/internal/domain/event"
	"garage-dashboard/internal/domain/model"
	"garage-dashboard/internal/infrastructure/cache"
	"garage-dashboard/internal/infrastructure/logger"
	"garage-dashboard/internal/infrastructure/store"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type published struct {
	channel string
	event   event.Event
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *fakePublisher) Broadcast(_ context.Context, channel string, data any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ev, _ := data.(event.Event)
	p.events = append(p.events, published{channel: channel, event: ev})
}

func (p *fakePublisher) all() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.events...)
}

// expectOne fails unless exactly one event of type want was published on
// channel, and returns it.
func (p *fakePublisher) expectOne(t *testing.T, channel string, want event.Type) event.Event {
	t.Helper()
	events := p.all()
	if len(events) != 1 {
		t.Fatalf("published %d events, want 1: %+v", len(events), events)
	}
	if events[0].channel != channel {
		t.Errorf("channel: got %q, want %q", events[0].channel, channel)
	}
	if events[0].event == nil || events[0].event.EventType() != want {
		t.Fatalf("event: got %+v, want type %q", events[0].event, want)
	}
	return events[0].event
}

func (p *fakePublisher) reset() {
	p.mu.Lock()
	p.events = nil
	p.mu.Unlock()
}

type fixture struct {
	store     *store.MemoryStore
	publisher *fakePublisher
	now       time.Time

	garages   *facade.GarageApplicationService
	catalog   *facade.CatalogApplicationService
	drivers   *facade.DriverApplicationService
	bookings  *facade.BookingApplicationService
	analytics *facade.AnalyticsApplicationService

	garage  model.Garage
	driver  model.Driver
	service model.Service
	product model.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		store:     store.NewMemoryStore(),
		publisher: &fakePublisher{},
		now:       fixedNow,
	}
	clock := func() time.Time { return f.now }
	log := logger.NewNop()
	c := cache.NewMemory(clock)

	f.garages = facade.NewGarageApplicationService(f.store, f.publisher, log)
	f.catalog = facade.NewCatalogApplicationService(f.store, f.publisher, c, log)
	f.drivers = facade.NewDriverApplicationService(f.store, log, clock, 4)
	f.bookings = facade.NewBookingApplicationService(f.store, f.publisher, c, log, clock)
	f.analytics = facade.NewAnalyticsApplicationService(f.store, c, time.Minute, log, clock)

	var err error
	if f.garage, err = f.store.CreateGarage(ctx, model.Garage{
		Name: "AutoFix", Address: "1 Main St", Lat: "0", Lng: "0",
		Status: model.GarageOpen, Email: "shop@example.com", Phone: "555",
	}); err != nil {
		t.Fatalf("CreateGarage: %v", err)
	}
	if f.driver, err = f.store.CreateDriver(ctx, model.Driver{
		Name: "Dana", Email: "dana@example.com", Phone: "556",
		VehicleMake: "Honda", VehicleModel: "Civic", VehicleYear: "2019",
	}); err != nil {
		t.Fatalf("CreateDriver: %v", err)
	}
	if f.service, err = f.store.CreateService(ctx, model.Service{
		GarageID: f.garage.ID, Name: "Oil Change", Price: 4999, Duration: 30,
		Category: "Maintenance", IsActive: true,
	}); err != nil {
		t.Fatalf("CreateService: %v", err)
	}
	if f.product, err = f.store.CreateProduct(ctx, model.Product{
		GarageID: f.garage.ID, Name: "Wiper Blades", Price: 1500, Stock: 10,
		Category: "Parts", IsActive: true,
	}); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	return f
}
