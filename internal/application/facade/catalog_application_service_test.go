package facade_test

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"garage-dashboard/internal/application/facade"
	"garage-dashboard/internal/domain/event"
	"garage-dashboard/internal/domain/model"
	"garage-dashboard/internal/port/inbound"
	"garage-dashboard/internal/port/outbound"
)

func TestServiceLifecycle_PublishesEachMutation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	svc, err := f.catalog.CreateService(ctx, inbound.CreateServiceInput{
		GarageID: f.garage.ID, Name: "Brake Service", Price: 12000, Duration: 60, Category: "Repair",
	})
	if err != nil {
		t.Fatalf("CreateService: %v", err)
	}
	if !svc.IsActive {
		t.Error("services should default to active")
	}
	f.publisher.expectOne(t, event.ChannelServices, event.TypeServiceCreated)
	f.publisher.reset()

	price := int64(13000)
	inactive := false
	svc, err = f.catalog.UpdateService(ctx, svc.ID, inbound.ServicePatch{Price: &price, IsActive: &inactive})
	if err != nil {
		t.Fatalf("UpdateService: %v", err)
	}
	if svc.Price != 13000 || svc.IsActive || svc.Name != "Brake Service" {
		t.Errorf("unexpected service %+v", svc)
	}
	f.publisher.expectOne(t, event.ChannelServices, event.TypeServiceUpdated)
	f.publisher.reset()

	if err := f.catalog.DeleteService(ctx, svc.ID); err != nil {
		t.Fatalf("DeleteService: %v", err)
	}
	ev := f.publisher.expectOne(t, event.ChannelServices, event.TypeServiceDeleted)
	if ev.(event.ServiceEvent).Service.ID != svc.ID {
		t.Errorf("deleted event should carry the removed service")
	}
	f.publisher.reset()

	if err := f.catalog.DeleteService(ctx, svc.ID); !errors.Is(err, outbound.ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
	if n := len(f.publisher.all()); n != 0 {
		t.Errorf("published %d events for a failed delete", n)
	}
}

func TestProductLifecycle_PublishesEachMutation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.catalog.CreateProduct(ctx, inbound.CreateProductInput{
		GarageID: f.garage.ID, Name: "Air Filter", Price: 2500, Stock: 4, Category: "Parts",
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	f.publisher.expectOne(t, event.ChannelProducts, event.TypeProductCreated)
	f.publisher.reset()

	stock := 3
	if p, err = f.catalog.UpdateProduct(ctx, p.ID, inbound.ProductPatch{Stock: &stock}); err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if p.Stock != 3 {
		t.Errorf("stock: got %d, want 3", p.Stock)
	}
	f.publisher.expectOne(t, event.ChannelProducts, event.TypeProductUpdated)
	f.publisher.reset()

	if err := f.catalog.DeleteProduct(ctx, p.ID); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	f.publisher.expectOne(t, event.ChannelProducts, event.TypeProductDeleted)

	products, err := f.catalog.ListProducts(ctx, f.garage.ID)
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	for _, got := range products {
		if got.ID == p.ID {
			t.Error("deleted product still listed")
		}
	}
}

func TestCreateService_UnknownGarage(t *testing.T) {
	f := newFixture(t)

	_, err := f.catalog.CreateService(context.Background(), inbound.CreateServiceInput{
		GarageID: 999, Name: "Ghost", Duration: 10, Category: "x",
	})
	if !errors.Is(err, facade.ErrInvalidReference) {
		t.Fatalf("got %v, want ErrInvalidReference", err)
	}
	if n := len(f.publisher.all()); n != 0 {
		t.Errorf("published %d events", n)
	}
}

func TestGarageStatusAndDetails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	g, err := f.garages.UpdateGarageStatus(ctx, f.garage.ID, model.GarageBusy)
	if err != nil {
		t.Fatalf("UpdateGarageStatus: %v", err)
	}
	if g.Status != model.GarageBusy {
		t.Errorf("status: got %q", g.Status)
	}
	ev := f.publisher.expectOne(t, event.ChannelGarages, event.TypeGarageStatusChanged)
	if ev.(event.GarageEvent).Garage.Status != model.GarageBusy {
		t.Error("event should carry the new status")
	}
	f.publisher.reset()

	phone := "555-0100"
	if g, err = f.garages.UpdateGarage(ctx, f.garage.ID, inbound.GaragePatch{Phone: &phone}); err != nil {
		t.Fatalf("UpdateGarage: %v", err)
	}
	if g.Phone != phone || g.Status != model.GarageBusy {
		t.Errorf("unexpected garage %+v", g)
	}
	f.publisher.expectOne(t, event.ChannelGarages, event.TypeGarageUpdated)
	f.publisher.reset()

	if _, err := f.garages.UpdateGarageStatus(ctx, f.garage.ID, "Sleeping"); !errors.Is(err, facade.ErrInvalidStatus) {
		t.Errorf("got %v, want ErrInvalidStatus", err)
	}
	if _, err := f.garages.UpdateGarageStatus(ctx, 999, model.GarageOpen); !errors.Is(err, outbound.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
	if n := len(f.publisher.all()); n != 0 {
		t.Errorf("published %d events for failed updates", n)
	}
}

func TestCreateGarage_DefaultsToClosed(t *testing.T) {
	f := newFixture(t)

	g, err := f.garages.CreateGarage(context.Background(), inbound.CreateGarageInput{
		Name: "Second", Address: "2 Main St", Lat: "1", Lng: "1", Email: "b@example.com", Phone: "1",
	})
	if err != nil {
		t.Fatalf("CreateGarage: %v", err)
	}
	if g.Status != model.GarageClosed {
		t.Errorf("status: got %q, want Closed", g.Status)
	}
	if n := len(f.publisher.all()); n != 0 {
		t.Errorf("garage creation should not broadcast, got %d events", n)
	}
}

func TestDriverPasswordsAreHashed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d, err := f.drivers.CreateDriver(ctx, inbound.CreateDriverInput{
		Name: "Lee", Email: "lee@example.com", Phone: "1", Password: "hunter22",
		VehicleMake: "Ford", VehicleModel: "Focus", VehicleYear: "2015",
	})
	if err != nil {
		t.Fatalf("CreateDriver: %v", err)
	}
	if d.PasswordHash == "hunter22" {
		t.Fatal("password stored in clear text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(d.PasswordHash), []byte("hunter22")); err != nil {
		t.Errorf("hash does not match: %v", err)
	}

	pw := "changed99"
	d, err = f.drivers.UpdateDriver(ctx, d.ID, inbound.DriverPatch{Password: &pw})
	if err != nil {
		t.Fatalf("UpdateDriver: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(d.PasswordHash), []byte(pw)); err != nil {
		t.Errorf("updated hash does not match: %v", err)
	}
	if n := len(f.publisher.all()); n != 0 {
		t.Errorf("driver changes should not broadcast, got %d events", n)
	}

	if _, err := f.drivers.ListDriverBookings(ctx, 999); !errors.Is(err, outbound.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}
