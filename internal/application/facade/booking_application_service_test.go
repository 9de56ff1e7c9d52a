package facade_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"garage-dashboard/internal/application/facade"
	"garage-dashboard/internal/domain/event"
	"garage-dashboard/internal/domain/model"
	"garage-dashboard/internal/port/inbound"
	"garage-dashboard/internal/port/outbound"
)

func TestCreateBooking_PublishesBookingCreated(t *testing.T) {
	f := newFixture(t)

	b, err := f.bookings.CreateBooking(context.Background(), inbound.CreateBookingInput{
		GarageID:       f.garage.ID,
		DriverID:       f.driver.ID,
		Date:           fixedNow.Add(2 * time.Hour),
		ServicesBooked: []model.BookedService{{ServiceID: f.service.ID, Quantity: 2}},
		ProductsBooked: []model.BookedProduct{{ProductID: f.product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	if b.Status != model.BookingNew {
		t.Errorf("status: got %q, want New", b.Status)
	}
	if b.TotalPrice != 2*4999+1500 {
		t.Errorf("total price: got %d, want %d", b.TotalPrice, 2*4999+1500)
	}
	if !strings.HasPrefix(b.BookingNumber, "BK-") || len(b.BookingNumber) != 11 {
		t.Errorf("booking number: got %q", b.BookingNumber)
	}
	if !b.CreatedAt.Equal(fixedNow) {
		t.Errorf("createdAt: got %v, want %v", b.CreatedAt, fixedNow)
	}

	ev := f.publisher.expectOne(t, event.ChannelBookings, event.TypeBookingCreated)
	if got := ev.(event.BookingEvent).Booking.ID; got != b.ID {
		t.Errorf("event booking id: got %d, want %d", got, b.ID)
	}
}

func TestCreateBooking_KeepsExplicitFields(t *testing.T) {
	f := newFixture(t)

	b, err := f.bookings.CreateBooking(context.Background(), inbound.CreateBookingInput{
		BookingNumber: "BK-CUSTOM01",
		GarageID:      f.garage.ID,
		DriverID:      f.driver.ID,
		Date:          fixedNow,
		Status:        model.BookingConfirmed,
		TotalPrice:    12345,
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if b.BookingNumber != "BK-CUSTOM01" || b.Status != model.BookingConfirmed || b.TotalPrice != 12345 {
		t.Errorf("unexpected booking %+v", b)
	}
	if b.ServicesBooked == nil || b.ProductsBooked == nil {
		t.Error("booked item lists should be empty, not nil")
	}
}

func TestCreateBooking_InvalidReferences(t *testing.T) {
	tests := []struct {
		name string
		edit func(f *fixture, in *inbound.CreateBookingInput)
	}{
		{"unknown garage", func(_ *fixture, in *inbound.CreateBookingInput) { in.GarageID = 999 }},
		{"unknown driver", func(_ *fixture, in *inbound.CreateBookingInput) { in.DriverID = 999 }},
		{"unknown service", func(_ *fixture, in *inbound.CreateBookingInput) {
			in.ServicesBooked = []model.BookedService{{ServiceID: 999, Quantity: 1}}
		}},
		{"unknown product", func(_ *fixture, in *inbound.CreateBookingInput) {
			in.ProductsBooked = []model.BookedProduct{{ProductID: 999, Quantity: 1}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			in := inbound.CreateBookingInput{GarageID: f.garage.ID, DriverID: f.driver.ID, Date: fixedNow}
			tt.edit(f, &in)

			_, err := f.bookings.CreateBooking(context.Background(), in)
			if !errors.Is(err, facade.ErrInvalidReference) {
				t.Fatalf("got %v, want ErrInvalidReference", err)
			}
			if n := len(f.publisher.all()); n != 0 {
				t.Errorf("published %d events for a failed create", n)
			}
		})
	}
}

func TestUpdateBookingStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.bookings.CreateBooking(ctx, inbound.CreateBookingInput{
		GarageID: f.garage.ID, DriverID: f.driver.ID, Date: fixedNow,
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	f.publisher.reset()

	if _, err := f.bookings.UpdateBookingStatus(ctx, b.ID, "Lost"); !errors.Is(err, facade.ErrInvalidStatus) {
		t.Fatalf("invalid status: got %v, want ErrInvalidStatus", err)
	}
	if _, err := f.bookings.UpdateBookingStatus(ctx, 999, model.BookingCompleted); !errors.Is(err, outbound.ErrNotFound) {
		t.Fatalf("missing booking: got %v, want ErrNotFound", err)
	}
	if n := len(f.publisher.all()); n != 0 {
		t.Fatalf("published %d events for failed updates", n)
	}

	got, err := f.bookings.UpdateBookingStatus(ctx, b.ID, model.BookingInProgress)
	if err != nil {
		t.Fatalf("UpdateBookingStatus: %v", err)
	}
	if got.Status != model.BookingInProgress {
		t.Errorf("status: got %q", got.Status)
	}

	ev := f.publisher.expectOne(t, event.ChannelBookings, event.TypeBookingStatusChanged)
	if ev.(event.BookingEvent).Booking.Status != model.BookingInProgress {
		t.Errorf("event carries stale status %q", ev.(event.BookingEvent).Booking.Status)
	}
}

func TestUpdateBooking_PatchesAndPublishes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.bookings.CreateBooking(ctx, inbound.CreateBookingInput{
		GarageID: f.garage.ID, DriverID: f.driver.ID, Date: fixedNow, TotalPrice: 100,
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	f.publisher.reset()

	notes := "customer waiting"
	items := []model.BookedService{{ServiceID: f.service.ID, Quantity: 1}}
	got, err := f.bookings.UpdateBooking(ctx, b.ID, inbound.BookingPatch{
		Notes:          &notes,
		ServicesBooked: &items,
	})
	if err != nil {
		t.Fatalf("UpdateBooking: %v", err)
	}
	if got.Notes == nil || *got.Notes != notes {
		t.Errorf("notes: got %v", got.Notes)
	}
	if len(got.ServicesBooked) != 1 || got.TotalPrice != 100 {
		t.Errorf("unexpected booking %+v", got)
	}
	f.publisher.expectOne(t, event.ChannelBookings, event.TypeBookingUpdated)

	bad := []model.BookedService{{ServiceID: 999, Quantity: 1}}
	f.publisher.reset()
	if _, err := f.bookings.UpdateBooking(ctx, b.ID, inbound.BookingPatch{ServicesBooked: &bad}); !errors.Is(err, facade.ErrInvalidReference) {
		t.Fatalf("got %v, want ErrInvalidReference", err)
	}
	if n := len(f.publisher.all()); n != 0 {
		t.Errorf("published %d events for a failed update", n)
	}
}

func TestTodayBookings_LocalDayWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dates := []time.Time{
		fixedNow.Add(-13 * time.Hour), // yesterday
		fixedNow.Add(-12 * time.Hour), // midnight
		fixedNow.Add(11 * time.Hour),
		fixedNow.Add(12 * time.Hour), // tomorrow
	}
	for _, d := range dates {
		if _, err := f.bookings.CreateBooking(ctx, inbound.CreateBookingInput{
			GarageID: f.garage.ID, DriverID: f.driver.ID, Date: d,
		}); err != nil {
			t.Fatalf("CreateBooking: %v", err)
		}
	}

	got, err := f.bookings.TodayBookings(ctx, f.garage.ID)
	if err != nil {
		t.Fatalf("TodayBookings: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d bookings today, want 2", len(got))
	}
}

func TestGetBookingDetails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.bookings.CreateBooking(ctx, inbound.CreateBookingInput{
		GarageID:       f.garage.ID,
		DriverID:       f.driver.ID,
		Date:           fixedNow,
		ServicesBooked: []model.BookedService{{ServiceID: f.service.ID, Quantity: 1}},
		ProductsBooked: []model.BookedProduct{{ProductID: f.product.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if err := f.store.DeleteProduct(ctx, f.product.ID); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}

	d, err := f.bookings.GetBookingDetails(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBookingDetails: %v", err)
	}
	if d.Driver.ID != f.driver.ID {
		t.Errorf("driver: got %d, want %d", d.Driver.ID, f.driver.ID)
	}
	if len(d.Services) != 1 || d.Services[0].Name != "Oil Change" {
		t.Errorf("services: got %+v", d.Services)
	}
	if len(d.Products) != 0 {
		t.Errorf("deleted product should be skipped, got %+v", d.Products)
	}

	if _, err := f.bookings.GetBookingDetails(ctx, 999); !errors.Is(err, outbound.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}
