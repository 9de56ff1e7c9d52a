package facade_test

import (
	"context"
	"testing"
	"time"

	"garage-dashboard/internal/domain/model"
	"garage-dashboard/internal/port/inbound"
)

func (f *fixture) book(t *testing.T, date time.Time, status model.BookingStatus, total int64, items ...model.BookedService) model.Booking {
	t.Helper()
	b, err := f.bookings.CreateBooking(context.Background(), inbound.CreateBookingInput{
		GarageID:       f.garage.ID,
		DriverID:       f.driver.ID,
		Date:           date,
		Status:         status,
		TotalPrice:     total,
		ServicesBooked: items,
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	return b
}

func TestBookingCountByDate_InclusiveRange(t *testing.T) {
	f := newFixture(t)
	day := func(d int) time.Time { return time.Date(2024, 4, d, 9, 0, 0, 0, time.UTC) }

	f.book(t, day(1), model.BookingNew, 100)
	f.book(t, day(1), model.BookingNew, 100)
	f.book(t, day(3), model.BookingNew, 100)
	f.book(t, day(5), model.BookingNew, 100)

	got, err := f.analytics.BookingCountByDate(context.Background(), f.garage.ID, day(1), day(3))
	if err != nil {
		t.Fatalf("BookingCountByDate: %v", err)
	}
	want := []model.DailyBookingCount{{Date: "2024-04-01", Count: 2}, {Date: "2024-04-03", Count: 1}}
	if len(got) != len(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d]: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRevenueByService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	brakes, err := f.store.CreateService(ctx, model.Service{GarageID: f.garage.ID, Name: "Brakes", Price: 10000, Duration: 60})
	if err != nil {
		t.Fatalf("CreateService: %v", err)
	}

	f.book(t, fixedNow, model.BookingNew, 1,
		model.BookedService{ServiceID: f.service.ID, Quantity: 2},
		model.BookedService{ServiceID: brakes.ID, Quantity: 1},
	)
	f.book(t, fixedNow.Add(time.Hour), model.BookingNew, 1,
		model.BookedService{ServiceID: brakes.ID, Quantity: 1},
	)

	got, err := f.analytics.RevenueByService(ctx, f.garage.ID, fixedNow.Add(-time.Hour), fixedNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("RevenueByService: %v", err)
	}
	want := []model.ServiceRevenue{{Service: "Brakes", Revenue: 20000}, {Service: "Oil Change", Revenue: 2 * 4999}}
	if len(got) != len(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d]: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestTodaySummary_InvalidatedByBookingMutations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := f.book(t, fixedNow, model.BookingNew, 5000)
	f.book(t, fixedNow.Add(time.Hour), model.BookingCompleted, 3000)
	f.book(t, fixedNow.Add(-24*time.Hour), model.BookingNew, 9999)

	sum, err := f.analytics.TodaySummary(ctx, f.garage.ID)
	if err != nil {
		t.Fatalf("TodaySummary: %v", err)
	}
	if sum != (model.TodaySummary{Bookings: 2, Revenue: 8000, PendingActions: 1}) {
		t.Fatalf("unexpected summary %+v", sum)
	}

	if _, err := f.bookings.UpdateBookingStatus(ctx, b.ID, model.BookingInProgress); err != nil {
		t.Fatalf("UpdateBookingStatus: %v", err)
	}
	sum, err = f.analytics.TodaySummary(ctx, f.garage.ID)
	if err != nil {
		t.Fatalf("TodaySummary: %v", err)
	}
	if sum.PendingActions != 0 {
		t.Errorf("pending actions after status change: got %d, want 0", sum.PendingActions)
	}
}

func TestTodaySummary_ServedFromCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.book(t, fixedNow, model.BookingNew, 5000)
	if _, err := f.analytics.TodaySummary(ctx, f.garage.ID); err != nil {
		t.Fatalf("TodaySummary: %v", err)
	}

	// Writes that bypass the facade are not seen until the entry expires.
	if _, err := f.store.CreateBooking(ctx, model.Booking{GarageID: f.garage.ID, Date: fixedNow, TotalPrice: 1}); err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	sum, _ := f.analytics.TodaySummary(ctx, f.garage.ID)
	if sum.Bookings != 1 {
		t.Errorf("cached bookings: got %d, want 1", sum.Bookings)
	}

	f.now = f.now.Add(2 * time.Minute)
	sum, _ = f.analytics.TodaySummary(ctx, f.garage.ID)
	if sum.Bookings != 2 {
		t.Errorf("bookings after ttl: got %d, want 2", sum.Bookings)
	}
}

func TestHeroMetrics(t *testing.T) {
	f := newFixture(t)

	f.book(t, fixedNow, model.BookingCompleted, 1000)
	f.book(t, fixedNow, model.BookingCompleted, 2000)
	f.book(t, fixedNow, model.BookingCancelled, 4000)
	f.book(t, fixedNow, model.BookingNew, 8000)
	f.book(t, fixedNow.AddDate(0, -1, 0), model.BookingCompleted, 16000)

	hm, err := f.analytics.HeroMetrics(context.Background(), f.garage.ID)
	if err != nil {
		t.Fatalf("HeroMetrics: %v", err)
	}
	if hm.TotalBookings != 5 {
		t.Errorf("total bookings: got %d, want 5", hm.TotalBookings)
	}
	if hm.MonthlyRevenue != 15000 {
		t.Errorf("monthly revenue: got %d, want 15000", hm.MonthlyRevenue)
	}
	if hm.CompletionRate != 75 {
		t.Errorf("completion rate: got %v, want 75", hm.CompletionRate)
	}
}
