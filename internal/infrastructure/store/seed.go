package store

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"garage-dashboard/internal/domain/model"
	"garage-dashboard/internal/port/outbound"
)

func ptr(s string) *string { return &s }

// Seed loads the demo garage with its catalog, three drivers and three
// bookings for today. It does nothing when a garage already exists.
func Seed(ctx context.Context, st outbound.Store, now time.Time) error {
	existing, err := st.ListGarages(ctx)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	garage, err := st.CreateGarage(ctx, model.Garage{
		Name:    "John's Garage",
		Address: "123 Main St, Anytown, USA",
		Lat:     "37.7749",
		Lng:     "-122.4194",
		Status:  model.GarageOpen,
		Email:   "john@example.com",
		Phone:   "555-123-4567",
		Avatar:  ptr("https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?auto=format&fit=crop&w=100&h=100"),
	})
	if err != nil {
		return fmt.Errorf("seed garage: %w", err)
	}

	services := []model.Service{
		{Name: "Oil Change", Description: "Standard oil change with filter replacement and fluid check.", Price: 4999, Duration: 45,
			ImageURL: ptr("https://images.unsplash.com/photo-1635006446525-a0ba306acee3?q=80&w=1632&auto=format&fit=crop"), Category: "Maintenance"},
		{Name: "Tire Rotation", Description: "Rotation of all tires to ensure even wear and extend tire life.", Price: 2999, Duration: 30,
			ImageURL: ptr("https://images.unsplash.com/photo-1580273916550-e323be2ae537?auto=format&fit=crop&w=800&h=400"), Category: "Maintenance"},
		{Name: "Brake Service", Description: "Complete brake inspection, pad replacement and rotor resurfacing.", Price: 19999, Duration: 120,
			ImageURL: ptr("https://images.unsplash.com/photo-1486262715619-67b85e0b08d3?auto=format&fit=crop&w=800&h=400"), Category: "Repairs"},
	}
	serviceIDs := make([]int64, len(services))
	for i, svc := range services {
		svc.GarageID = garage.ID
		svc.IsActive = true
		created, err := st.CreateService(ctx, svc)
		if err != nil {
			return fmt.Errorf("seed service %s: %w", svc.Name, err)
		}
		serviceIDs[i] = created.ID
	}

	products := []model.Product{
		{Name: "Engine Oil (5W-30)", Description: "High-quality synthetic engine oil for most vehicles.", Price: 2499, Stock: 50,
			ImageURL: ptr("https://images.unsplash.com/photo-1649264825393-c545772c9a69?q=80&w=1374&auto=format&fit=crop"), Category: "Oils"},
		{Name: "Oil Filter", Description: "Standard oil filter compatible with most vehicles.", Price: 999, Stock: 100,
			ImageURL: ptr("https://images.unsplash.com/photo-1678723650017-745ec86ac2e3?q=80&w=1470&auto=format&fit=crop"), Category: "Filters"},
	}
	for _, p := range products {
		p.GarageID = garage.ID
		p.IsActive = true
		if _, err := st.CreateProduct(ctx, p); err != nil {
			return fmt.Errorf("seed product %s: %w", p.Name, err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("seed password: %w", err)
	}
	drivers := []model.Driver{
		{Name: "John Smith", Email: "john.smith@example.com", Phone: "555-111-2222", Address: ptr("123 Main Street, Apt 4B"),
			Zip: ptr("12345"), VehicleMake: "Honda", VehicleModel: "Civic", VehicleYear: "2018"},
		{Name: "Sarah Johnson", Email: "sarah.johnson@example.com", Phone: "555-222-3333", Address: ptr("456 Oak Avenue, Suite 101"),
			Zip: ptr("67890"), VehicleMake: "Toyota", VehicleModel: "Corolla", VehicleYear: "2020"},
		{Name: "Michael Brown", Email: "michael.brown@example.com", Phone: "555-333-4444", Address: ptr("789 Elm Boulevard"),
			Zip: ptr("34567"), VehicleMake: "Ford", VehicleModel: "F-150", VehicleYear: "2019"},
	}
	driverIDs := make([]int64, len(drivers))
	for i, d := range drivers {
		d.PasswordHash = string(hash)
		d.LastActive = now
		created, err := st.CreateDriver(ctx, d)
		if err != nil {
			return fmt.Errorf("seed driver %s: %w", d.Name, err)
		}
		driverIDs[i] = created.ID
	}

	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	bookings := []struct {
		number  string
		at      time.Duration
		status  model.BookingStatus
		price   int64
		service int
		driver  int
		created time.Duration
	}{
		{"BK-SEED0001", 10 * time.Hour, model.BookingConfirmed, 4999, 0, 0, 24 * time.Hour},
		{"BK-SEED0002", 11*time.Hour + 30*time.Minute, model.BookingInProgress, 19999, 2, 1, 48 * time.Hour},
		{"BK-SEED0003", 14 * time.Hour, model.BookingNew, 2999, 1, 2, 4 * time.Hour},
	}
	for _, b := range bookings {
		date := day.Add(b.at)
		_, err := st.CreateBooking(ctx, model.Booking{
			BookingNumber:  b.number,
			GarageID:       garage.ID,
			DriverID:       driverIDs[b.driver],
			Date:           date,
			Status:         b.status,
			TotalPrice:     b.price,
			ServicesBooked: []model.BookedService{{ServiceID: serviceIDs[b.service], Quantity: 1}},
			ProductsBooked: []model.BookedProduct{},
			CreatedAt:      date.Add(-b.created),
		})
		if err != nil {
			return fmt.Errorf("seed booking %s: %w", b.number, err)
		}
	}
	return nil
}
