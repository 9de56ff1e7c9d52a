// Package model holds the garage dashboard entities shared by the store,
// the application facade and the event payloads.
package model

import "time"

type GarageStatus string

const (
	GarageOpen   GarageStatus = "Open"
	GarageBusy   GarageStatus = "Busy"
	GarageClosed GarageStatus = "Closed"
)

func (s GarageStatus) Valid() bool {
	switch s {
	case GarageOpen, GarageBusy, GarageClosed:
		return true
	}
	return false
}

type BookingStatus string

const (
	BookingNew        BookingStatus = "New"
	BookingConfirmed  BookingStatus = "Confirmed"
	BookingInProgress BookingStatus = "InProgress"
	BookingCompleted  BookingStatus = "Completed"
	BookingCancelled  BookingStatus = "Cancelled"
	BookingNoShow     BookingStatus = "NoShow"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingNew, BookingConfirmed, BookingInProgress, BookingCompleted, BookingCancelled, BookingNoShow:
		return true
	}
	return false
}

// Pending reports whether the booking still needs staff action.
func (s BookingStatus) Pending() bool {
	return s == BookingNew || s == BookingConfirmed
}

type Garage struct {
	ID      int64        `json:"id"`
	Name    string       `json:"name"`
	Address string       `json:"address"`
	Lat     string       `json:"lat"`
	Lng     string       `json:"lng"`
	Status  GarageStatus `json:"status"`
	Email   string       `json:"email"`
	Phone   string       `json:"phone"`
	Avatar  *string      `json:"avatar"`
}

// Service prices are in cents, durations in minutes.
type Service struct {
	ID          int64   `json:"id"`
	GarageID    int64   `json:"garageId"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       int64   `json:"price"`
	Duration    int     `json:"duration"`
	ImageURL    *string `json:"imageUrl"`
	Category    string  `json:"category"`
	IsActive    bool    `json:"isActive"`
}

type Product struct {
	ID          int64   `json:"id"`
	GarageID    int64   `json:"garageId"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       int64   `json:"price"`
	Stock       int     `json:"stock"`
	ImageURL    *string `json:"imageUrl"`
	Category    string  `json:"category"`
	IsActive    bool    `json:"isActive"`
}

type Driver struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	Address      *string   `json:"address"`
	Zip          *string   `json:"zip"`
	VehicleMake  string    `json:"vehicleMake"`
	VehicleModel string    `json:"vehicleModel"`
	VehicleYear  string    `json:"vehicleYear"`
	Avatar       *string   `json:"avatar"`
	LastActive   time.Time `json:"lastActive"`
}

// BookedService references a catalog service on a booking.
type BookedService struct {
	ServiceID int64 `json:"serviceId" validate:"gt=0"`
	Quantity  int   `json:"quantity" validate:"gt=0"`
}

type BookedProduct struct {
	ProductID int64 `json:"productId" validate:"gt=0"`
	Quantity  int   `json:"quantity" validate:"gt=0"`
}

type Booking struct {
	ID             int64           `json:"id"`
	BookingNumber  string          `json:"bookingNumber"`
	GarageID       int64           `json:"garageId"`
	DriverID       int64           `json:"driverId"`
	Date           time.Time       `json:"date"`
	Status         BookingStatus   `json:"status"`
	TotalPrice     int64           `json:"totalPrice"`
	Notes          *string         `json:"notes"`
	ServicesBooked []BookedService `json:"servicesBooked"`
	ProductsBooked []BookedProduct `json:"productsBooked"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// BookingWithDetails resolves a booking's references for the detail view.
type BookingWithDetails struct {
	Booking
	Driver   Driver    `json:"driver"`
	Services []Service `json:"services"`
	Products []Product `json:"products"`
}
