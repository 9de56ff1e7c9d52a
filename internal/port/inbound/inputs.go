package inbound

import (
	"time"

	"garage-dashboard/internal/domain/model"
)

// Create inputs carry validator tags; patch fields left nil are unchanged.

type CreateGarageInput struct {
	Name    string             `json:"name" validate:"required"`
	Address string             `json:"address" validate:"required"`
	Lat     string             `json:"lat" validate:"required"`
	Lng     string             `json:"lng" validate:"required"`
	Status  model.GarageStatus `json:"status" validate:"omitempty,oneof=Open Busy Closed"`
	Email   string             `json:"email" validate:"required,email"`
	Phone   string             `json:"phone" validate:"required"`
	Avatar  *string            `json:"avatar"`
}

type GaragePatch struct {
	Name    *string `json:"name" validate:"omitempty,min=1"`
	Address *string `json:"address" validate:"omitempty,min=1"`
	Lat     *string `json:"lat"`
	Lng     *string `json:"lng"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Phone   *string `json:"phone"`
	Avatar  *string `json:"avatar"`
}

type CreateServiceInput struct {
	GarageID    int64   `json:"garageId" validate:"required,gt=0"`
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Price       int64   `json:"price" validate:"gte=0"`
	Duration    int     `json:"duration" validate:"gt=0"`
	ImageURL    *string `json:"imageUrl"`
	Category    string  `json:"category" validate:"required"`
	IsActive    *bool   `json:"isActive"`
}

type ServicePatch struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Description *string `json:"description"`
	Price       *int64  `json:"price" validate:"omitempty,gte=0"`
	Duration    *int    `json:"duration" validate:"omitempty,gt=0"`
	ImageURL    *string `json:"imageUrl"`
	Category    *string `json:"category"`
	IsActive    *bool   `json:"isActive"`
}

type CreateProductInput struct {
	GarageID    int64   `json:"garageId" validate:"required,gt=0"`
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Price       int64   `json:"price" validate:"gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	ImageURL    *string `json:"imageUrl"`
	Category    string  `json:"category" validate:"required"`
	IsActive    *bool   `json:"isActive"`
}

type ProductPatch struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Description *string `json:"description"`
	Price       *int64  `json:"price" validate:"omitempty,gte=0"`
	Stock       *int    `json:"stock" validate:"omitempty,gte=0"`
	ImageURL    *string `json:"imageUrl"`
	Category    *string `json:"category"`
	IsActive    *bool   `json:"isActive"`
}

type CreateDriverInput struct {
	Name         string  `json:"name" validate:"required"`
	Email        string  `json:"email" validate:"required,email"`
	Phone        string  `json:"phone" validate:"required"`
	Password     string  `json:"password" validate:"required,min=6"`
	Address      *string `json:"address"`
	Zip          *string `json:"zip"`
	VehicleMake  string  `json:"vehicleMake" validate:"required"`
	VehicleModel string  `json:"vehicleModel" validate:"required"`
	VehicleYear  string  `json:"vehicleYear" validate:"required"`
	Avatar       *string `json:"avatar"`
}

type DriverPatch struct {
	Name         *string `json:"name" validate:"omitempty,min=1"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Phone        *string `json:"phone"`
	Password     *string `json:"password" validate:"omitempty,min=6"`
	Address      *string `json:"address"`
	Zip          *string `json:"zip"`
	VehicleMake  *string `json:"vehicleMake"`
	VehicleModel *string `json:"vehicleModel"`
	VehicleYear  *string `json:"vehicleYear"`
	Avatar       *string `json:"avatar"`
}

type CreateBookingInput struct {
	BookingNumber  string                `json:"bookingNumber"`
	GarageID       int64                 `json:"garageId" validate:"required,gt=0"`
	DriverID       int64                 `json:"driverId" validate:"required,gt=0"`
	Date           time.Time             `json:"date" validate:"required"`
	Status         model.BookingStatus   `json:"status" validate:"omitempty,oneof=New Confirmed InProgress Completed Cancelled NoShow"`
	TotalPrice     int64                 `json:"totalPrice" validate:"gte=0"`
	Notes          *string               `json:"notes"`
	ServicesBooked []model.BookedService `json:"servicesBooked" validate:"dive"`
	ProductsBooked []model.BookedProduct `json:"productsBooked" validate:"dive"`
}

type BookingPatch struct {
	Date           *time.Time             `json:"date"`
	TotalPrice     *int64                 `json:"totalPrice" validate:"omitempty,gte=0"`
	Notes          *string                `json:"notes"`
	ServicesBooked *[]model.BookedService `json:"servicesBooked"`
	ProductsBooked *[]model.BookedProduct `json:"productsBooked"`
}
