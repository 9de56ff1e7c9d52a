// Package event defines the payloads pushed on the well-known update channels.
//
// Every variant carries a "type" discriminator and the new state of one
// entity. Subscribers treat an event as a hint to re-fetch; the REST API stays
// the source of truth.
package event

import (
	"encoding/json"
	"errors"
	"fmt"

	"garage-dashboard/internal/domain/model"
)

// Channel names follow <entity-plural>-updates.
const (
	ChannelBookings  = "booking-updates"
	ChannelGarages   = "garage-updates"
	ChannelServices  = "service-updates"
	ChannelProducts  = "product-updates"
	ChannelDashboard = "dashboard-updates"
)

// KnownChannels lists the channels the dashboard subscribes to.
var KnownChannels = []string{
	ChannelBookings,
	ChannelGarages,
	ChannelServices,
	ChannelProducts,
	ChannelDashboard,
}

type Type string

const (
	TypeBookingCreated       Type = "booking-created"
	TypeBookingUpdated       Type = "booking-updated"
	TypeBookingStatusChanged Type = "booking-status-changed"
	TypeGarageStatusChanged  Type = "status-change"
	TypeGarageUpdated        Type = "garage-updated"
	TypeServiceCreated       Type = "service-created"
	TypeServiceUpdated       Type = "service-updated"
	TypeServiceDeleted       Type = "service-deleted"
	TypeProductCreated       Type = "product-created"
	TypeProductUpdated       Type = "product-updated"
	TypeProductDeleted       Type = "product-deleted"
)

var ErrUnknownType = errors.New("unknown event type")

// Event is implemented by every payload variant.
type Event interface {
	EventType() Type
	Channel() string
}

type BookingEvent struct {
	Type    Type          `json:"type"`
	Booking model.Booking `json:"booking"`
}

func (e BookingEvent) EventType() Type { return e.Type }
func (e BookingEvent) Channel() string { return ChannelBookings }

type GarageEvent struct {
	Type   Type         `json:"type"`
	Garage model.Garage `json:"garage"`
}

func (e GarageEvent) EventType() Type { return e.Type }
func (e GarageEvent) Channel() string { return ChannelGarages }

type ServiceEvent struct {
	Type    Type          `json:"type"`
	Service model.Service `json:"service"`
}

func (e ServiceEvent) EventType() Type { return e.Type }
func (e ServiceEvent) Channel() string { return ChannelServices }

type ProductEvent struct {
	Type    Type          `json:"type"`
	Product model.Product `json:"product"`
}

func (e ProductEvent) EventType() Type { return e.Type }
func (e ProductEvent) Channel() string { return ChannelProducts }

func BookingCreated(b model.Booking) BookingEvent {
	return BookingEvent{Type: TypeBookingCreated, Booking: b}
}

func BookingUpdated(b model.Booking) BookingEvent {
	return BookingEvent{Type: TypeBookingUpdated, Booking: b}
}

func BookingStatusChanged(b model.Booking) BookingEvent {
	return BookingEvent{Type: TypeBookingStatusChanged, Booking: b}
}

func GarageStatusChanged(g model.Garage) GarageEvent {
	return GarageEvent{Type: TypeGarageStatusChanged, Garage: g}
}

func GarageUpdated(g model.Garage) GarageEvent {
	return GarageEvent{Type: TypeGarageUpdated, Garage: g}
}

func ServiceCreated(s model.Service) ServiceEvent {
	return ServiceEvent{Type: TypeServiceCreated, Service: s}
}

func ServiceUpdated(s model.Service) ServiceEvent {
	return ServiceEvent{Type: TypeServiceUpdated, Service: s}
}

func ServiceDeleted(s model.Service) ServiceEvent {
	return ServiceEvent{Type: TypeServiceDeleted, Service: s}
}

func ProductCreated(p model.Product) ProductEvent {
	return ProductEvent{Type: TypeProductCreated, Product: p}
}

func ProductUpdated(p model.Product) ProductEvent {
	return ProductEvent{Type: TypeProductUpdated, Product: p}
}

func ProductDeleted(p model.Product) ProductEvent {
	return ProductEvent{Type: TypeProductDeleted, Product: p}
}

// Decode turns an envelope's data field back into its concrete variant.
func Decode(data json.RawMessage) (Event, error) {
	var head struct {
		Type Type `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode event type: %w", err)
	}

	var ev Event
	var err error
	switch head.Type {
	case TypeBookingCreated, TypeBookingUpdated, TypeBookingStatusChanged:
		var e BookingEvent
		err = json.Unmarshal(data, &e)
		ev = e
	case TypeGarageStatusChanged, TypeGarageUpdated:
		var e GarageEvent
		err = json.Unmarshal(data, &e)
		ev = e
	case TypeServiceCreated, TypeServiceUpdated, TypeServiceDeleted:
		var e ServiceEvent
		err = json.Unmarshal(data, &e)
		ev = e
	case TypeProductCreated, TypeProductUpdated, TypeProductDeleted:
		var e ProductEvent
		err = json.Unmarshal(data, &e)
		ev = e
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, head.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s event: %w", head.Type, err)
	}
	return ev, nil
}
