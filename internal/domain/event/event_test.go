package event

import (
	"encoding/json"
	"errors"
	"testing"

	"garage-dashboard/internal/domain/model"
)

func TestDecode_BookingStatusChanged(t *testing.T) {
	raw := json.RawMessage(`{"type":"booking-status-changed","booking":{"id":3,"status":"Completed"}}`)

	ev, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	be, ok := ev.(BookingEvent)
	if !ok {
		t.Fatalf("expected BookingEvent, got %T", ev)
	}
	if be.Booking.ID != 3 || be.Booking.Status != model.BookingCompleted {
		t.Errorf("unexpected booking: %+v", be.Booking)
	}
	if ev.Channel() != ChannelBookings {
		t.Errorf("channel: got %s, want %s", ev.Channel(), ChannelBookings)
	}
}

func TestDecode_GarageStatusChangeUsesGarageChannel(t *testing.T) {
	data, err := json.Marshal(GarageStatusChanged(model.Garage{ID: 1, Status: model.GarageBusy}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	ev, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if ev.EventType() != TypeGarageStatusChanged {
		t.Errorf("type: got %s", ev.EventType())
	}
	if ev.Channel() != ChannelGarages {
		t.Errorf("channel: got %s", ev.Channel())
	}
}

func TestDecode_UnknownType(t *testing.T) {
	_, err := Decode(json.RawMessage(`{"type":"tyre-rotated"}`))
	if !errors.Is(err, ErrUnknownType) {
		t.Errorf("expected ErrUnknownType, got %v", err)
	}
}

func TestDecode_NotJSON(t *testing.T) {
	if _, err := Decode(json.RawMessage(`not json`)); err == nil {
		t.Error("expected error for non-JSON data")
	}
}

func TestEveryConstructorTargetsItsEntityChannel(t *testing.T) {
	cases := []struct {
		ev      Event
		channel string
	}{
		{BookingCreated(model.Booking{}), ChannelBookings},
		{BookingUpdated(model.Booking{}), ChannelBookings},
		{ServiceCreated(model.Service{}), ChannelServices},
		{ServiceUpdated(model.Service{}), ChannelServices},
		{ServiceDeleted(model.Service{}), ChannelServices},
		{ProductCreated(model.Product{}), ChannelProducts},
		{ProductUpdated(model.Product{}), ChannelProducts},
		{ProductDeleted(model.Product{}), ChannelProducts},
		{GarageUpdated(model.Garage{}), ChannelGarages},
	}
	for _, c := range cases {
		if c.ev.Channel() != c.channel {
			t.Errorf("%s: channel %s, want %s", c.ev.EventType(), c.ev.Channel(), c.channel)
		}
	}
}
