package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"garage-dashboard/internal/domain/event"
	"garage-dashboard/internal/infrastructure/hub"
)

type eventRow struct {
	At      time.Time
	Channel string
	Type    string
	Subject string
}

// describe summarizes one envelope for the event table. Payloads that do
// not decode still get a row with whatever type they carry.
func describe(env *hub.Envelope) eventRow {
	row := eventRow{At: env.Timestamp, Channel: env.Channel, Type: "-"}
	if row.At.IsZero() {
		row.At = time.Now()
	}

	ev, err := event.Decode(env.Data)
	if err != nil {
		var head struct {
			Type string `json:"type"`
		}
		if json.Unmarshal(env.Data, &head) == nil && head.Type != "" {
			row.Type = head.Type
		}
		return row
	}
	row.Type = string(ev.EventType())

	switch e := ev.(type) {
	case event.BookingEvent:
		row.Subject = fmt.Sprintf("%s  %s  %s", e.Booking.BookingNumber, e.Booking.Status, money(e.Booking.TotalPrice))
	case event.GarageEvent:
		row.Subject = fmt.Sprintf("%s  %s", e.Garage.Name, e.Garage.Status)
	case event.ServiceEvent:
		row.Subject = fmt.Sprintf("%s  %s", e.Service.Name, money(e.Service.Price))
	case event.ProductEvent:
		row.Subject = fmt.Sprintf("%s  %s", e.Product.Name, money(e.Product.Price))
	}
	return row
}

func (r eventRow) cells() []string {
	return []string{r.At.Local().Format("15:04:05"), r.Channel, r.Type, r.Subject}
}

func channelColor(channel string) tcell.Color {
	switch channel {
	case event.ChannelBookings:
		return tcell.ColorGreen
	case event.ChannelGarages:
		return tcell.ColorYellow
	case event.ChannelServices:
		return tcell.ColorAqua
	case event.ChannelProducts:
		return tcell.ColorFuchsia
	default:
		return tcell.ColorWhite
	}
}

// parseChannels splits a comma list, dropping blanks and repeats.
func parseChannels(raw string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, ch := range strings.Split(raw, ",") {
		ch = strings.TrimSpace(ch)
		if ch == "" || seen[ch] {
			continue
		}
		seen[ch] = true
		out = append(out, ch)
	}
	return out
}
