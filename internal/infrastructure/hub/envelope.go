package hub

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimestampFormat is ISO-8601 UTC with millisecond precision.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// Envelope is the unit pushed to subscribers of a channel.
type Envelope struct {
	Channel   string
	Data      json.RawMessage
	Timestamp time.Time

	encoded []byte
}

type envelopeWire struct {
	Channel   string          `json:"channel"`
	Data      json.RawMessage `json:"data"`
	Timestamp string          `json:"timestamp"`
}

// NewEnvelope encodes data once so the fan-out writes the same bytes to every
// subscriber.
func NewEnvelope(channel string, data any, now time.Time) (*Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", channel, err)
	}
	env := &Envelope{
		Channel:   channel,
		Data:      raw,
		Timestamp: now.UTC().Truncate(time.Millisecond),
	}
	env.encoded, err = json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode %s envelope: %w", channel, err)
	}
	return env, nil
}

// Bytes returns the JSON encoding of the envelope. Envelopes built by
// NewEnvelope are already encoded and never fail.
func (e *Envelope) Bytes() ([]byte, error) {
	if e.encoded == nil {
		encoded, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("encode %s envelope: %w", e.Channel, err)
		}
		e.encoded = encoded
	}
	return e.encoded, nil
}

func (e *Envelope) MarshalJSON() ([]byte, error) {
	data := e.Data
	if data == nil {
		data = json.RawMessage("null")
	}
	return json.Marshal(envelopeWire{
		Channel:   e.Channel,
		Data:      data,
		Timestamp: e.Timestamp.UTC().Format(TimestampFormat),
	})
}

func (e *Envelope) UnmarshalJSON(b []byte) error {
	var w envelopeWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	e.Channel = w.Channel
	e.Data = w.Data
	e.Timestamp = time.Time{}
	if w.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339Nano, w.Timestamp)
		if err != nil {
			return fmt.Errorf("envelope timestamp: %w", err)
		}
		e.Timestamp = ts
	}
	e.encoded = nil
	return nil
}

// DecodeEnvelope parses one inbound frame on the subscriber side.
func DecodeEnvelope(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return &env, nil
}

const ControlSubscribe = "subscribe"

// ControlMessage is sent by clients to set their subscriptions. A subscribe
// replaces the whole set; to follow another channel a client sends its full
// list again.
type ControlMessage struct {
	Type     string   `json:"type"`
	Channels []string `json:"channels"`
}

// SubscribeMessage builds the control message for the given channels.
func SubscribeMessage(channels ...string) ControlMessage {
	if channels == nil {
		channels = []string{}
	}
	return ControlMessage{Type: ControlSubscribe, Channels: channels}
}

// DecodeControl parses a client frame. A missing or malformed channels field
// yields an empty list rather than an error.
func DecodeControl(raw []byte) (ControlMessage, error) {
	var head struct {
		Type     string          `json:"type"`
		Channels json.RawMessage `json:"channels"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return ControlMessage{}, fmt.Errorf("decode control message: %w", err)
	}

	msg := ControlMessage{Type: head.Type, Channels: []string{}}
	if len(head.Channels) > 0 {
		var channels []string
		if err := json.Unmarshal(head.Channels, &channels); err == nil && channels != nil {
			msg.Channels = channels
		}
	}
	return msg, nil
}
