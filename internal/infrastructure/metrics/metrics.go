// Package metrics counts hub activity and renders it in the Prometheus text
// exposition format.
package metrics

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

// ContentType is the Content-Type of WriteText output.
var ContentType = string(expfmt.NewFormat(expfmt.TypeTextPlain))

// Hub implements hub.Recorder.
type Hub struct {
	open       sync.Map // connection type -> *atomic.Int64
	opened     atomic.Int64
	delivered  atomic.Int64
	dropped    atomic.Int64
	decodeErrs atomic.Int64

	mu         sync.Mutex
	broadcasts map[string]int64
}

func NewHub() *Hub {
	return &Hub{broadcasts: make(map[string]int64)}
}

func (m *Hub) gauge(connType string) *atomic.Int64 {
	v, _ := m.open.LoadOrStore(connType, new(atomic.Int64))
	return v.(*atomic.Int64)
}

func (m *Hub) ConnectionOpened(connType string) {
	m.gauge(connType).Add(1)
	m.opened.Add(1)
}

func (m *Hub) ConnectionClosed(connType string) {
	m.gauge(connType).Add(-1)
}

func (m *Hub) Broadcast(channel string, delivered int) {
	m.mu.Lock()
	m.broadcasts[channel]++
	m.mu.Unlock()
	m.delivered.Add(int64(delivered))
}

func (m *Hub) EnvelopeDropped()    { m.dropped.Add(1) }
func (m *Hub) InboundDecodeError() { m.decodeErrs.Add(1) }

func label(name, value string) *dto.LabelPair {
	return &dto.LabelPair{Name: proto.String(name), Value: proto.String(value)}
}

func counter(name, help string, v int64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   proto.String(name),
		Help:   proto.String(help),
		Type:   dto.MetricType_COUNTER.Enum(),
		Metric: []*dto.Metric{{Counter: &dto.Counter{Value: proto.Float64(float64(v))}}},
	}
}

// Families snapshots the counters. Label values are sorted so output is stable.
func (m *Hub) Families() []*dto.MetricFamily {
	conns := &dto.MetricFamily{
		Name: proto.String("garage_ws_connections"),
		Help: proto.String("Subscriber connections currently registered, by transport."),
		Type: dto.MetricType_GAUGE.Enum(),
	}
	var types []string
	m.open.Range(func(k, _ any) bool {
		types = append(types, k.(string))
		return true
	})
	sort.Strings(types)
	for _, t := range types {
		conns.Metric = append(conns.Metric, &dto.Metric{
			Label: []*dto.LabelPair{label("transport", t)},
			Gauge: &dto.Gauge{Value: proto.Float64(float64(m.gauge(t).Load()))},
		})
	}

	broadcasts := &dto.MetricFamily{
		Name: proto.String("garage_broadcasts_total"),
		Help: proto.String("Broadcasts issued, by channel."),
		Type: dto.MetricType_COUNTER.Enum(),
	}
	m.mu.Lock()
	channels := make([]string, 0, len(m.broadcasts))
	for ch := range m.broadcasts {
		channels = append(channels, ch)
	}
	sort.Strings(channels)
	for _, ch := range channels {
		broadcasts.Metric = append(broadcasts.Metric, &dto.Metric{
			Label:   []*dto.LabelPair{label("channel", ch)},
			Counter: &dto.Counter{Value: proto.Float64(float64(m.broadcasts[ch]))},
		})
	}
	m.mu.Unlock()

	families := []*dto.MetricFamily{
		conns,
		counter("garage_ws_connections_total", "Subscriber connections accepted since start.", m.opened.Load()),
		counter("garage_envelopes_delivered_total", "Envelopes enqueued to subscribers.", m.delivered.Load()),
		counter("garage_envelopes_dropped_total", "Envelopes that could not be enqueued.", m.dropped.Load()),
		counter("garage_inbound_decode_errors_total", "Client frames that failed to decode.", m.decodeErrs.Load()),
	}
	if len(broadcasts.Metric) > 0 {
		families = append(families, broadcasts)
	}
	return families
}

// WriteText writes every family in the text exposition format.
func (m *Hub) WriteText(w io.Writer) error {
	for _, mf := range m.Families() {
		if len(mf.Metric) == 0 {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
