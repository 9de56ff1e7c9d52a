package hub

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestBroadcast_ChannelIsolation(t *testing.T) {
	hub := startedHub(t)

	a := newMockConnection("a")
	b := newMockConnection("b")
	hub.RegisterConnection(a)
	hub.RegisterConnection(b)
	Subscribe(a, []string{"booking-updates"})
	Subscribe(b, []string{"garage-updates"})

	hub.Broadcast(context.Background(), "booking-updates", map[string]string{"type": "booking-created"})

	if got := len(a.envelopes()); got != 1 {
		t.Errorf("subscriber should receive 1 envelope, got %d", got)
	}
	if got := len(b.envelopes()); got != 0 {
		t.Errorf("non-subscriber should receive nothing, got %d", got)
	}
}

func TestBroadcast_SubscribeReplaces(t *testing.T) {
	hub := startedHub(t)

	conn := newMockConnection("a")
	hub.RegisterConnection(conn)

	hub.HandleInbound(conn, []byte(`{"type":"subscribe","channels":["A","B"]}`))
	hub.HandleInbound(conn, []byte(`{"type":"subscribe","channels":["C"]}`))

	ctx := context.Background()
	hub.Broadcast(ctx, "A", 1)
	hub.Broadcast(ctx, "B", 2)
	hub.Broadcast(ctx, "C", 3)

	envs := conn.envelopes()
	if len(envs) != 1 || envs[0].Channel != "C" {
		t.Fatalf("expected only C, got %v", channels(envs))
	}
}

func TestBroadcast_EmptySubscribeClearsSet(t *testing.T) {
	hub := startedHub(t)

	conn := newMockConnection("a")
	hub.RegisterConnection(conn)
	hub.HandleInbound(conn, []byte(`{"type":"subscribe","channels":["A"]}`))
	hub.HandleInbound(conn, []byte(`{"type":"subscribe","channels":[]}`))

	hub.Broadcast(context.Background(), "A", 1)

	if got := len(conn.envelopes()); got != 0 {
		t.Errorf("expected no envelopes after empty subscribe, got %d", got)
	}
}

func TestBroadcast_FanOutToEverySubscriber(t *testing.T) {
	stamp := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	hub := startedHub(t, WithClock(func() time.Time { return stamp }))

	conns := make([]*mockConnection, 5)
	for i := range conns {
		conns[i] = newMockConnection(string(rune('a' + i)))
		hub.RegisterConnection(conns[i])
		Subscribe(conns[i], []string{"garage-updates"})
	}

	payload := map[string]any{"type": "status-change", "garage": map[string]any{"id": 1, "status": "Busy"}}
	hub.Broadcast(context.Background(), "garage-updates", payload)

	want, _ := json.Marshal(payload)
	for _, c := range conns {
		envs := c.envelopes()
		if len(envs) != 1 {
			t.Fatalf("%s: expected 1 envelope, got %d", c.id, len(envs))
		}
		if string(envs[0].Data) != string(want) {
			t.Errorf("%s: data %s, want %s", c.id, envs[0].Data, want)
		}
		if !envs[0].Timestamp.Equal(stamp) {
			t.Errorf("%s: timestamp %v, want %v", c.id, envs[0].Timestamp, stamp)
		}
	}
}

func TestBroadcast_TimestampNotBeforeInvocation(t *testing.T) {
	hub := startedHub(t)

	conn := newMockConnection("a")
	hub.RegisterConnection(conn)
	Subscribe(conn, []string{"booking-updates"})

	before := time.Now().UTC().Truncate(time.Millisecond)
	hub.Broadcast(context.Background(), "booking-updates", "x")

	envs := conn.envelopes()
	if len(envs) != 1 {
		t.Fatalf("expected 1 envelope, got %d", len(envs))
	}
	if envs[0].Timestamp.Before(before) {
		t.Errorf("timestamp %v is before invocation %v", envs[0].Timestamp, before)
	}
}

func TestBroadcast_SkipsConnectionsNotOpen(t *testing.T) {
	hub := startedHub(t)

	closing := newMockConnection("closing")
	open := newMockConnection("open")
	hub.RegisterConnection(closing)
	hub.RegisterConnection(open)
	Subscribe(closing, []string{"booking-updates"})
	Subscribe(open, []string{"booking-updates"})
	closing.setState(StateClosing)

	hub.Broadcast(context.Background(), "booking-updates", "x")

	if got := len(closing.envelopes()); got != 0 {
		t.Errorf("closing connection received %d envelopes", got)
	}
	if got := len(open.envelopes()); got != 1 {
		t.Errorf("open connection should still receive, got %d", got)
	}
}

func TestBroadcast_SendFailureDoesNotStopFanOut(t *testing.T) {
	hub := startedHub(t)

	broken := newMockConnection("a-broken")
	healthy := newMockConnection("b-healthy")
	hub.RegisterConnection(broken)
	hub.RegisterConnection(healthy)
	Subscribe(broken, []string{"ch"})
	Subscribe(healthy, []string{"ch"})
	broken.failSends(ErrConnectionClosed)

	hub.Broadcast(context.Background(), "ch", "x")

	if got := len(healthy.envelopes()); got != 1 {
		t.Errorf("healthy connection should receive 1 envelope, got %d", got)
	}
}

func TestBroadcast_SlowConsumerIsClosed(t *testing.T) {
	hub := startedHub(t)

	slow := newMockConnection("slow")
	hub.RegisterConnection(slow)
	Subscribe(slow, []string{"ch"})
	slow.failSends(ErrSendBufferFull)

	hub.Broadcast(context.Background(), "ch", "x")

	if slow.State() != StateClosed {
		t.Errorf("slow consumer should be closed, state %s", slow.State())
	}
	if code := slow.closeCode(); code != 1013 {
		t.Errorf("expected close code 1013, got %d", code)
	}
	waitFor(t, func() bool { return hub.ConnectionCount() == 0 })
}

func TestBroadcast_UnencodableDataIsDropped(t *testing.T) {
	hub := startedHub(t)

	conn := newMockConnection("a")
	hub.RegisterConnection(conn)
	Subscribe(conn, []string{"ch"})

	hub.Broadcast(context.Background(), "ch", make(chan int))

	if got := len(conn.envelopes()); got != 0 {
		t.Errorf("expected broadcast to be dropped, got %d envelopes", got)
	}
}

func TestBroadcast_PreservesOrderPerConnection(t *testing.T) {
	hub := startedHub(t)

	conn := newMockConnection("a")
	hub.RegisterConnection(conn)
	Subscribe(conn, []string{"ch"})

	for i := 0; i < 50; i++ {
		hub.Broadcast(context.Background(), "ch", i)
	}

	envs := conn.envelopes()
	if len(envs) != 50 {
		t.Fatalf("expected 50 envelopes, got %d", len(envs))
	}
	for i, env := range envs {
		var n int
		json.Unmarshal(env.Data, &n)
		if n != i {
			t.Fatalf("envelope %d carries %d", i, n)
		}
	}
}

func TestBroadcast_MalformedInboundLeavesConnectionUsable(t *testing.T) {
	hub := startedHub(t)

	conn := newMockConnection("a")
	hub.RegisterConnection(conn)
	hub.HandleInbound(conn, []byte(`{"type":"subscribe","channels":["ch"]}`))

	hub.HandleInbound(conn, []byte(`{not json`))
	hub.HandleInbound(conn, []byte(`{"type":"ping"}`))

	if conn.State() != StateOpen {
		t.Fatalf("connection should stay open, state %s", conn.State())
	}
	hub.Broadcast(context.Background(), "ch", "x")
	if got := len(conn.envelopes()); got != 1 {
		t.Errorf("expected 1 envelope after bad frames, got %d", got)
	}
}

func TestBroadcast_BookingAndGarageScenario(t *testing.T) {
	hub := startedHub(t)

	a := newMockConnection("client-a")
	b := newMockConnection("client-b")
	hub.RegisterConnection(a)
	hub.RegisterConnection(b)
	hub.HandleInbound(a, []byte(`{"type":"subscribe","channels":["booking-updates"]}`))
	hub.HandleInbound(b, []byte(`{"type":"subscribe","channels":["garage-updates"]}`))

	ctx := context.Background()
	hub.Broadcast(ctx, "booking-updates", map[string]any{
		"type":    "booking-status-changed",
		"booking": map[string]any{"id": 3, "status": "Completed"},
	})

	if len(a.envelopes()) != 1 || len(b.envelopes()) != 0 {
		t.Fatalf("after booking change: a=%d b=%d", len(a.envelopes()), len(b.envelopes()))
	}

	hub.Broadcast(ctx, "garage-updates", map[string]any{
		"type":   "status-change",
		"garage": map[string]any{"id": 1, "status": "Busy"},
	})

	if len(a.envelopes()) != 1 || len(b.envelopes()) != 1 {
		t.Fatalf("after garage change: a=%d b=%d", len(a.envelopes()), len(b.envelopes()))
	}
	if b.envelopes()[0].Channel != "garage-updates" {
		t.Errorf("b got channel %s", b.envelopes()[0].Channel)
	}
}

func channels(envs []*Envelope) []string {
	out := make([]string, len(envs))
	for i, e := range envs {
		out[i] = e.Channel
	}
	return out
}
