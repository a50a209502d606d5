package channel

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/knowledge-rag/knowledge-rag-go/client/internal/types"
)

// wsTestServer accepts one websocket session at a time, recording inbound
// subscribe/unsubscribe messages and letting tests push events down.
type wsTestServer struct {
	t        *testing.T
	upgrader websocket.Upgrader

	mu       sync.Mutex
	conn     *websocket.Conn
	inbound  []outboundMsg
	clientID string

	connected chan struct{}
}

func newWSTestServer(t *testing.T) (*wsTestServer, *httptest.Server) {
	s := &wsTestServer{t: t, connected: make(chan struct{}, 8)}
	ts := httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(ts.Close)
	return s, ts
}

func (s *wsTestServer) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.conn = conn
	s.clientID = r.Header.Get("X-Client-ID")
	s.mu.Unlock()
	s.connected <- struct{}{}

	for {
		var msg outboundMsg
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		s.mu.Lock()
		s.inbound = append(s.inbound, msg)
		s.mu.Unlock()
	}
}

func (s *wsTestServer) push(ev types.ChannelEvent) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	data, err := json.Marshal(ev)
	if err != nil {
		s.t.Fatalf("marshal event: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.t.Fatalf("push event: %v", err)
	}
}

func (s *wsTestServer) messages() []outboundMsg {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]outboundMsg(nil), s.inbound...)
}

func (s *wsTestServer) dropConn() {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestConnectDeliversEvents(t *testing.T) {
	srv, ts := newWSTestServer(t)
	ch := New(Config{URL: wsURL(ts), ClientID: "client-7", Logger: zerolog.Nop()})
	t.Cleanup(ch.Disconnect)

	var (
		mu     sync.Mutex
		events []types.ChannelEvent
	)
	unregister := ch.OnEvent(func(ev types.ChannelEvent) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})
	defer unregister()

	ch.Connect(t.Context())
	<-srv.connected
	waitFor(t, "connected status", func() bool { return ch.Status() == Connected })

	if srv.clientID != "client-7" {
		t.Fatalf("X-Client-ID = %q, want client-7", srv.clientID)
	}

	srv.push(types.ChannelEvent{Kind: types.EventItemDeleted, Room: types.RoomMemories, ID: "m1"})
	waitFor(t, "event delivery", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(events) == 1
	})

	mu.Lock()
	got := events[0]
	mu.Unlock()
	if got.Kind != types.EventItemDeleted || got.ID != "m1" {
		t.Fatalf("event = %+v", got)
	}
}

func TestMalformedMessageDoesNotKillLoop(t *testing.T) {
	srv, ts := newWSTestServer(t)
	ch := New(Config{URL: wsURL(ts), Logger: zerolog.Nop()})
	t.Cleanup(ch.Disconnect)

	var delivered int32
	var mu sync.Mutex
	ch.OnEvent(func(types.ChannelEvent) {
		mu.Lock()
		delivered++
		mu.Unlock()
	})

	ch.Connect(t.Context())
	<-srv.connected
	waitFor(t, "connected status", func() bool { return ch.Status() == Connected })

	srv.mu.Lock()
	conn := srv.conn
	srv.mu.Unlock()
	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	srv.push(types.ChannelEvent{Kind: types.EventItemDeleted, Room: types.RoomMemories, ID: "m1"})

	waitFor(t, "event after garbage", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return delivered == 1
	})
}

func TestSubscribeRefcountSingleUpstreamMessage(t *testing.T) {
	srv, ts := newWSTestServer(t)
	ch := New(Config{URL: wsURL(ts), Logger: zerolog.Nop()})
	t.Cleanup(ch.Disconnect)

	ch.Connect(t.Context())
	<-srv.connected
	waitFor(t, "connected status", func() bool { return ch.Status() == Connected })

	h1 := ch.Subscribe("memory:m1")
	h2 := ch.Subscribe("memory:m1")

	waitFor(t, "subscribe message", func() bool { return len(srv.messages()) == 1 })
	if msgs := srv.messages(); msgs[0].Action != "subscribe" || msgs[0].Room != "memory:m1" {
		t.Fatalf("messages = %v", msgs)
	}

	// Releasing one of two handles must not unsubscribe upstream.
	ch.Unsubscribe(h1)
	ch.Unsubscribe(h2)
	waitFor(t, "unsubscribe message", func() bool { return len(srv.messages()) == 2 })
	if msgs := srv.messages(); msgs[1].Action != "unsubscribe" || msgs[1].Room != "memory:m1" {
		t.Fatalf("messages = %v", msgs)
	}

	// Double release of the same handle is a no-op.
	ch.Unsubscribe(h1)
	time.Sleep(50 * time.Millisecond)
	if got := len(srv.messages()); got != 2 {
		t.Fatalf("messages = %d after double unsubscribe, want 2", got)
	}
}

func TestReconnectReplaysSubscriptions(t *testing.T) {
	srv, ts := newWSTestServer(t)
	ch := New(Config{
		URL:            wsURL(ts),
		InitialBackoff: 10 * time.Millisecond,
		MaxBackoff:     50 * time.Millisecond,
		Logger:         zerolog.Nop(),
	})
	t.Cleanup(ch.Disconnect)

	ch.Connect(t.Context())
	<-srv.connected
	waitFor(t, "connected status", func() bool { return ch.Status() == Connected })
	ch.Subscribe("memory:m1")
	waitFor(t, "initial subscribe", func() bool { return len(srv.messages()) == 1 })

	srv.dropConn()
	<-srv.connected
	waitFor(t, "reconnected status", func() bool { return ch.Status() == Connected })

	// The replayed subscription arrives on the new conn without any caller
	// involvement.
	waitFor(t, "replayed subscribe", func() bool { return len(srv.messages()) == 2 })
	if msgs := srv.messages(); msgs[1].Action != "subscribe" || msgs[1].Room != "memory:m1" {
		t.Fatalf("messages = %v", msgs)
	}
}

func TestDisconnectStopsLoop(t *testing.T) {
	srv, ts := newWSTestServer(t)
	ch := New(Config{URL: wsURL(ts), Logger: zerolog.Nop()})

	ch.Connect(t.Context())
	<-srv.connected
	waitFor(t, "connected status", func() bool { return ch.Status() == Connected })

	ch.Disconnect()
	waitFor(t, "disconnected status", func() bool { return ch.Status() == Disconnected })
	if ch.LatencyMs() != -1 {
		t.Fatalf("LatencyMs = %d after disconnect, want -1", ch.LatencyMs())
	}

	// Idempotent.
	ch.Disconnect()
	if ch.Status() != Disconnected {
		t.Fatalf("Status = %v after second Disconnect", ch.Status())
	}
}

func TestPingPongMeasuresLatency(t *testing.T) {
	srv, ts := newWSTestServer(t)
	ch := New(Config{
		URL:          wsURL(ts),
		PingInterval: 20 * time.Millisecond,
		Logger:       zerolog.Nop(),
	})
	t.Cleanup(ch.Disconnect)

	ch.Connect(t.Context())
	<-srv.connected
	waitFor(t, "connected status", func() bool { return ch.Status() == Connected })

	// gorilla's default ping handler echoes a pong carrying our payload, as
	// long as the server keeps reading. The read loop in handle() does.
	waitFor(t, "latency measurement", func() bool { return ch.LatencyMs() >= 0 })
}
