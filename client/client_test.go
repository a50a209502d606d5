package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

func TestWebsocketURL(t *testing.T) {
	cases := []struct {
		base string
		want string
	}{
		{"http://localhost:8080", "ws://localhost:8080/v1/ws"},
		{"https://memories.example.com", "wss://memories.example.com/v1/ws"},
	}
	for _, tc := range cases {
		if got := websocketURL(tc.base); got != tc.want {
			t.Fatalf("websocketURL(%q) = %q, want %q", tc.base, got, tc.want)
		}
	}
}

func TestNewPanicsOnEmptyBaseURL(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on empty base URL")
		}
	}()
	New("")
}

func TestConnectionIndicatorOffline(t *testing.T) {
	c := New("http://localhost:9")
	defer func() { _ = c.Close() }()
	if got := c.ConnectionIndicator(); got != "Offline" {
		t.Fatalf("ConnectionIndicator = %q before Connect, want Offline", got)
	}
}

func TestCloseIdempotent(t *testing.T) {
	c := New("http://localhost:9")
	if err := c.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := c.LoadMemories(t.Context(), ListMemoriesParams{}); !IsClientClosed(err) {
		t.Fatalf("LoadMemories after Close = %v, want ErrClientClosed", err)
	}
	if _, err := c.ExecuteBulk(t.Context(), BulkRequest{Kind: BulkDelete, TargetIDs: []string{"m1"}}); !IsClientClosed(err) {
		t.Fatalf("ExecuteBulk after Close = %v, want ErrClientClosed", err)
	}
}

// testBackend is a minimal in-process stand-in for the service: a memory
// list, a batch-delete endpoint, and a broadcast websocket at /v1/ws.
type testBackend struct {
	t *testing.T

	mu    sync.Mutex
	items []MemoryItem
	conns map[*websocket.Conn]struct{}

	upgrader websocket.Upgrader
}

func newTestBackend(t *testing.T, items ...MemoryItem) (*testBackend, *httptest.Server) {
	b := &testBackend{t: t, items: items, conns: make(map[*websocket.Conn]struct{})}
	r := mux.NewRouter()
	r.HandleFunc("/v1/memories", b.list).Methods(http.MethodGet)
	r.HandleFunc("/v1/memories/batch-delete", b.batchDelete).Methods(http.MethodPost)
	r.HandleFunc("/v1/ws", b.ws)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return b, ts
}

func (b *testBackend) list(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_ = json.NewEncoder(w).Encode(map[string]any{
		"memories":   b.items,
		"pagination": Pagination{Page: 1, PageSize: 50, Total: len(b.items)},
	})
}

func (b *testBackend) batchDelete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	b.mu.Lock()
	deleted := make([]string, 0, len(req.IDs))
	for _, id := range req.IDs {
		for i, item := range b.items {
			if item.ID == id {
				b.items = append(b.items[:i], b.items[i+1:]...)
				deleted = append(deleted, id)
				break
			}
		}
	}
	b.mu.Unlock()
	_ = json.NewEncoder(w).Encode(map[string]any{"deleted": deleted})
}

func (b *testBackend) ws(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	b.mu.Lock()
	b.conns[conn] = struct{}{}
	b.mu.Unlock()
	// Keep reading so subscribe messages and ping frames are serviced.
	go func() {
		defer func() {
			b.mu.Lock()
			delete(b.conns, conn)
			b.mu.Unlock()
			_ = conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (b *testBackend) broadcast(ev ChannelEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		b.t.Fatalf("marshal event: %v", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for conn := range b.conns {
		_ = conn.WriteMessage(websocket.TextMessage, data)
	}
}

func (b *testBackend) awaitSession(t *testing.T) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		b.mu.Lock()
		n := len(b.conns)
		b.mu.Unlock()
		if n > 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("no websocket session established")
}

func backendItem(id, title string, tags ...string) MemoryItem {
	now := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	return MemoryItem{ID: id, Title: title, Content: "body", Tags: tags, CreatedAt: now, UpdatedAt: now}
}

func TestLoadAndRemoteDeletePrunesSelection(t *testing.T) {
	backend, ts := newTestBackend(t,
		backendItem("m1", "first"),
		backendItem("m2", "second"),
	)
	c := New(ts.URL)
	defer func() { _ = c.Close() }()

	ctx := t.Context()
	if err := c.LoadMemories(ctx, ListMemoriesParams{}); err != nil {
		t.Fatalf("LoadMemories: %v", err)
	}
	if got := len(c.Memories()); got != 2 {
		t.Fatalf("Memories = %d, want 2", got)
	}

	c.Connect(ctx)
	backend.awaitSession(t)

	sel := c.Selection()
	sel.EnterSelectionMode()
	sel.Toggle("m1")
	sel.Toggle("m2")

	rev := c.Revision()
	backend.broadcast(ChannelEvent{Kind: EventItemDeleted, Room: RoomMemories, ID: "m1"})

	deadline := time.Now().Add(3 * time.Second)
	for c.Revision() == rev {
		if time.Now().After(deadline) {
			t.Fatal("delete event never applied")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if _, ok := c.Memory("m1"); ok {
		t.Fatal("expected m1 removed from cache")
	}
	if sel.IsSelected("m1") {
		t.Fatal("expected m1 pruned from selection")
	}
	if !sel.IsSelected("m2") {
		t.Fatal("expected m2 still selected")
	}
}

func TestBulkDeleteEndToEnd(t *testing.T) {
	backend, ts := newTestBackend(t,
		backendItem("m1", "first"),
		backendItem("m2", "second"),
		backendItem("m3", "third"),
	)
	var notified []string
	c := New(ts.URL, WithNotifier(notifierFunc(func(msg string) { notified = append(notified, msg) })))
	defer func() { _ = c.Close() }()

	ctx := t.Context()
	if err := c.LoadMemories(ctx, ListMemoriesParams{}); err != nil {
		t.Fatalf("LoadMemories: %v", err)
	}
	sel := c.Selection()
	sel.EnterSelectionMode()
	sel.Toggle("m1")
	sel.Toggle("m3")

	res, err := c.ExecuteBulk(ctx, BulkRequest{Kind: BulkDelete, TargetIDs: sel.SelectedIDs()})
	if err != nil {
		t.Fatalf("ExecuteBulk: %v", err)
	}
	if !res.Ok() {
		t.Fatalf("Failed = %v", res.Failed)
	}
	if res.Notification != "Items deleted: 2 succeeded, 0 failed" {
		t.Fatalf("Notification = %q", res.Notification)
	}
	if sel.Count() != 0 {
		t.Fatal("expected selection cleared after bulk operation")
	}
	if got := len(c.Memories()); got != 1 {
		t.Fatalf("Memories = %d after delete, want 1", got)
	}
	if len(notified) != 1 || notified[0] != res.Notification {
		t.Fatalf("notifications = %v", notified)
	}

	backend.mu.Lock()
	remaining := len(backend.items)
	backend.mu.Unlock()
	if remaining != 1 {
		t.Fatalf("backend has %d items, want 1", remaining)
	}
}

func TestSetFilterPrunesSelection(t *testing.T) {
	_, ts := newTestBackend(t,
		backendItem("m1", "a", "work"),
		backendItem("m2", "b", "home"),
	)
	c := New(ts.URL)
	defer func() { _ = c.Close() }()

	if err := c.LoadMemories(t.Context(), ListMemoriesParams{}); err != nil {
		t.Fatalf("LoadMemories: %v", err)
	}
	sel := c.Selection()
	sel.EnterSelectionMode()
	sel.Toggle("m1")
	sel.Toggle("m2")

	c.SetFilter(ListFilter{Tag: "work"})
	if got := len(c.Memories()); got != 1 {
		t.Fatalf("Memories = %d under filter, want 1", got)
	}
	if sel.IsSelected("m2") {
		t.Fatal("expected filtered-out m2 pruned from selection")
	}
}

func TestConnectionIndicatorLive(t *testing.T) {
	backend, ts := newTestBackend(t)
	c := New(ts.URL, WithPingInterval(20*time.Millisecond))
	defer func() { _ = c.Close() }()

	c.Connect(t.Context())
	backend.awaitSession(t)

	deadline := time.Now().Add(3 * time.Second)
	for c.LatencyMs() < 0 {
		if time.Now().After(deadline) {
			t.Fatal("no latency measurement arrived")
		}
		time.Sleep(5 * time.Millisecond)
	}

	got := c.ConnectionIndicator()
	if !strings.HasPrefix(got, "Live (") || !strings.HasSuffix(got, " ms)") {
		t.Fatalf("ConnectionIndicator = %q, want Live with a latency value", got)
	}
}

// notifierFunc adapts a func to the Notifier interface.
type notifierFunc func(string)

func (f notifierFunc) Notify(message string) { f(message) }
