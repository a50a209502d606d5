// Package client is the Go SDK for the knowledge-rag backend: a cached,
// real-time-synchronized view over the memory collection plus bulk
// operations on a selection.
package client

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/knowledge-rag/knowledge-rag-go/client/internal/api"
	"github.com/knowledge-rag/knowledge-rag-go/client/internal/bulk"
	"github.com/knowledge-rag/knowledge-rag-go/client/internal/channel"
	"github.com/knowledge-rag/knowledge-rag-go/client/internal/selection"
	"github.com/knowledge-rag/knowledge-rag-go/client/internal/store"
	"github.com/knowledge-rag/knowledge-rag-go/client/internal/types"
)

// Client wires the REST client, the real-time channel, the view store and
// its synchronizer, the selection coordinator, and the bulk executor.
//
// The view cache has a single writer (the synchronizer); everything else
// reads snapshots or ids. That discipline is what keeps the optimistic bulk
// path and the event-driven path from losing updates to each other.
type Client struct {
	baseURL  string
	clientID string
	log      zerolog.Logger

	// knobs collected by options before construction
	httpTimeout    time.Duration
	retryCount     int
	pingInterval   time.Duration
	initialBackoff time.Duration
	maxBackoff     time.Duration
	notifier       Notifier
	sink           DownloadSink

	rest *api.Client
	ch   *channel.Channel
	vs   *store.ViewStore
	sync *store.Synchronizer
	sel  *selection.Coordinator
	exec *bulk.Executor

	listSub    channel.SubscriptionHandle
	unregister func()
	connected  uint32
	closedOnce uint32
}

// New constructs a Client for the given baseURL (e.g. "http://localhost:8080").
// Additional options can be provided via functional arguments.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		panic("baseURL cannot be empty")
	}

	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		clientID:    uuid.NewString(),
		log:         zerolog.Nop(),
		httpTimeout: 30 * time.Second,
		retryCount:  2,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			panic(err)
		}
	}
	if c.notifier == nil {
		c.notifier = logNotifier{log: c.log}
	}
	if c.sink == nil {
		c.sink = DirSink{Dir: "."}
	}

	c.rest = api.New(api.Config{
		BaseURL:    c.baseURL,
		Timeout:    c.httpTimeout,
		RetryCount: c.retryCount,
		Logger:     c.log,
	})
	c.rest.SetClientID(c.clientID)

	c.vs = store.NewViewStore()
	c.sel = selection.New()
	c.sync = store.NewSynchronizer(c.vs, c.sel, c.log)
	c.ch = channel.New(channel.Config{
		URL:            websocketURL(c.baseURL),
		ClientID:       c.clientID,
		PingInterval:   c.pingInterval,
		InitialBackoff: c.initialBackoff,
		MaxBackoff:     c.maxBackoff,
		Logger:         c.log,
	})
	c.exec = bulk.NewExecutor(bulk.Config{
		Remote:    c.rest,
		Cache:     c.vs,
		Reconcile: c.sync,
		Selection: c.sel,
		Notifier:  c.notifier,
		Downloads: c.sink,
		Logger:    c.log,
	})
	return c
}

// websocketURL maps the REST base URL onto the channel endpoint.
func websocketURL(baseURL string) string {
	ws := baseURL
	switch {
	case strings.HasPrefix(ws, "https://"):
		ws = "wss://" + strings.TrimPrefix(ws, "https://")
	case strings.HasPrefix(ws, "http://"):
		ws = "ws://" + strings.TrimPrefix(ws, "http://")
	}
	return ws + "/v1/ws"
}

// Connect starts the real-time channel, subscribes the list room, and
// routes every received event through the view synchronizer. Reconnection
// is automatic until Close.
func (c *Client) Connect(ctx context.Context) {
	if !atomic.CompareAndSwapUint32(&c.connected, 0, 1) {
		return
	}
	c.unregister = c.ch.OnEvent(c.sync.Apply)
	c.listSub = c.ch.Subscribe(types.RoomMemories)
	c.ch.Connect(ctx)
}

// Close stops the channel and releases the event route. Safe to call
// multiple times.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapUint32(&c.closedOnce, 0, 1) {
		return nil
	}
	if atomic.LoadUint32(&c.connected) == 1 {
		c.ch.Unsubscribe(c.listSub)
		if c.unregister != nil {
			c.unregister()
		}
	}
	c.ch.Disconnect()
	return nil
}

// Login authenticates and installs the bearer token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) error {
	_, err := c.rest.Login(ctx, email, password)
	return err
}

// LoadMemories fetches a page and resets the view cache with it. The
// selection is pruned against the fresh list.
func (c *Client) LoadMemories(ctx context.Context, p ListMemoriesParams) error {
	if atomic.LoadUint32(&c.closedOnce) == 1 {
		return ErrClientClosed
	}
	resp, err := c.rest.ListMemories(ctx, p)
	if err != nil {
		return err
	}
	c.sync.Reset(resp.Memories)
	return nil
}

// Memories returns the visible items under the active filter, newest first.
func (c *Client) Memories() []MemoryItem { return c.vs.Snapshot() }

// Memory returns one cached item by id.
func (c *Client) Memory(id string) (MemoryItem, bool) { return c.vs.Get(id) }

// SetFilter narrows the visible list without refetching.
func (c *Client) SetFilter(f ListFilter) {
	c.vs.SetFilter(f)
	c.sel.Prune(c.vs.VisibleIDs())
}

// Revision increments on every applied mutation; UIs diff it to decide
// when to re-render or show a "new items available" affordance.
func (c *Client) Revision() uint64 { return c.vs.Revision() }

// Syncing reports the advisory server-sync indicator.
func (c *Client) Syncing() bool { return c.vs.Syncing() }

// OpenDetail opens the detail view for id and subscribes its room; the
// returned close func unsubscribes and clears the view.
func (c *Client) OpenDetail(id string) func() {
	c.vs.OpenDetail(id)
	h := c.ch.Subscribe(types.RoomForMemory(id))
	return func() {
		c.ch.Unsubscribe(h)
		c.vs.CloseDetail()
	}
}

// Detail returns the current detail view state. Gone is set when the item
// was deleted remotely while the view was open.
func (c *Client) Detail() DetailView { return c.vs.Detail() }

// Selection returns the selection coordinator for the current list view.
func (c *Client) Selection() *Selection { return c.sel }

// ExecuteBulk runs one bulk operation against the current selection targets.
// Only one operation may be in flight; a second attempt returns
// ErrOperationInProgress.
func (c *Client) ExecuteBulk(ctx context.Context, req BulkRequest) (*BulkResult, error) {
	if atomic.LoadUint32(&c.closedOnce) == 1 {
		return nil, ErrClientClosed
	}
	return c.exec.Execute(ctx, req)
}

// IsBusy reports whether a bulk operation is in flight.
func (c *Client) IsBusy() bool { return c.exec.IsBusy() }

// AwaitIdle blocks until no bulk operation is in flight.
func (c *Client) AwaitIdle(ctx context.Context) error { return c.exec.AwaitIdle(ctx) }

// SubscribeRoom adds a refcounted channel subscription for room.
func (c *Client) SubscribeRoom(room string) SubscriptionHandle { return c.ch.Subscribe(room) }

// UnsubscribeRoom releases a subscription handle.
func (c *Client) UnsubscribeRoom(h SubscriptionHandle) { c.ch.Unsubscribe(h) }

// ChannelStatus returns the channel's connection state.
func (c *Client) ChannelStatus() ChannelStatus { return c.ch.Status() }

// LatencyMs returns the last ping round trip, or -1 when unknown.
func (c *Client) LatencyMs() int64 { return c.ch.LatencyMs() }

// ConnectionIndicator renders the "Live"/"Offline" label shown next to the
// list, including the measured latency when available.
func (c *Client) ConnectionIndicator() string {
	if c.ch.Status() != channel.Connected {
		return "Offline"
	}
	if ms := c.ch.LatencyMs(); ms >= 0 {
		return fmt.Sprintf("Live (%d ms)", ms)
	}
	return "Live"
}

// CreateMemory creates a single memory. Bulk flows never create; this
// serves the demo CLI and tests.
func (c *Client) CreateMemory(ctx context.Context, req CreateMemoryRequest) (*MemoryItem, error) {
	return c.rest.CreateMemory(ctx, req)
}

// Collections lists move destinations.
func (c *Client) Collections(ctx context.Context) ([]Collection, error) {
	return c.rest.ListCollections(ctx)
}

// CreateCollection creates a move destination.
func (c *Client) CreateCollection(ctx context.Context, name string) (*Collection, error) {
	return c.rest.CreateCollection(ctx, name)
}

// Stats fetches aggregate counts.
func (c *Client) Stats(ctx context.Context) (*StatsResponse, error) {
	return c.rest.Stats(ctx)
}

// Export asks the backend for a server-side rendition of the given
// memories. The bulk executor serializes client-side instead; this exists
// for callers that want the backend's bytes.
func (c *Client) Export(ctx context.Context, req ExportRequest) ([]byte, string, error) {
	return c.rest.ExportMemories(ctx, req)
}

// logNotifier is the default Notifier: summaries land in the log.
type logNotifier struct{ log zerolog.Logger }

func (n logNotifier) Notify(message string) {
	n.log.Info().Str("notification", message).Msg("bulk operation finished")
}
