// Package channel maintains the persistent duplex connection that delivers
// change events. It reconnects on its own with bounded backoff; transport
// errors never reach feature logic, only the status observable moves.
package channel

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/knowledge-rag/knowledge-rag-go/client/internal/types"
)

// Status is the channel's connection state machine.
type Status int32

const (
	Disconnected Status = iota
	Connecting
	Connected
	Reconnecting
)

func (s Status) String() string {
	switch s {
	case Connecting:
		return "Connecting"
	case Connected:
		return "Connected"
	case Reconnecting:
		return "Reconnecting"
	default:
		return "Disconnected"
	}
}

// Config holds construction knobs. Zero values get working defaults.
type Config struct {
	// URL is the ws:// or wss:// endpoint.
	URL string
	// ClientID tags the connection so mutations this client caused can be
	// recognized in broadcast events.
	ClientID string

	PingInterval   time.Duration // default 10s
	InitialBackoff time.Duration // default 250ms
	MaxBackoff     time.Duration // default 5s, the reconnect-storm cap

	Dialer *websocket.Dialer
	Logger zerolog.Logger
}

// SubscriptionHandle identifies one Subscribe call for Unsubscribe.
type SubscriptionHandle struct {
	id   uint64
	room string
}

// Room returns the room this handle subscribes to.
func (h SubscriptionHandle) Room() string { return h.room }

type outboundMsg struct {
	Action string `json:"action"` // "subscribe" | "unsubscribe"
	Room   string `json:"room"`
}

// Channel is the auto-reconnecting event feed.
type Channel struct {
	cfg Config

	status  int32 // Status
	latency int64 // ms, -1 until the first pong

	mu          sync.Mutex
	conn        *websocket.Conn
	rooms       map[string]int    // room -> refcount
	handles     map[uint64]string // handle id -> room
	nextHandle  uint64
	handlers    map[uint64]func(types.ChannelEvent)
	nextHandler uint64
	cancel      context.CancelFunc
	running     bool

	writeMu sync.Mutex
}

// New constructs a disconnected channel.
func New(cfg Config) *Channel {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 10 * time.Second
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 250 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Second
	}
	if cfg.Dialer == nil {
		cfg.Dialer = websocket.DefaultDialer
	}
	return &Channel{
		cfg:      cfg,
		latency:  -1,
		rooms:    make(map[string]int),
		handles:  make(map[uint64]string),
		handlers: make(map[uint64]func(types.ChannelEvent)),
	}
}

// Connect starts the connection loop. It returns immediately; observe
// Status for progress. Calling Connect on a running channel is a no-op.
func (c *Channel) Connect(ctx context.Context) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	c.setStatus(Connecting)
	go c.run(runCtx)
}

// Disconnect stops the loop, including any pending reconnect wait.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.running = false
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		_ = conn.Close()
	}
	c.setStatus(Disconnected)
	atomic.StoreInt64(&c.latency, -1)
}

// Status returns the current connection state.
func (c *Channel) Status() Status {
	return Status(atomic.LoadInt32(&c.status))
}

// LatencyMs returns the last measured ping round trip in milliseconds, or
// -1 when no pong has arrived yet.
func (c *Channel) LatencyMs() int64 {
	return atomic.LoadInt64(&c.latency)
}

// OnEvent registers handler for every received event regardless of room;
// room filtering is the caller's concern. The returned func unregisters.
func (c *Channel) OnEvent(handler func(types.ChannelEvent)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextHandler++
	id := c.nextHandler
	c.handlers[id] = handler
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.handlers, id)
	}
}

// Subscribe adds a refcounted interest in room. The first subscriber sends
// the upstream subscribe message; later ones are purely local.
func (c *Channel) Subscribe(room string) SubscriptionHandle {
	c.mu.Lock()
	c.rooms[room]++
	first := c.rooms[room] == 1
	c.nextHandle++
	h := SubscriptionHandle{id: c.nextHandle, room: room}
	c.handles[h.id] = room
	conn := c.conn
	c.mu.Unlock()

	if first && conn != nil {
		c.send(conn, outboundMsg{Action: "subscribe", Room: room})
	}
	return h
}

// Unsubscribe releases the handle; at refcount zero the upstream
// unsubscribe message is sent. Double-unsubscribe of a handle is a no-op.
func (c *Channel) Unsubscribe(h SubscriptionHandle) {
	c.mu.Lock()
	room, ok := c.handles[h.id]
	if !ok {
		c.mu.Unlock()
		return
	}
	delete(c.handles, h.id)
	c.rooms[room]--
	last := c.rooms[room] <= 0
	if last {
		delete(c.rooms, room)
	}
	conn := c.conn
	c.mu.Unlock()

	if last && conn != nil {
		c.send(conn, outboundMsg{Action: "unsubscribe", Room: room})
	}
}

// ---- connection loop ----

func (c *Channel) run(ctx context.Context) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.InitialBackoff
	bo.MaxInterval = c.cfg.MaxBackoff
	bo.MaxElapsedTime = 0 // retry until Disconnect
	bo.Reset()

	first := true
	for {
		if ctx.Err() != nil {
			c.setStatus(Disconnected)
			return
		}
		if first {
			c.setStatus(Connecting)
		} else {
			c.setStatus(Reconnecting)
		}

		header := http.Header{}
		if c.cfg.ClientID != "" {
			header.Set("X-Client-ID", c.cfg.ClientID)
		}
		conn, resp, err := c.cfg.Dialer.DialContext(ctx, c.cfg.URL, header)
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		if err != nil {
			first = false
			reconnectsTotal.Inc()
			wait := bo.NextBackOff()
			c.cfg.Logger.Debug().Err(err).Dur("retry_in", wait).Msg("channel dial failed")
			select {
			case <-ctx.Done():
				c.setStatus(Disconnected)
				return
			case <-time.After(wait):
			}
			continue
		}

		bo.Reset()
		c.attach(conn)
		c.setStatus(Connected)

		c.readLoop(ctx, conn)

		c.detach(conn)
		atomic.StoreInt64(&c.latency, -1)
		first = false
		if ctx.Err() != nil {
			c.setStatus(Disconnected)
			return
		}
		c.setStatus(Reconnecting)
	}
}

// attach installs the live conn and replays subscriptions for every room
// that still has subscribers, so a reconnect is invisible to views.
func (c *Channel) attach(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	rooms := make([]string, 0, len(c.rooms))
	for room, refs := range c.rooms {
		if refs > 0 {
			rooms = append(rooms, room)
		}
	}
	c.mu.Unlock()

	conn.SetPongHandler(func(appData string) error {
		if sent, err := strconv.ParseInt(appData, 10, 64); err == nil {
			ms := (time.Now().UnixNano() - sent) / int64(time.Millisecond)
			atomic.StoreInt64(&c.latency, ms)
			latencyGauge.Set(float64(ms))
		}
		return nil
	})

	for _, room := range rooms {
		c.send(conn, outboundMsg{Action: "subscribe", Room: room})
	}
}

func (c *Channel) detach(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	_ = conn.Close()
}

// readLoop consumes frames until the conn dies or ctx is cancelled. A
// malformed event is logged and dropped; it never terminates the loop.
func (c *Channel) readLoop(ctx context.Context, conn *websocket.Conn) {
	pingCtx, stopPing := context.WithCancel(ctx)
	defer stopPing()
	go c.pingLoop(pingCtx, conn)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				c.cfg.Logger.Debug().Err(err).Msg("channel read failed")
			}
			return
		}
		var ev types.ChannelEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			c.cfg.Logger.Warn().Err(err).Msg("dropping unparseable channel message")
			continue
		}
		c.dispatch(ev)
	}
}

func (c *Channel) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			payload := strconv.FormatInt(time.Now().UnixNano(), 10)
			c.writeMu.Lock()
			err := conn.WriteControl(websocket.PingMessage, []byte(payload), time.Now().Add(5*time.Second))
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (c *Channel) dispatch(ev types.ChannelEvent) {
	c.mu.Lock()
	handlers := make([]func(types.ChannelEvent), 0, len(c.handlers))
	for _, h := range c.handlers {
		handlers = append(handlers, h)
	}
	c.mu.Unlock()
	for _, h := range handlers {
		h(ev)
	}
}

func (c *Channel) send(conn *websocket.Conn, msg outboundMsg) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.WriteJSON(msg); err != nil {
		// The read loop will notice the dead conn and reconnect; the
		// subscription replays in attach.
		c.cfg.Logger.Debug().Err(err).Str("action", msg.Action).Str("room", msg.Room).Msg("channel write failed")
	}
}

func (c *Channel) setStatus(s Status) {
	atomic.StoreInt32(&c.status, int32(s))
}
