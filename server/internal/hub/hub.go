// Package hub fans change events out to WebSocket subscribers. A client
// only receives events for rooms it subscribed to; the list room is cheap
// enough that every browsing view holds it.
package hub

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/knowledge-rag/knowledge-rag-go/server/internal/model"
)

type inboundMsg struct {
	Action string `json:"action"` // "subscribe" | "unsubscribe"
	Room   string `json:"room"`
}

// session is one connected client.
type session struct {
	id       string
	clientID string // from the X-Client-ID handshake header
	conn     *websocket.Conn
	send     chan []byte

	mu    sync.Mutex
	rooms map[string]struct{}
}

func (s *session) subscribed(room string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rooms[room]
	return ok
}

// Hub tracks sessions and broadcasts envelopes to room subscribers.
type Hub struct {
	log          zerolog.Logger
	writeTimeout time.Duration
	sendBuf      int
	upgrader     websocket.Upgrader

	mu       sync.RWMutex
	sessions map[string]*session
}

// Config holds hub knobs.
type Config struct {
	Logger         zerolog.Logger
	WriteTimeout   time.Duration
	SendBuffer     int
	AllowAnyOrigin bool
}

// New builds a hub.
func New(cfg Config) *Hub {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 64
	}
	h := &Hub{
		log:          cfg.Logger,
		writeTimeout: cfg.WriteTimeout,
		sendBuf:      cfg.SendBuffer,
		sessions:     make(map[string]*session),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	}
	if cfg.AllowAnyOrigin {
		h.upgrader.CheckOrigin = func(*http.Request) bool { return true }
	}
	return h
}

// HandleWS upgrades the request and services the session until the
// connection dies.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	s := &session{
		id:       uuid.NewString(),
		clientID: r.Header.Get("X-Client-ID"),
		conn:     conn,
		send:     make(chan []byte, h.sendBuf),
		rooms:    make(map[string]struct{}),
	}

	h.mu.Lock()
	h.sessions[s.id] = s
	total := len(h.sessions)
	h.mu.Unlock()
	h.log.Info().Str("session", s.id).Int("total", total).Msg("channel client connected")

	go h.writePump(s)
	h.readPump(s)

	h.mu.Lock()
	if _, ok := h.sessions[s.id]; ok {
		delete(h.sessions, s.id)
		close(s.send)
	}
	total = len(h.sessions)
	h.mu.Unlock()
	h.log.Info().Str("session", s.id).Int("total", total).Msg("channel client disconnected")
}

// readPump consumes subscribe/unsubscribe messages. Running it also lets
// gorilla answer ping control frames, which clients use to measure latency.
func (h *Hub) readPump(s *session) {
	defer func() { _ = s.conn.Close() }()
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg inboundMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			h.log.Warn().Err(err).Str("session", s.id).Msg("dropping malformed channel message")
			continue
		}
		if msg.Room == "" {
			continue
		}
		s.mu.Lock()
		switch msg.Action {
		case "subscribe":
			s.rooms[msg.Room] = struct{}{}
		case "unsubscribe":
			delete(s.rooms, msg.Room)
		}
		s.mu.Unlock()
	}
}

func (h *Hub) writePump(s *session) {
	for data := range s.send {
		_ = s.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			_ = s.conn.Close()
			return
		}
	}
}

// Broadcast delivers ev to every session subscribed to its room. A session
// with a full send buffer is dropped rather than allowed to stall the rest.
func (h *Hub) Broadcast(ev model.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Error().Err(err).Msg("marshal event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, s := range h.sessions {
		if !s.subscribed(ev.Room) {
			continue
		}
		select {
		case s.send <- data:
		default:
			h.log.Warn().Str("session", id).Msg("send buffer full, dropping session")
			delete(h.sessions, id)
			close(s.send)
		}
	}
}

// BroadcastMemoryChange sends the event to both the list room and the
// memory's detail room, so open detail views stay current.
func (h *Hub) BroadcastMemoryChange(ev model.Event) {
	ev.Room = model.RoomMemories
	h.Broadcast(ev)
	if ev.ID != "" {
		ev.Room = model.RoomForMemory(ev.ID)
		h.Broadcast(ev)
	}
}

// SessionCount reports connected sessions, for the health endpoint.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}
