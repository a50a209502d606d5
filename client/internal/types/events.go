package types

import "encoding/json"

// EventKind identifies a change event pushed over the real-time channel.
type EventKind string

const (
	EventItemCreated EventKind = "created"
	EventItemUpdated EventKind = "updated"
	EventItemDeleted EventKind = "deleted"
	EventSyncStart   EventKind = "sync-start"
	EventSyncEnd     EventKind = "sync-end"
)

// ChannelEvent is the inbound envelope on the real-time channel. Delivery is
// at-least-once; consumers must apply events idempotently.
type ChannelEvent struct {
	// EventID is a server-assigned ULID, unique per broadcast.
	EventID string    `json:"eventId,omitempty"`
	Kind    EventKind `json:"kind"`
	// Room scopes the event (e.g. "memories", "memory:<id>").
	Room string `json:"room"`
	// ID is the memory id the event concerns, when applicable.
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	// Origin tags the client instance whose mutation caused the event, so
	// the originator can recognize its own echo.
	Origin string `json:"origin,omitempty"`
}

// Item decodes the payload as a MemoryItem. Only meaningful for created and
// updated events.
func (e ChannelEvent) Item() (MemoryItem, error) {
	var item MemoryItem
	err := json.Unmarshal(e.Payload, &item)
	return item, err
}

// RoomMemories is the list-scope room every browsing view subscribes to.
const RoomMemories = "memories"

// RoomForMemory returns the detail-scope room for one memory id.
func RoomForMemory(id string) string { return "memory:" + id }

// RoomForCollection returns the room scoping one collection's changes.
func RoomForCollection(id string) string { return "collection:" + id }
