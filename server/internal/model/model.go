// Package model holds the server-side domain entities and the wire shapes
// shared by the REST handlers and the event hub.
package model

import "time"

// Memory is a user-authored note, the primary persisted entity.
type Memory struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Content      string         `json:"content"`
	Tags         []string       `json:"tags,omitempty"`
	CollectionID string         `json:"collectionId,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// Collection groups memories.
type Collection struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Pagination describes a page of a list response.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total"`
}

// CreateMemoryRequest is the POST /v1/memories body.
type CreateMemoryRequest struct {
	Title        string         `json:"title"`
	Content      string         `json:"content"`
	Tags         []string       `json:"tags,omitempty"`
	CollectionID string         `json:"collectionId,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// UpdateMemoryRequest is the PATCH /v1/memories/{id} body; nil fields are
// left untouched.
type UpdateMemoryRequest struct {
	Title        *string  `json:"title,omitempty"`
	Content      *string  `json:"content,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	CollectionID *string  `json:"collectionId,omitempty"`
}

// BatchDeleteRequest / BatchDeleteResponse wrap POST /v1/memories/batch-delete.
type BatchDeleteRequest struct {
	IDs []string `json:"ids"`
}

type FailedID struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

type BatchDeleteResponse struct {
	Deleted []string   `json:"deleted"`
	Failed  []FailedID `json:"failed,omitempty"`
}

// ExportRequest is the POST /api/export/memories body.
type ExportRequest struct {
	Format          string   `json:"format"`
	MemoryIDs       []string `json:"memoryIds"`
	IncludeMetadata bool     `json:"includeMetadata,omitempty"`
	IncludeTags     bool     `json:"includeTags,omitempty"`
	IncludeRelated  bool     `json:"includeRelated,omitempty"`
}

// Stats is the GET /v1/analytics/stats body.
type Stats struct {
	MemoryCount     int `json:"memoryCount"`
	CollectionCount int `json:"collectionCount"`
	TagCount        int `json:"tagCount"`
}

// EventKind mirrors the change-event taxonomy pushed to clients.
type EventKind string

const (
	EventItemCreated EventKind = "created"
	EventItemUpdated EventKind = "updated"
	EventItemDeleted EventKind = "deleted"
	EventSyncStart   EventKind = "sync-start"
	EventSyncEnd     EventKind = "sync-end"
)

// Event is the outbound envelope broadcast to subscribed rooms.
type Event struct {
	EventID string    `json:"eventId,omitempty"`
	Kind    EventKind `json:"kind"`
	Room    string    `json:"room"`
	ID      string    `json:"id,omitempty"`
	Payload any       `json:"payload,omitempty"`
	Origin  string    `json:"origin,omitempty"`
}

// RoomMemories is the list-scope room; RoomForMemory derives detail rooms.
const RoomMemories = "memories"

func RoomForMemory(id string) string { return "memory:" + id }
