package types

import "time"

// ------------------------------
// Core Domain Entities
// ------------------------------

// MemoryItem represents a memory as stored by the backend. The client holds
// a read-mostly cached copy; fields are only mutated through the view
// synchronizer.
type MemoryItem struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Content      string         `json:"content"`
	Tags         []string       `json:"tags,omitempty"`
	CollectionID string         `json:"collectionId,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// Collection represents a named group of memories.
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

// Clone returns a deep copy of the item so snapshot readers never alias the
// synchronizer's cached slices and maps.
func (m MemoryItem) Clone() MemoryItem {
	out := m
	if m.Tags != nil {
		out.Tags = append([]string(nil), m.Tags...)
	}
	if m.Metadata != nil {
		out.Metadata = make(map[string]any, len(m.Metadata))
		for k, v := range m.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// Equal reports whether two items carry identical field values. Event
// application relies on this to stay idempotent: re-applying an identical
// update is a no-op.
func (m MemoryItem) Equal(o MemoryItem) bool {
	if m.ID != o.ID || m.Title != o.Title || m.Content != o.Content ||
		m.CollectionID != o.CollectionID ||
		!m.CreatedAt.Equal(o.CreatedAt) || !m.UpdatedAt.Equal(o.UpdatedAt) {
		return false
	}
	if len(m.Tags) != len(o.Tags) {
		return false
	}
	for i := range m.Tags {
		if m.Tags[i] != o.Tags[i] {
			return false
		}
	}
	if len(m.Metadata) != len(o.Metadata) {
		return false
	}
	for k, v := range m.Metadata {
		if ov, ok := o.Metadata[k]; !ok || ov != v {
			return false
		}
	}
	return true
}
