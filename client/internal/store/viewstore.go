// Package store materializes the list/detail views from server state. The
// ViewStore is single-writer: only the Synchronizer in this package mutates
// it; every other component reads snapshots or bare ids.
package store

import (
	"sort"
	"sync"

	"github.com/knowledge-rag/knowledge-rag-go/client/internal/types"
)

// ListFilter narrows the visible list. Filters are applied at snapshot time,
// so events always land in the cache and visibility is recomputed per read.
type ListFilter struct {
	CollectionID string
	Tag          string
}

func (f ListFilter) matches(item types.MemoryItem) bool {
	if f.CollectionID != "" && item.CollectionID != f.CollectionID {
		return false
	}
	if f.Tag != "" {
		found := false
		for _, t := range item.Tags {
			if t == f.Tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// DetailView is the state of the currently open detail page, if any.
type DetailView struct {
	Open bool
	ID   string
	// Gone is set when the item was deleted remotely while open; the view
	// shows "no longer exists" instead of erroring.
	Gone bool
	Item types.MemoryItem
}

// ViewStore caches memory items plus the view state derived from them.
type ViewStore struct {
	mu       sync.RWMutex
	items    map[string]types.MemoryItem
	filter   ListFilter
	detail   DetailView
	syncing  bool
	revision uint64

	onChange []func()
}

// NewViewStore returns an empty store.
func NewViewStore() *ViewStore {
	return &ViewStore{items: make(map[string]types.MemoryItem)}
}

// OnChange registers fn to run after every mutation. Handlers run on the
// synchronizer's goroutine and must be quick.
func (s *ViewStore) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = append(s.onChange, fn)
	s.mu.Unlock()
}

// SetFilter replaces the active list filter.
func (s *ViewStore) SetFilter(f ListFilter) {
	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()
	s.notify()
}

// Snapshot returns the visible items under the active filter, newest update
// first, as deep copies.
func (s *ViewStore) Snapshot() []types.MemoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.MemoryItem, 0, len(s.items))
	for _, item := range s.items {
		if s.filter.matches(item) {
			out = append(out, item.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// VisibleIDs returns the ids of items visible under the active filter.
func (s *ViewStore) VisibleIDs() []string {
	items := s.Snapshot()
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

// Get returns a copy of one cached item regardless of filter.
func (s *ViewStore) Get(id string) (types.MemoryItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return types.MemoryItem{}, false
	}
	return item.Clone(), true
}

// Len returns the number of cached items, filtered or not.
func (s *ViewStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Revision increments on every applied mutation; UIs can diff against it to
// show a "new items available" affordance instead of re-rendering.
func (s *ViewStore) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Syncing reports the advisory server-sync indicator.
func (s *ViewStore) Syncing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.syncing
}

// OpenDetail marks id as the open detail view.
func (s *ViewStore) OpenDetail(id string) {
	s.mu.Lock()
	item, ok := s.items[id]
	s.detail = DetailView{Open: true, ID: id, Gone: !ok, Item: item.Clone()}
	s.mu.Unlock()
	s.notify()
}

// CloseDetail clears the detail view.
func (s *ViewStore) CloseDetail() {
	s.mu.Lock()
	s.detail = DetailView{}
	s.mu.Unlock()
	s.notify()
}

// Detail returns the current detail view state.
func (s *ViewStore) Detail() DetailView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d := s.detail
	d.Item = d.Item.Clone()
	return d
}

func (s *ViewStore) notify() {
	s.mu.RLock()
	handlers := append([]func(){}, s.onChange...)
	s.mu.RUnlock()
	for _, fn := range handlers {
		fn()
	}
}

// ---- mutators, reserved for the Synchronizer ----

func (s *ViewStore) reset(items []types.MemoryItem) {
	s.mu.Lock()
	s.items = make(map[string]types.MemoryItem, len(items))
	for _, item := range items {
		s.items[item.ID] = item.Clone()
	}
	if s.detail.Open {
		item, ok := s.items[s.detail.ID]
		s.detail.Gone = !ok
		s.detail.Item = item.Clone()
	}
	s.revision++
	s.mu.Unlock()
	s.notify()
}

// upsert stores item and returns false when the cached copy was already
// identical (idempotent re-apply).
func (s *ViewStore) upsert(item types.MemoryItem) bool {
	s.mu.Lock()
	if existing, ok := s.items[item.ID]; ok && existing.Equal(item) {
		s.mu.Unlock()
		return false
	}
	s.items[item.ID] = item.Clone()
	if s.detail.Open && s.detail.ID == item.ID {
		s.detail.Gone = false
		s.detail.Item = item.Clone()
	}
	s.revision++
	s.mu.Unlock()
	s.notify()
	return true
}

// remove drops id and returns false when it was not cached.
func (s *ViewStore) remove(id string) bool {
	s.mu.Lock()
	if _, ok := s.items[id]; !ok {
		s.mu.Unlock()
		return false
	}
	delete(s.items, id)
	if s.detail.Open && s.detail.ID == id {
		s.detail.Gone = true
	}
	s.revision++
	s.mu.Unlock()
	s.notify()
	return true
}

func (s *ViewStore) setSyncing(v bool) {
	s.mu.Lock()
	changed := s.syncing != v
	s.syncing = v
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}
