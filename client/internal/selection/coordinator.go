// Package selection tracks which rendered items are selected. It is a pure
// state machine: it never touches cached item data, only ids.
package selection

import (
	"sort"
	"sync"
)

// Mode is the coordinator's state.
type Mode int

const (
	// Browsing: per-item checkboxes inactive, toggles are no-ops.
	Browsing Mode = iota
	// Selecting: toggles and bulk actions active.
	Selecting
)

func (m Mode) String() string {
	if m == Selecting {
		return "Selecting"
	}
	return "Browsing"
}

// Coordinator owns the selection set for one list view. One Coordinator is
// created per list mount; it must not outlive the view it was created for.
type Coordinator struct {
	mu       sync.Mutex
	mode     Mode
	selected map[string]struct{}
}

// New returns a Coordinator in Browsing mode with nothing selected.
func New() *Coordinator {
	return &Coordinator{selected: make(map[string]struct{})}
}

// EnterSelectionMode transitions Browsing → Selecting. No-op if already
// selecting.
func (c *Coordinator) EnterSelectionMode() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = Selecting
}

// ExitSelectionMode transitions to Browsing and clears the selection.
func (c *Coordinator) ExitSelectionMode() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = Browsing
	c.selected = make(map[string]struct{})
}

// Toggle flips membership of id. Fails silently (no state change) while
// Browsing.
func (c *Coordinator) Toggle(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != Selecting {
		return
	}
	if _, ok := c.selected[id]; ok {
		delete(c.selected, id)
	} else {
		c.selected[id] = struct{}{}
	}
}

// SelectAll replaces the selection with every visible id. Like Toggle it is
// only meaningful in Selecting mode.
func (c *Coordinator) SelectAll(visibleIDs []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != Selecting {
		return
	}
	c.selected = make(map[string]struct{}, len(visibleIDs))
	for _, id := range visibleIDs {
		c.selected[id] = struct{}{}
	}
}

// Clear empties the selection without leaving Selecting mode.
func (c *Coordinator) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = make(map[string]struct{})
}

// Prune intersects the selection with the ids still visible. The view
// synchronizer calls this whenever the rendered list changes (remote delete,
// pagination, filter change) so the selection can never hold stale ids.
// Idempotent: pruning twice with the same visible set changes nothing.
func (c *Coordinator) Prune(stillVisibleIDs []string) {
	visible := make(map[string]struct{}, len(stillVisibleIDs))
	for _, id := range stillVisibleIDs {
		visible[id] = struct{}{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for id := range c.selected {
		if _, ok := visible[id]; !ok {
			delete(c.selected, id)
		}
	}
}

// Mode returns the current mode.
func (c *Coordinator) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// IsSelected reports membership of id.
func (c *Coordinator) IsSelected(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.selected[id]
	return ok
}

// SelectedIDs returns the selection sorted for deterministic iteration.
func (c *Coordinator) SelectedIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.selected))
	for id := range c.selected {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Count returns the selection size.
func (c *Coordinator) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.selected)
}
