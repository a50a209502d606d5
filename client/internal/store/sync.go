package store

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/knowledge-rag/knowledge-rag-go/client/internal/types"
)

// DefaultDedupTTL bounds how long a locally applied mutation suppresses the
// matching server echo. Long enough to cover a broadcast round trip, short
// enough that a genuine later mutation of the same id is never swallowed.
const DefaultDedupTTL = 5 * time.Second

// Pruner is the selection coordinator surface the synchronizer needs.
type Pruner interface {
	Prune(stillVisibleIDs []string)
}

type dedupKey struct {
	id   string
	kind types.EventKind
}

// Synchronizer is the single writer of the ViewStore. It merges channel
// events and locally confirmed bulk mutations into the cache without
// double-applying either.
type Synchronizer struct {
	store  *ViewStore
	pruner Pruner
	log    zerolog.Logger

	mu       sync.Mutex
	dedup    map[dedupKey]time.Time
	dedupTTL time.Duration
	now      func() time.Time
}

// NewSynchronizer wires the synchronizer to its store and the selection
// coordinator. pruner may be nil when no selection exists (e.g. kragctl).
func NewSynchronizer(s *ViewStore, pruner Pruner, log zerolog.Logger) *Synchronizer {
	return &Synchronizer{
		store:    s,
		pruner:   pruner,
		log:      log,
		dedup:    make(map[dedupKey]time.Time),
		dedupTTL: DefaultDedupTTL,
		now:      time.Now,
	}
}

// Reset replaces the whole cache, e.g. after the initial list fetch or a
// pagination/filter change. The selection is pruned against the new list.
func (y *Synchronizer) Reset(items []types.MemoryItem) {
	y.store.reset(items)
	y.pruneSelection()
}

// Apply merges one channel event into the cache. Events for the same id are
// applied strictly in arrival order; a duplicate delivery is a no-op.
func (y *Synchronizer) Apply(ev types.ChannelEvent) {
	switch ev.Kind {
	case types.EventSyncStart:
		y.store.setSyncing(true)
		return
	case types.EventSyncEnd:
		y.store.setSyncing(false)
		return
	}

	if y.recentlyAppliedLocally(ev.ID, ev.Kind) {
		eventsDeduped.WithLabelValues(string(ev.Kind)).Inc()
		return
	}

	switch ev.Kind {
	case types.EventItemCreated, types.EventItemUpdated:
		item, err := ev.Item()
		if err != nil {
			// One bad payload never takes down the pipeline.
			y.log.Warn().Err(err).Str("room", ev.Room).Str("kind", string(ev.Kind)).Msg("dropping malformed event payload")
			eventsDropped.WithLabelValues(string(ev.Kind)).Inc()
			return
		}
		if y.store.upsert(item) {
			eventsApplied.WithLabelValues(string(ev.Kind)).Inc()
			y.pruneSelection()
		}
	case types.EventItemDeleted:
		if ev.ID == "" {
			y.log.Warn().Str("room", ev.Room).Msg("dropping delete event without id")
			eventsDropped.WithLabelValues(string(ev.Kind)).Inc()
			return
		}
		if y.store.remove(ev.ID) {
			eventsApplied.WithLabelValues(string(ev.Kind)).Inc()
		}
		// Prune even when the item wasn't cached: the id may still sit in
		// the selection from a previous page.
		y.pruneSelection()
	default:
		y.log.Warn().Str("kind", string(ev.Kind)).Msg("dropping event of unknown kind")
		eventsDropped.WithLabelValues(string(ev.Kind)).Inc()
	}
}

// ApplyLocalDelete records a bulk-confirmed delete and removes the item.
// The matching server echo within the dedup window is suppressed.
func (y *Synchronizer) ApplyLocalDelete(id string) {
	y.markLocal(id, types.EventItemDeleted)
	y.store.remove(id)
	y.pruneSelection()
}

// ApplyLocalUpdate records a bulk-confirmed update (tag, move) and patches
// the cache with the server-returned item.
func (y *Synchronizer) ApplyLocalUpdate(item types.MemoryItem) {
	y.markLocal(item.ID, types.EventItemUpdated)
	y.store.upsert(item)
}

func (y *Synchronizer) markLocal(id string, kind types.EventKind) {
	y.mu.Lock()
	defer y.mu.Unlock()
	y.dedup[dedupKey{id: id, kind: kind}] = y.now().Add(y.dedupTTL)
}

// recentlyAppliedLocally consumes a pending tombstone for (id, kind) if one
// exists and has not expired. Consuming (rather than peeking) means only one
// echo is suppressed; later genuine events for the same id flow through.
func (y *Synchronizer) recentlyAppliedLocally(id string, kind types.EventKind) bool {
	if id == "" {
		return false
	}
	y.mu.Lock()
	defer y.mu.Unlock()
	key := dedupKey{id: id, kind: kind}
	deadline, ok := y.dedup[key]
	if !ok {
		return false
	}
	delete(y.dedup, key)
	return y.now().Before(deadline)
}

func (y *Synchronizer) pruneSelection() {
	if y.pruner == nil {
		return
	}
	y.pruner.Prune(y.store.VisibleIDs())
}
