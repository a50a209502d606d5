// Package bulk drives a confirmed bulk operation (delete, tag, move,
// export) against the remote collection and reports one aggregate result.
package bulk

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/knowledge-rag/knowledge-rag-go/client/internal/types"
)

// Remote is the REST surface the executor mutates through.
type Remote interface {
	GetMemory(ctx context.Context, id string) (*types.MemoryItem, error)
	UpdateMemory(ctx context.Context, id string, req types.UpdateMemoryRequest) (*types.MemoryItem, error)
	BatchDeleteMemories(ctx context.Context, ids []string) (*types.BatchDeleteResponse, error)
}

// Cache provides read-only access to locally cached items, so exports and
// tag unions can avoid server round trips.
type Cache interface {
	Get(id string) (types.MemoryItem, bool)
}

// Reconciler receives the executor's confirmed mutations so the view
// synchronizer can apply them once and suppress the server echo. The
// executor never mutates cached data itself.
type Reconciler interface {
	ApplyLocalDelete(id string)
	ApplyLocalUpdate(item types.MemoryItem)
}

// Selection is the coordinator surface cleared after every completed
// operation.
type Selection interface {
	Clear()
}

// Notifier surfaces the single summary notification per operation.
type Notifier interface {
	Notify(message string)
}

// DownloadSink receives export files. The browser equivalent is a triggered
// download; the default SDK sink writes to a directory.
type DownloadSink interface {
	Save(d types.Download) error
}

// Config wires the executor's collaborators. Remote is required; the rest
// may be nil and default to no-ops.
type Config struct {
	Remote    Remote
	Cache     Cache
	Reconcile Reconciler
	Selection Selection
	Notifier  Notifier
	Downloads DownloadSink
	Logger    zerolog.Logger
}

// Executor runs at most one bulk operation at a time. Per-target calls fan
// out in parallel; the aggregate result is reported only after every call
// has resolved.
type Executor struct {
	cfg Config

	busy int32 // 0 idle, 1 operation in flight

	mu              sync.Mutex
	inflightDeletes map[string]struct{}

	idle     chan struct{} // closed while idle, replaced when busy
	idleOnce sync.Mutex

	now func() time.Time
}

// NewExecutor constructs an idle executor.
func NewExecutor(cfg Config) *Executor {
	if cfg.Remote == nil {
		panic("bulk: Config.Remote is required")
	}
	idle := make(chan struct{})
	close(idle)
	return &Executor{
		cfg:             cfg,
		inflightDeletes: make(map[string]struct{}),
		idle:            idle,
		now:             time.Now,
	}
}

// IsBusy reports whether an operation is in flight. UIs disable the bulk
// toolbar while true.
func (e *Executor) IsBusy() bool { return atomic.LoadInt32(&e.busy) == 1 }

// AwaitIdle blocks until no operation is in flight or ctx is done.
func (e *Executor) AwaitIdle(ctx context.Context) error {
	e.idleOnce.Lock()
	ch := e.idle
	e.idleOnce.Unlock()
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Execute validates and runs one bulk operation. It returns
// ErrInvalidRequest before any network call for a bad request, and
// ErrOperationInProgress when another operation holds the executor.
// Partial per-id failures are reported in the result, not as an error.
func (e *Executor) Execute(ctx context.Context, req types.BulkRequest) (*types.BulkResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	if !atomic.CompareAndSwapInt32(&e.busy, 0, 1) {
		return nil, types.ErrOperationInProgress
	}
	e.idleOnce.Lock()
	e.idle = make(chan struct{})
	idle := e.idle
	e.idleOnce.Unlock()
	defer func() {
		atomic.StoreInt32(&e.busy, 0)
		close(idle)
	}()

	start := e.now()
	res := &types.BulkResult{Kind: req.Kind, Failed: make(map[string]string)}

	switch req.Kind {
	case types.BulkDelete:
		e.runDelete(ctx, req, res)
	case types.BulkTag:
		e.runTag(ctx, req, res)
	case types.BulkMove:
		e.runMove(ctx, req, res)
	case types.BulkExport:
		e.runExport(ctx, req, res)
	}

	res.Notification = fmt.Sprintf("%s: %d succeeded, %d failed",
		summaryCopy(req.Kind), len(res.Succeeded), len(res.Failed))
	if e.cfg.Selection != nil {
		e.cfg.Selection.Clear()
	}
	if e.cfg.Notifier != nil {
		e.cfg.Notifier.Notify(res.Notification)
	}

	outcome := "ok"
	if !res.Ok() {
		outcome = "partial"
	}
	operationsTotal.WithLabelValues(string(req.Kind), outcome).Inc()
	operationDuration.WithLabelValues(string(req.Kind)).Observe(e.now().Sub(start).Seconds())
	return res, nil
}

func validate(req types.BulkRequest) error {
	if len(req.TargetIDs) == 0 {
		return fmt.Errorf("%w: empty target set", types.ErrInvalidRequest)
	}
	switch req.Kind {
	case types.BulkDelete:
	case types.BulkTag:
		if len(ParseTags(req.TagInput)) == 0 {
			return fmt.Errorf("%w: no tags in input %q", types.ErrInvalidRequest, req.TagInput)
		}
	case types.BulkMove:
		if req.CollectionID == "" {
			return fmt.Errorf("%w: destination collection required", types.ErrInvalidRequest)
		}
	case types.BulkExport:
		if len(req.Formats) == 0 {
			return fmt.Errorf("%w: no export formats", types.ErrInvalidRequest)
		}
	default:
		return fmt.Errorf("%w: unknown operation %q", types.ErrInvalidRequest, req.Kind)
	}
	return nil
}

func summaryCopy(kind types.BulkOperationKind) string {
	switch kind {
	case types.BulkDelete:
		return "Items deleted"
	case types.BulkTag:
		return "Tags added"
	case types.BulkMove:
		return "Items moved"
	case types.BulkExport:
		return "Export started"
	default:
		return "Operation finished"
	}
}

// runDelete dispatches one batch-delete for the targets not already in
// flight. An id with a pending delete is coalesced: it is not re-sent and
// the pending operation reports it.
func (e *Executor) runDelete(ctx context.Context, req types.BulkRequest, res *types.BulkResult) {
	e.mu.Lock()
	ids := make([]string, 0, len(req.TargetIDs))
	for _, id := range req.TargetIDs {
		if _, pending := e.inflightDeletes[id]; pending {
			e.cfg.Logger.Debug().Str("id", id).Msg("delete coalesced with pending delete")
			continue
		}
		e.inflightDeletes[id] = struct{}{}
		ids = append(ids, id)
	}
	e.mu.Unlock()
	if len(ids) == 0 {
		return
	}
	defer func() {
		e.mu.Lock()
		for _, id := range ids {
			delete(e.inflightDeletes, id)
		}
		e.mu.Unlock()
	}()

	resp, err := e.cfg.Remote.BatchDeleteMemories(ctx, ids)
	if err != nil {
		for _, id := range ids {
			res.Failed[id] = err.Error()
		}
		return
	}
	for _, id := range resp.Deleted {
		res.Succeeded = append(res.Succeeded, id)
		if e.cfg.Reconcile != nil {
			e.cfg.Reconcile.ApplyLocalDelete(id)
		}
	}
	for _, f := range resp.Failed {
		res.Failed[f.ID] = f.Reason
	}
	sort.Strings(res.Succeeded)
}

// runTag applies the union of existing and parsed tags to every target.
func (e *Executor) runTag(ctx context.Context, req types.BulkRequest, res *types.BulkResult) {
	added := ParseTags(req.TagInput)
	e.fanOut(ctx, req.TargetIDs, res, func(ctx context.Context, id string) error {
		existing, err := e.existingTags(ctx, id)
		if err != nil {
			return err
		}
		item, err := e.cfg.Remote.UpdateMemory(ctx, id, types.UpdateMemoryRequest{
			Tags: unionTags(existing, added),
		})
		if err != nil {
			return err
		}
		if e.cfg.Reconcile != nil {
			e.cfg.Reconcile.ApplyLocalUpdate(*item)
		}
		return nil
	})
}

// runMove reassigns every target to the destination collection. Targets
// without a prior collection are simply assigned one.
func (e *Executor) runMove(ctx context.Context, req types.BulkRequest, res *types.BulkResult) {
	dest := req.CollectionID
	e.fanOut(ctx, req.TargetIDs, res, func(ctx context.Context, id string) error {
		item, err := e.cfg.Remote.UpdateMemory(ctx, id, types.UpdateMemoryRequest{
			CollectionID: &dest,
		})
		if err != nil {
			return err
		}
		if e.cfg.Reconcile != nil {
			e.cfg.Reconcile.ApplyLocalUpdate(*item)
		}
		return nil
	})
}

// runExport serializes the selected items client-side, fetching only the
// ones missing from the cache, and hands one file per format to the sink.
func (e *Executor) runExport(ctx context.Context, req types.BulkRequest, res *types.BulkResult) {
	ids := append([]string(nil), req.TargetIDs...)
	sort.Strings(ids)

	items := make([]types.MemoryItem, 0, len(ids))
	for _, id := range ids {
		if e.cfg.Cache != nil {
			if item, ok := e.cfg.Cache.Get(id); ok {
				items = append(items, item)
				res.Succeeded = append(res.Succeeded, id)
				continue
			}
		}
		item, err := e.cfg.Remote.GetMemory(ctx, id)
		if err != nil {
			res.Failed[id] = err.Error()
			continue
		}
		items = append(items, *item)
		res.Succeeded = append(res.Succeeded, id)
	}

	now := e.now()
	for _, format := range req.Formats {
		data, err := serialize(items, format, req.IncludeMetadata)
		if err != nil {
			e.cfg.Logger.Warn().Err(err).Str("format", string(format)).Msg("export serialization failed")
			continue
		}
		d := types.Download{
			Filename:    exportFilename(now, format),
			ContentType: format.ContentType(),
			Data:        data,
		}
		if e.cfg.Downloads != nil {
			if err := e.cfg.Downloads.Save(d); err != nil {
				e.cfg.Logger.Warn().Err(err).Str("filename", d.Filename).Msg("download sink failed")
			}
		}
		res.Downloads = append(res.Downloads, d)
	}
}

// fanOut issues fn per id in parallel and joins before returning. No
// partial abort: calls already dispatched always run to completion.
func (e *Executor) fanOut(ctx context.Context, ids []string, res *types.BulkResult, fn func(ctx context.Context, id string) error) {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			err := fn(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed[id] = err.Error()
				return
			}
			res.Succeeded = append(res.Succeeded, id)
		}(id)
	}
	wg.Wait()
	sort.Strings(res.Succeeded)
}

// existingTags reads the target's current tags from cache, falling back to
// a fetch so the union is computed against server truth.
func (e *Executor) existingTags(ctx context.Context, id string) ([]string, error) {
	if e.cfg.Cache != nil {
		if item, ok := e.cfg.Cache.Get(id); ok {
			return item.Tags, nil
		}
	}
	item, err := e.cfg.Remote.GetMemory(ctx, id)
	if err != nil {
		return nil, err
	}
	return item.Tags, nil
}
