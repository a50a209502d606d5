// Package storage persists memories and collections in SQLite.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/knowledge-rag/knowledge-rag-go/server/internal/model"
)

// ErrNotFound is returned when an id does not exist.
var ErrNotFound = sql.ErrNoRows

// Store is the SQLite-backed persistence layer.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and runs migrations.
// Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// NewMemoryID mints a ULID; lexical order tracks creation time.
// Safe for concurrent use; ulid.Make locks its entropy source.
func (s *Store) NewMemoryID() string {
	return ulid.Make().String()
}

// NewEventID mints a ULID for a broadcast envelope.
func (s *Store) NewEventID() string { return s.NewMemoryID() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS memories (
		id            TEXT PRIMARY KEY,
		title         TEXT NOT NULL,
		content       TEXT NOT NULL,
		tags          TEXT NOT NULL DEFAULT '[]',
		collection_id TEXT,
		metadata      TEXT NOT NULL DEFAULT '{}',
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_memories_collection ON memories(collection_id);
	CREATE INDEX IF NOT EXISTS idx_memories_updated ON memories(updated_at DESC);

	CREATE TABLE IF NOT EXISTS collections (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL UNIQUE,
		created_at TEXT NOT NULL
	);`
	_, err := s.db.Exec(schema)
	return err
}

// ListParams narrows a List call. Zero values mean "unfiltered".
type ListParams struct {
	Page         int
	PageSize     int
	CollectionID string
	Tag          string
}

// List returns one page of memories, newest update first, plus the total
// count under the same filter.
func (s *Store) List(ctx context.Context, p ListParams) ([]model.Memory, int, error) {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = 50
	}

	where := "WHERE 1=1"
	args := []any{}
	if p.CollectionID != "" {
		where += " AND collection_id = ?"
		args = append(args, p.CollectionID)
	}

	query := "SELECT id, title, content, tags, collection_id, metadata, created_at, updated_at FROM memories " +
		where + " ORDER BY updated_at DESC, id"
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	// Tag filtering happens here rather than in SQL; tags are a JSON array
	// column and the demo store keeps the query surface plain.
	var all []model.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, 0, err
		}
		if p.Tag != "" && !hasTag(m.Tags, p.Tag) {
			continue
		}
		all = append(all, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	total := len(all)
	start := (p.Page - 1) * p.PageSize
	if start >= total {
		return []model.Memory{}, total, nil
	}
	end := start + p.PageSize
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

// Get returns one memory by id or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*model.Memory, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, title, content, tags, collection_id, metadata, created_at, updated_at FROM memories WHERE id = ?", id)
	m, err := scanMemory(row)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a new memory and returns it with server-assigned fields.
func (s *Store) Create(ctx context.Context, req model.CreateMemoryRequest) (*model.Memory, error) {
	now := time.Now().UTC()
	m := model.Memory{
		ID:           s.NewMemoryID(),
		Title:        req.Title,
		Content:      req.Content,
		Tags:         req.Tags,
		CollectionID: req.CollectionID,
		Metadata:     req.Metadata,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	tags, meta, err := encodeJSONCols(m.Tags, m.Metadata)
	if err != nil {
		return nil, err
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO memories (id, title, content, tags, collection_id, metadata, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		m.ID, m.Title, m.Content, tags, nullable(m.CollectionID), meta,
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano))
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Update applies a partial update and returns the updated memory.
func (s *Store) Update(ctx context.Context, id string, req model.UpdateMemoryRequest) (*model.Memory, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		m.Title = *req.Title
	}
	if req.Content != nil {
		m.Content = *req.Content
	}
	if req.Tags != nil {
		m.Tags = req.Tags
	}
	if req.CollectionID != nil {
		m.CollectionID = *req.CollectionID
	}
	m.UpdatedAt = time.Now().UTC()

	tags, meta, err := encodeJSONCols(m.Tags, m.Metadata)
	if err != nil {
		return nil, err
	}
	_, err = s.db.ExecContext(ctx,
		"UPDATE memories SET title = ?, content = ?, tags = ?, collection_id = ?, metadata = ?, updated_at = ? WHERE id = ?",
		m.Title, m.Content, tags, nullable(m.CollectionID), meta,
		m.UpdatedAt.Format(time.RFC3339Nano), id)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Delete removes one memory; ErrNotFound when the id does not exist.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM memories WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// BatchDelete deletes each id independently and reports per-id outcomes.
// A failing id never affects the others.
func (s *Store) BatchDelete(ctx context.Context, ids []string) model.BatchDeleteResponse {
	var resp model.BatchDeleteResponse
	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			reason := "delete failed"
			if err == ErrNotFound {
				reason = "not found"
			}
			resp.Failed = append(resp.Failed, model.FailedID{ID: id, Reason: reason})
			continue
		}
		resp.Deleted = append(resp.Deleted, id)
	}
	return resp
}

// Stats returns aggregate counts for the analytics endpoint.
func (s *Store) Stats(ctx context.Context) (*model.Stats, error) {
	var st model.Stats
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM memories").Scan(&st.MemoryCount); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM collections").Scan(&st.CollectionCount); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT tags FROM memories")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	unique := map[string]struct{}{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var tags []string
		if err := json.Unmarshal([]byte(raw), &tags); err != nil {
			continue
		}
		for _, t := range tags {
			unique[t] = struct{}{}
		}
	}
	st.TagCount = len(unique)
	return &st, rows.Err()
}

// ListCollections returns all collections by name.
func (s *Store) ListCollections(ctx context.Context) ([]model.Collection, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, created_at FROM collections ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Collection
	for rows.Next() {
		var c model.Collection
		var created string
		if err := rows.Scan(&c.ID, &c.Name, &created); err != nil {
			return nil, err
		}
		c.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateCollection inserts a named collection.
func (s *Store) CreateCollection(ctx context.Context, name string) (*model.Collection, error) {
	c := model.Collection{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO collections (id, name, created_at) VALUES (?, ?, ?)",
		c.ID, c.Name, c.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ---- helpers ----

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMemory(r rowScanner) (model.Memory, error) {
	var (
		m          model.Memory
		tags, meta string
		coll       sql.NullString
		created    string
		updated    string
	)
	if err := r.Scan(&m.ID, &m.Title, &m.Content, &tags, &coll, &meta, &created, &updated); err != nil {
		return model.Memory{}, err
	}
	if err := json.Unmarshal([]byte(tags), &m.Tags); err != nil {
		return model.Memory{}, fmt.Errorf("decode tags for %s: %w", m.ID, err)
	}
	if err := json.Unmarshal([]byte(meta), &m.Metadata); err != nil {
		return model.Memory{}, fmt.Errorf("decode metadata for %s: %w", m.ID, err)
	}
	if coll.Valid {
		m.CollectionID = coll.String
	}
	m.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	m.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return m, nil
}

func encodeJSONCols(tags []string, metadata map[string]any) (string, string, error) {
	if tags == nil {
		tags = []string{}
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	t, err := json.Marshal(tags)
	if err != nil {
		return "", "", err
	}
	m, err := json.Marshal(metadata)
	if err != nil {
		return "", "", err
	}
	return string(t), string(m), nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func hasTag(tags []string, want string) bool {
	for _, t := range tags {
		if t == want {
			return true
		}
	}
	return false
}
