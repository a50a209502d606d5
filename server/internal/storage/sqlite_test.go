package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowledge-rag/knowledge-rag-go/server/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func strPtr(s string) *string { return &s }

func TestCreateGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, model.CreateMemoryRequest{
		Title:    "first",
		Content:  "hello",
		Tags:     []string{"work"},
		Metadata: map[string]any{"source": "web"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Title)
	assert.Equal(t, []string{"work"}, got.Tags)
	assert.Equal(t, "web", got.Metadata["source"])
	assert.False(t, got.CreatedAt.IsZero())
}

func TestGetUnknownIDReturnsNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePartial(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, model.CreateMemoryRequest{Title: "a", Content: "body"})
	require.NoError(t, err)

	updated, err := s.Update(ctx, created.ID, model.UpdateMemoryRequest{
		Tags: []string{"important", "review"},
	})
	require.NoError(t, err)
	assert.Equal(t, "a", updated.Title, "unset fields stay untouched")
	assert.Equal(t, []string{"important", "review"}, updated.Tags)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt) || updated.UpdatedAt.Equal(created.UpdatedAt))

	moved, err := s.Update(ctx, created.ID, model.UpdateMemoryRequest{CollectionID: strPtr("col-1")})
	require.NoError(t, err)
	assert.Equal(t, "col-1", moved.CollectionID)
	assert.Equal(t, []string{"important", "review"}, moved.Tags)
}

func TestListPaginationAndFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	col, err := s.CreateCollection(ctx, "projects")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		req := model.CreateMemoryRequest{Title: "m", Content: "c"}
		if i%2 == 0 {
			req.Tags = []string{"even"}
		}
		if i == 0 {
			req.CollectionID = col.ID
		}
		_, err := s.Create(ctx, req)
		require.NoError(t, err)
	}

	page, total, err := s.List(ctx, ListParams{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, page, 2)

	page, total, err = s.List(ctx, ListParams{Page: 3, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, page, 1)

	tagged, total, err := s.List(ctx, ListParams{Tag: "even"})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, tagged, 3)

	inCol, total, err := s.List(ctx, ListParams{CollectionID: col.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, inCol, 1)
	assert.Equal(t, col.ID, inCol[0].CollectionID)
}

func TestBatchDeletePartialFailure(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.Create(ctx, model.CreateMemoryRequest{Title: "a", Content: "x"})
	require.NoError(t, err)
	b, err := s.Create(ctx, model.CreateMemoryRequest{Title: "b", Content: "y"})
	require.NoError(t, err)

	resp := s.BatchDelete(ctx, []string{a.ID, "missing", b.ID})
	assert.ElementsMatch(t, []string{a.ID, b.ID}, resp.Deleted)
	require.Len(t, resp.Failed, 1)
	assert.Equal(t, "missing", resp.Failed[0].ID)
	assert.Equal(t, "not found", resp.Failed[0].Reason)

	_, total, err := s.List(ctx, ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestStatsCountsUniqueTags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, model.CreateMemoryRequest{Title: "a", Content: "x", Tags: []string{"work", "home"}})
	require.NoError(t, err)
	_, err = s.Create(ctx, model.CreateMemoryRequest{Title: "b", Content: "y", Tags: []string{"work"}})
	require.NoError(t, err)
	_, err = s.CreateCollection(ctx, "stuff")
	require.NoError(t, err)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.MemoryCount)
	assert.Equal(t, 1, st.CollectionCount)
	assert.Equal(t, 2, st.TagCount)
}

func TestCollectionNamesUnique(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateCollection(ctx, "inbox")
	require.NoError(t, err)
	_, err = s.CreateCollection(ctx, "inbox")
	assert.Error(t, err)

	cols, err := s.ListCollections(ctx)
	require.NoError(t, err)
	require.Len(t, cols, 1)
	assert.Equal(t, "inbox", cols[0].Name)
}

func TestConcurrentIDMinting(t *testing.T) {
	s := newTestStore(t)

	const workers, perWorker = 8, 50
	ids := make(chan string, workers*perWorker)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				ids <- s.NewMemoryID()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool, workers*perWorker)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers*perWorker)
}
