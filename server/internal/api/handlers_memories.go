// Package api exposes the REST surface of the demo backend and broadcasts
// change events for every mutation it applies.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/knowledge-rag/knowledge-rag-go/server/internal/api/respond"
	"github.com/knowledge-rag/knowledge-rag-go/server/internal/hub"
	"github.com/knowledge-rag/knowledge-rag-go/server/internal/model"
	"github.com/knowledge-rag/knowledge-rag-go/server/internal/storage"
)

// MemoryHandler serves /v1/memories.
type MemoryHandler struct {
	store *storage.Store
	hub   *hub.Hub
	log   zerolog.Logger
}

// NewMemoryHandler builds the handler.
func NewMemoryHandler(store *storage.Store, h *hub.Hub, log zerolog.Logger) *MemoryHandler {
	return &MemoryHandler{store: store, hub: h, log: log}
}

// origin tags broadcast events with the mutating client's id, so that
// client can recognize its own echo.
func origin(r *http.Request) string { return r.Header.Get("X-Client-ID") }

type listResponse struct {
	Memories   []model.Memory   `json:"memories"`
	Pagination model.Pagination `json:"pagination"`
}

// List handles GET /v1/memories.
func (h *MemoryHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := storage.ListParams{
		CollectionID: q.Get("collectionId"),
		Tag:          q.Get("tag"),
	}
	p.Page, _ = strconv.Atoi(q.Get("page"))
	p.PageSize, _ = strconv.Atoi(q.Get("pageSize"))
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = 50
	}

	memories, total, err := h.store.List(r.Context(), p)
	if err != nil {
		h.log.Error().Err(err).Msg("list memories")
		respond.WriteInternalError(w, "failed to list memories")
		return
	}
	if memories == nil {
		memories = []model.Memory{}
	}
	respond.WriteJSON(w, http.StatusOK, listResponse{
		Memories: memories,
		Pagination: model.Pagination{
			Page:     p.Page,
			PageSize: p.PageSize,
			Total:    total,
		},
	})
}

// Get handles GET /v1/memories/{id}.
func (h *MemoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	m, err := h.store.Get(r.Context(), id)
	if err != nil {
		if err == storage.ErrNotFound {
			respond.WriteNotFound(w, "memory not found")
			return
		}
		h.log.Error().Err(err).Str("id", id).Msg("get memory")
		respond.WriteInternalError(w, "failed to get memory")
		return
	}
	respond.WriteJSON(w, http.StatusOK, m)
}

// Create handles POST /v1/memories.
func (h *MemoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateMemoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}
	if req.Title == "" {
		respond.WriteBadRequest(w, "title is required")
		return
	}
	m, err := h.store.Create(r.Context(), req)
	if err != nil {
		h.log.Error().Err(err).Msg("create memory")
		respond.WriteInternalError(w, "failed to create memory")
		return
	}
	h.hub.BroadcastMemoryChange(model.Event{
		EventID: h.store.NewEventID(),
		Kind:    model.EventItemCreated,
		ID:      m.ID,
		Payload: m,
		Origin:  origin(r),
	})
	respond.WriteJSON(w, http.StatusCreated, m)
}

// Update handles PATCH /v1/memories/{id}: tag and move operations land
// here, one call per target id.
func (h *MemoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req model.UpdateMemoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}
	m, err := h.store.Update(r.Context(), id, req)
	if err != nil {
		if err == storage.ErrNotFound {
			respond.WriteNotFound(w, "memory not found")
			return
		}
		h.log.Error().Err(err).Str("id", id).Msg("update memory")
		respond.WriteInternalError(w, "failed to update memory")
		return
	}
	h.hub.BroadcastMemoryChange(model.Event{
		EventID: h.store.NewEventID(),
		Kind:    model.EventItemUpdated,
		ID:      m.ID,
		Payload: m,
		Origin:  origin(r),
	})
	respond.WriteJSON(w, http.StatusOK, m)
}

// Delete handles DELETE /v1/memories/{id}.
func (h *MemoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.store.Delete(r.Context(), id); err != nil {
		if err == storage.ErrNotFound {
			respond.WriteNotFound(w, "memory not found")
			return
		}
		h.log.Error().Err(err).Str("id", id).Msg("delete memory")
		respond.WriteInternalError(w, "failed to delete memory")
		return
	}
	h.hub.BroadcastMemoryChange(model.Event{
		EventID: h.store.NewEventID(),
		Kind:    model.EventItemDeleted,
		ID:      id,
		Origin:  origin(r),
	})
	w.WriteHeader(http.StatusNoContent)
}

// BatchDelete handles POST /v1/memories/batch-delete. The batch is framed
// by sync-start/sync-end advisories on the list room; each deleted id gets
// its own deleted event so detail views update too.
func (h *MemoryHandler) BatchDelete(w http.ResponseWriter, r *http.Request) {
	var req model.BatchDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}
	if len(req.IDs) == 0 {
		respond.WriteBadRequest(w, "ids is required")
		return
	}

	from := origin(r)
	h.hub.Broadcast(model.Event{
		EventID: h.store.NewEventID(),
		Kind:    model.EventSyncStart,
		Room:    model.RoomMemories,
		Origin:  from,
	})
	resp := h.store.BatchDelete(r.Context(), req.IDs)
	for _, id := range resp.Deleted {
		h.hub.BroadcastMemoryChange(model.Event{
			EventID: h.store.NewEventID(),
			Kind:    model.EventItemDeleted,
			ID:      id,
			Origin:  from,
		})
	}
	h.hub.Broadcast(model.Event{
		EventID: h.store.NewEventID(),
		Kind:    model.EventSyncEnd,
		Room:    model.RoomMemories,
		Origin:  from,
	})

	respond.WriteJSON(w, http.StatusOK, resp)
}
