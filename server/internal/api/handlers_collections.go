package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/knowledge-rag/knowledge-rag-go/server/internal/api/respond"
	"github.com/knowledge-rag/knowledge-rag-go/server/internal/model"
	"github.com/knowledge-rag/knowledge-rag-go/server/internal/storage"
)

// CollectionHandler serves /v1/collections.
type CollectionHandler struct {
	store *storage.Store
	log   zerolog.Logger
}

// NewCollectionHandler builds the handler.
func NewCollectionHandler(store *storage.Store, log zerolog.Logger) *CollectionHandler {
	return &CollectionHandler{store: store, log: log}
}

type listCollectionsResponse struct {
	Collections []model.Collection `json:"collections"`
}

// List handles GET /v1/collections.
func (h *CollectionHandler) List(w http.ResponseWriter, r *http.Request) {
	cols, err := h.store.ListCollections(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list collections")
		respond.WriteInternalError(w, "failed to list collections")
		return
	}
	if cols == nil {
		cols = []model.Collection{}
	}
	respond.WriteJSON(w, http.StatusOK, listCollectionsResponse{Collections: cols})
}

// Create handles POST /v1/collections.
func (h *CollectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}
	if req.Name == "" {
		respond.WriteBadRequest(w, "name is required")
		return
	}
	c, err := h.store.CreateCollection(r.Context(), req.Name)
	if err != nil {
		h.log.Error().Err(err).Str("name", req.Name).Msg("create collection")
		respond.WriteInternalError(w, "failed to create collection")
		return
	}
	respond.WriteJSON(w, http.StatusCreated, c)
}
