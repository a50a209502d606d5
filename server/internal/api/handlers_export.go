package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/knowledge-rag/knowledge-rag-go/server/internal/api/respond"
	"github.com/knowledge-rag/knowledge-rag-go/server/internal/export"
	"github.com/knowledge-rag/knowledge-rag-go/server/internal/model"
	"github.com/knowledge-rag/knowledge-rag-go/server/internal/storage"
)

// ExportHandler serves POST /api/export/memories.
type ExportHandler struct {
	store *storage.Store
	log   zerolog.Logger
}

// NewExportHandler builds the handler.
func NewExportHandler(store *storage.Store, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{store: store, log: log}
}

// Export renders the requested memories as a downloadable blob. Unknown ids
// are skipped; the client names the file, the header only suggests one.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req model.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}
	if len(req.MemoryIDs) == 0 {
		respond.WriteBadRequest(w, "memoryIds is required")
		return
	}

	items := make([]model.Memory, 0, len(req.MemoryIDs))
	for _, id := range req.MemoryIDs {
		m, err := h.store.Get(r.Context(), id)
		if err != nil {
			if err == storage.ErrNotFound {
				continue
			}
			h.log.Error().Err(err).Str("id", id).Msg("export fetch")
			respond.WriteInternalError(w, "failed to load memories")
			return
		}
		items = append(items, *m)
	}

	data, contentType, err := export.Render(items, req.Format, export.Options{
		IncludeMetadata: req.IncludeMetadata,
		IncludeTags:     req.IncludeTags,
	})
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	ext := req.Format
	if ext == "markdown" {
		ext = "md"
	}
	filename := fmt.Sprintf("memories-export-%s.%s", time.Now().UTC().Format("2006-01-02T15-04-05Z"), ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
