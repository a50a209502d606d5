package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/knowledge-rag/knowledge-rag-go/server/internal/api/respond"
	"github.com/knowledge-rag/knowledge-rag-go/server/internal/hub"
	"github.com/knowledge-rag/knowledge-rag-go/server/internal/storage"
)

// MiscHandler serves analytics, auth, and health.
type MiscHandler struct {
	store *storage.Store
	hub   *hub.Hub
	log   zerolog.Logger
}

// NewMiscHandler builds the handler.
func NewMiscHandler(store *storage.Store, h *hub.Hub, log zerolog.Logger) *MiscHandler {
	return &MiscHandler{store: store, hub: h, log: log}
}

// Stats handles GET /v1/analytics/stats.
func (h *MiscHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.store.Stats(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("stats")
		respond.WriteInternalError(w, "failed to compute stats")
		return
	}
	respond.WriteJSON(w, http.StatusOK, st)
}

// Login handles POST /v1/auth/login. The demo backend accepts any
// credentials and issues an opaque token; real auth lives elsewhere.
func (h *MiscHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respond.WriteBadRequest(w, "email and password are required")
		return
	}
	token := base64.StdEncoding.EncodeToString([]byte(req.Email + ":" + uuid.NewString()))
	respond.WriteJSON(w, http.StatusOK, map[string]any{
		"token":     token,
		"expiresIn": 86400,
	})
}

// Health handles GET /api/health.
func (h *MiscHandler) Health(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"channelSessions": h.hub.SessionCount(),
	})
}
