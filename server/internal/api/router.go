package api

import (
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/knowledge-rag/knowledge-rag-go/server/internal/api/recovery"
	"github.com/knowledge-rag/knowledge-rag-go/server/internal/hub"
	"github.com/knowledge-rag/knowledge-rag-go/server/internal/storage"
)

// NewRouter creates the HTTP router with all API routes.
func NewRouter(store *storage.Store, h *hub.Hub, log zerolog.Logger) *mux.Router {
	router := mux.NewRouter()

	// Global middlewares
	router.Use(recovery.Middleware)

	memories := NewMemoryHandler(store, h, log)
	collections := NewCollectionHandler(store, log)
	exports := NewExportHandler(store, log)
	misc := NewMiscHandler(store, h, log)

	// Health
	router.HandleFunc("/api/health", misc.Health).Methods("GET")

	// Memory endpoints
	router.HandleFunc("/v1/memories", memories.List).Methods("GET")
	router.HandleFunc("/v1/memories", memories.Create).Methods("POST")
	router.HandleFunc("/v1/memories/batch-delete", memories.BatchDelete).Methods("POST")
	router.HandleFunc("/v1/memories/{id}", memories.Get).Methods("GET")
	router.HandleFunc("/v1/memories/{id}", memories.Update).Methods("PATCH")
	router.HandleFunc("/v1/memories/{id}", memories.Delete).Methods("DELETE")

	// Collections
	router.HandleFunc("/v1/collections", collections.List).Methods("GET")
	router.HandleFunc("/v1/collections", collections.Create).Methods("POST")

	// Export
	router.HandleFunc("/api/export/memories", exports.Export).Methods("POST")

	// Analytics and auth
	router.HandleFunc("/v1/analytics/stats", misc.Stats).Methods("GET")
	router.HandleFunc("/v1/auth/login", misc.Login).Methods("POST")

	// Real-time channel
	router.HandleFunc("/v1/ws", h.HandleWS)

	return router
}
