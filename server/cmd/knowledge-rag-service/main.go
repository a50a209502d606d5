package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/knowledge-rag/knowledge-rag-go/server/internal/api"
	"github.com/knowledge-rag/knowledge-rag-go/server/internal/config"
	"github.com/knowledge-rag/knowledge-rag-go/server/internal/hub"
	"github.com/knowledge-rag/knowledge-rag-go/server/internal/platform/logger"
	"github.com/knowledge-rag/knowledge-rag-go/server/internal/storage"
)

func main() {
	log := logger.New("knowledge-rag-service")

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Stack().Err(err).Msg("Failed to load configuration")
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Str("sqlite_path", cfg.SQLitePath).
		Int("http_port", cfg.HTTPPort).
		Msg("knowledge-rag service starting")

	store, err := storage.Open(cfg.SQLitePath)
	if err != nil {
		log.Fatal().Stack().Err(err).Msg("Storage unavailable")
	}
	defer func() { _ = store.Close() }()

	eventHub := hub.New(hub.Config{
		Logger:         log,
		WriteTimeout:   cfg.WriteTimeout,
		SendBuffer:     cfg.ClientSendBuf,
		AllowAnyOrigin: cfg.AllowAnyOrigin,
	})

	router := api.NewRouter(store, eventHub, log)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // the channel endpoint holds connections open
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Stack().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Stack().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}
