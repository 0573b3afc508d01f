package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"research-chatbot/internal/app"
	"research-chatbot/internal/config"
	"research-chatbot/internal/http"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API answers research questions from an indexed paper collection using multi-query retrieval.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: Research Chatbot API
//   description: |
//     Retrieval-augmented question answering over an indexed research collection.
//     Questions are expanded into several queries, evidence is retrieved and reranked by recency,
//     and answers are validated and cited. Follow-up questions use the session's recent turns.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, logCloser := app.NewLogger(os.Stdout, cfg)
	defer func() {
		_ = logCloser.Close()
	}()
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat, "file", cfg.LogFile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := application.Close(); err != nil {
			slog.Error("Failed to close application", "error", err)
		}
	}()
	slog.Info("Pipeline initialized",
		"collection", cfg.QdrantCollection,
		"parallel_retrieval", cfg.ParallelRetrieval,
		"durable_history", cfg.HistoryDBPath != "",
	)

	// Create router with dependencies
	router := http.NewRouter(&http.Deps{
		QueryService: application.QueryService,
		VectorStore:  application.VectorStore,
		Collection:   application.Collection,
	})

	server := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Starting API server", "addr", server.Addr)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, nethttp.ErrServerClosed) {
			slog.Error("API server failed", "error", err)
		}
		return
	case <-ctx.Done():
		slog.Info("Shutting down API server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
