// File: cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iyunix/go-meddy/internal/app"
	"github.com/iyunix/go-meddy/internal/config"
)

func main() {
	cfg := config.Load()
	logger := app.NewLogger(cfg, "meddy-api")

	application, err := app.New(cfg, logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize application: %v", err)
	}
	defer application.Close()

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := application.EnsureCollection(startupCtx); err != nil {
		// The API still serves chat via web search when the collection is missing.
		logger.Error("Failed to ensure default collection", "collection", cfg.CollectionName, "error", err)
	}
	cancel()

	// --- Server Configuration ---
	port := ":8000"
	if cfg.ServerPort != "" {
		port = ":" + cfg.ServerPort
	}
	srv := &http.Server{
		Addr:              port,
		Handler:           application.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		// Sync chat requests and task polling can take minutes.
		WriteTimeout: 6 * time.Minute,
	}

	logger.Info("Server starting",
		"port", port,
		"environment", cfg.Environment,
		"collection", cfg.CollectionName,
		"chat_model", cfg.ChatModel)

	// --- Start Server in Goroutine ---
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server startup failed", "error", err)
			os.Exit(1)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down server gracefully...")
	ctx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
		return
	}
	logger.Info("Server stopped gracefully")
}
