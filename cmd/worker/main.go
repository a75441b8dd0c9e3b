// File: cmd/worker/main.go
package main

import (
	"log"

	"github.com/iyunix/go-meddy/internal/app"
	"github.com/iyunix/go-meddy/internal/config"
	"github.com/iyunix/go-meddy/internal/metrics"
	"github.com/iyunix/go-meddy/internal/tasks"
)

func main() {
	cfg := config.Load()
	logger := app.NewLogger(cfg, "meddy-worker")

	application, err := app.New(cfg, logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize application: %v", err)
	}
	defer application.Close()

	taskCfg := application.TaskConfig()
	if err := taskCfg.Validate(); err != nil {
		log.Fatalf("FATAL: invalid task configuration: %v", err)
	}

	taskLogger := logger.With("queue", taskCfg.Queue)
	handlers := tasks.NewHandlers(application.Chat, application.Indexer, taskLogger)
	mux := tasks.NewServeMux(handlers, application.Metrics, taskLogger)
	srv := tasks.NewServer(taskCfg, taskLogger)

	if cfg.WorkerMetricsAddr != "" {
		metricsSrv := metrics.NewServer(cfg.WorkerMetricsAddr, application.Metrics, logger)
		if err := metricsSrv.Start(); err != nil {
			log.Fatalf("FATAL: Failed to start metrics server: %v", err)
		}
		defer metricsSrv.Stop()
	}

	logger.Info("Worker starting",
		"queue", taskCfg.Queue,
		"concurrency", taskCfg.Concurrency,
		"redis", taskCfg.RedisAddr)

	// Run blocks until SIGTERM or SIGINT and then drains in-flight tasks.
	if err := srv.Run(mux); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		return
	}
	logger.Info("Worker stopped")
}
