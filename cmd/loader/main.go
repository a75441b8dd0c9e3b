// File: cmd/loader/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/iyunix/go-meddy/internal/app"
	"github.com/iyunix/go-meddy/internal/config"
	"github.com/iyunix/go-meddy/internal/loader"
	"github.com/iyunix/go-meddy/internal/services/vectorstore"
)

type readFunc func(r io.Reader, limit int) ([]loader.Record, []loader.Skip, error)

func main() {
	diseasePath := flag.String("diseases", "", "JSONL file of the disease Q&A dataset")
	articlePath := flag.String("articles", "", "JSONL file of the medical article corpus")
	limit := flag.Int("limit", 0, "rows to read per dataset (0 = all)")
	flag.Parse()

	if *diseasePath == "" && *articlePath == "" {
		log.Fatal("FATAL: pass -diseases and/or -articles")
	}

	if err := run(*diseasePath, *articlePath, *limit); err != nil {
		log.Printf("ERROR: dataset load failed: %v", err)
		os.Exit(1)
	}
}

// run performs the load; main owns the exit status.
func run(diseasePath, articlePath string, limit int) error {
	cfg := config.Load()
	logger := app.NewLogger(cfg, "meddy-loader")

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.EnsureCollection(ctx); err != nil {
		logger.Error("Failed to ensure collection", "collection", cfg.CollectionName, "error", err)
		return fmt.Errorf("ensure collection %q: %w", cfg.CollectionName, err)
	}

	l := loader.New(application.Indexer, logger)

	var (
		all   []vectorstore.Point
		stats []loader.Stats
	)
	datasets := []struct {
		name string
		path string
		read readFunc
	}{
		{"disease", diseasePath, loader.ReadDiseases},
		{"article", articlePath, loader.ReadArticles},
	}
	for _, ds := range datasets {
		if ds.path == "" {
			continue
		}
		records, skips, err := readFile(ds.path, limit, ds.read)
		if err != nil {
			logger.Error("Dataset load failed", "dataset", ds.name, "path", ds.path, "error", err)
			return fmt.Errorf("read %s dataset: %w", ds.name, err)
		}
		points, s := l.Prepare(ctx, ds.name, records, skips)
		all = append(all, points...)
		stats = append(stats, s)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("interrupted before upload: %w", err)
	}

	logger.Info("Total points to upload", "points", len(all))
	if err := l.Upload(ctx, all); err != nil {
		logger.Error("Dataset upload failed", "error", err)
		return err
	}

	logger.Info("Dataset upload completed successfully!", "collection", cfg.CollectionName, "points", len(all))
	for _, s := range stats {
		logger.Info(s.String())
	}
	return nil
}

func readFile(path string, limit int, read readFunc) ([]loader.Record, []loader.Skip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return read(f, limit)
}
