// File: cmd/diagnostic/qdrant/main.go
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/iyunix/go-meddy/internal/config"
	"github.com/iyunix/go-meddy/internal/services/ai"
	"github.com/iyunix/go-meddy/internal/services/vectorstore"
)

func main() {
	testRuns := flag.Int("runs", 5, "number of timed searches")
	topK := flag.Int("k", 10, "results per search")
	query := flag.String("q", "Liều dùng metoprolol tiêu chuẩn là bao nhiêu?", "test query")
	flag.Parse()

	log.Println("--- Running Qdrant Performance Test ---")

	cfg := config.Load()
	aiCfg := ai.DefaultConfig()
	aiCfg.APIKey = cfg.OpenAIAPIKey
	aiCfg.BaseURL = cfg.OpenAIBaseURL
	aiCfg.ChatModel = cfg.ChatModel
	aiCfg.EmbeddingModel = cfg.EmbeddingModelName
	if err := aiCfg.Validate(); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	provider := ai.NewOpenAIProvider(aiCfg, nil)

	vsCfg := vectorstore.DefaultConfig()
	vsCfg.Host = cfg.QdrantHost
	vsCfg.Port = cfg.QdrantPort
	vsCfg.APIKey = cfg.QdrantAPIKey
	vsCfg.UseTLS = cfg.QdrantUseTLS
	vsCfg.CollectionName = cfg.CollectionName
	vsCfg.Dimension = cfg.VectorDimension
	store, err := vectorstore.NewQdrantStore(vsCfg, nil)
	if err != nil {
		log.Fatalf("FATAL: failed to initialize Qdrant store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Health(ctx); err != nil {
		log.Fatalf("FATAL: Qdrant unreachable: %v", err)
	}

	log.Printf("Test Query: %q", *query)

	start := time.Now()
	embedding, err := provider.CreateEmbedding(ctx, *query)
	if err != nil {
		log.Fatalf("FATAL: Failed to create embedding: %v", err)
	}
	log.Printf("[TIMING] Embedding creation took: %s", time.Since(start))

	var total time.Duration
	succeeded := 0
	log.Printf("[INFO] Running %d queries with topK=%d against %q...", *testRuns, *topK, cfg.CollectionName)
	for i := 1; i <= *testRuns; i++ {
		start := time.Now()
		results, err := store.Search(ctx, embedding, *topK)
		if err != nil {
			log.Printf("ERROR: Query run #%d failed: %v", i, err)
			continue
		}
		took := time.Since(start)
		total += took
		succeeded++
		log.Printf("[TIMING] Query run #%d took: %s (found %d matches)", i, took, len(results))
		if i == 1 {
			for _, r := range results {
				log.Printf("  %.4f  %s", r.Score, r.Title)
			}
		}
	}

	log.Printf("--- Test Summary ---")
	if succeeded == 0 {
		log.Fatalf("all %d queries failed", *testRuns)
	}
	log.Printf("Average query latency over %d runs: %s", succeeded, total/time.Duration(succeeded))
}
