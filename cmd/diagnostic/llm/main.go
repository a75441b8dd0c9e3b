// File: cmd/diagnostic/llm/main.go
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/iyunix/go-meddy/internal/config"
	"github.com/iyunix/go-meddy/internal/domain"
	"github.com/iyunix/go-meddy/internal/services/ai"
)

func main() {
	question := flag.String("q", "Triệu chứng của bệnh tiểu đường là gì?", "question sent to the chat model")
	flag.Parse()

	log.Println("--- Running LLM Diagnostic ---")

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

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	start := time.Now()
	if err := provider.HealthCheck(ctx); err != nil {
		log.Fatalf("FATAL: health check failed: %v", err)
	}
	log.Printf("[TIMING] Health check took: %s", time.Since(start))

	start = time.Now()
	embedding, err := provider.CreateEmbedding(ctx, *question)
	if err != nil {
		log.Fatalf("FATAL: embedding failed: %v", err)
	}
	log.Printf("[TIMING] Embedding (%s, %d dims) took: %s", aiCfg.EmbeddingModel, len(embedding), time.Since(start))
	if len(embedding) != cfg.VectorDimension {
		log.Printf("WARNING: embedding has %d dims but VECTOR_DIMENSION is %d", len(embedding), cfg.VectorDimension)
	}

	start = time.Now()
	answer, err := provider.ChatComplete(ctx, []domain.ChatMessage{domain.UserMessage(*question)}, ai.CompletionOptions{})
	if err != nil {
		log.Fatalf("FATAL: chat completion failed: %v", err)
	}
	log.Printf("[TIMING] Chat completion (%s) took: %s", aiCfg.ChatModel, time.Since(start))
	log.Printf("Response:\n%s", answer)
}
