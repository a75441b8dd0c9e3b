// File: internal/services/ai/interface.go
package ai

import (
	"context"

	"github.com/iyunix/go-meddy/internal/domain"
)

// CompletionOptions overrides the configured sampling defaults for one call.
// Zero values keep the defaults.
type CompletionOptions struct {
	Temperature *float32
	MaxTokens   int
}

// WithTemperature is a convenience for building CompletionOptions.
func WithTemperature(t float32, maxTokens int) CompletionOptions {
	return CompletionOptions{Temperature: &t, MaxTokens: maxTokens}
}

// Tool describes a function the model may call. Parameters is a JSON schema.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// EmbeddingProvider handles text embeddings
type EmbeddingProvider interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// CompletionProvider handles chat completions
type CompletionProvider interface {
	ChatComplete(ctx context.Context, messages []domain.ChatMessage, opts CompletionOptions) (string, error)
	// ChatWithTools returns the assistant turn, which may carry tool calls.
	ChatWithTools(ctx context.Context, messages []domain.ChatMessage, tools []Tool, opts CompletionOptions) (domain.ChatMessage, error)
	// ForcedFunctionCall makes the model call fn and returns that call.
	ForcedFunctionCall(ctx context.Context, messages []domain.ChatMessage, fn Tool) (domain.ToolCall, error)
}

// Service combines embedding and completion capabilities
type Service interface {
	EmbeddingProvider
	CompletionProvider
	HealthCheck(ctx context.Context) error
}
