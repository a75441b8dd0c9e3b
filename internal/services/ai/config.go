// File: internal/services/ai/config.go
package ai

import (
	"fmt"
	"time"
)

type Config struct {
	APIKey  string
	BaseURL string // empty means the public OpenAI endpoint

	ChatModel      string
	EmbeddingModel string

	// Defaults applied when a call does not override them.
	Temperature float32
	MaxTokens   int

	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.ChatModel == "" {
		return fmt.Errorf("chat model is required")
	}
	if c.EmbeddingModel == "" {
		return fmt.Errorf("embedding model is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		ChatModel:      "gpt-4o-mini",
		EmbeddingModel: "text-embedding-3-small",
		Temperature:    0.7,
		MaxTokens:      2048,
		Timeout:        2 * time.Minute,
		MaxRetries:     2,
		RetryDelay:     2 * time.Second,
	}
}
