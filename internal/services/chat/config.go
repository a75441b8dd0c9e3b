// File: internal/services/chat/config.go
package chat

import (
	"fmt"
	"time"
)

type Config struct {
	// Retrieval
	RetrievalTopK       int     // candidates pulled from the vector store
	RerankTopN          int     // candidates kept after reranking
	ConfidenceThreshold float64 // best rerank score below this triggers web search

	// Answer generation
	Temperature float32
	MaxTokens   int

	// Summaries stored in place of the full answer
	SummaryTemperature float32
	SummaryMaxTokens   int

	// General agent
	MaxToolRounds int

	// Upper bound for one HandleMessage run
	Timeout time.Duration
}

func (c *Config) Validate() error {
	if c.RetrievalTopK <= 0 {
		return fmt.Errorf("retrieval_top_k must be positive")
	}
	if c.RetrievalTopK > 100 {
		return fmt.Errorf("retrieval_top_k cannot exceed 100")
	}
	if c.RerankTopN <= 0 {
		return fmt.Errorf("rerank_top_n must be positive")
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence_threshold must be between 0 and 1")
	}
	if c.MaxTokens <= 0 || c.SummaryMaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive")
	}
	if c.MaxToolRounds < 1 {
		return fmt.Errorf("max_tool_rounds must be at least 1")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		RetrievalTopK:       5,
		RerankTopN:          3,
		ConfidenceThreshold: 0.5,
		Temperature:         0.7,
		MaxTokens:           2048,
		SummaryTemperature:  0.5,
		SummaryMaxTokens:    512,
		MaxToolRounds:       5,
		Timeout:             5 * time.Minute,
	}
}
