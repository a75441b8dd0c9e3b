// File: internal/services/chunking/dynamic.go
package chunking

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/iyunix/go-meddy/internal/logging"
	"github.com/iyunix/go-meddy/internal/services/ai"
)

// Strategy names the branch DynamicChunk picked.
type Strategy string

const (
	StrategySingle Strategy = "single"
	StrategyWindow Strategy = "window"
	StrategyLLM    Strategy = "llm"
)

// Chunker dispatches on text length: short texts become one node, medium
// texts go through the sentence window splitter and long texts are split by
// the LLM.
type Chunker struct {
	config *Config
	window *WindowSplitter
	llm    *LLMChunker
	logger logging.Logger
}

func NewChunker(config *Config, tokenizer Tokenizer, segmenter Segmenter, llm ai.CompletionProvider, logger logging.Logger) (*Chunker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if segmenter == nil {
		segmenter = NewRegexSegmenter("")
	}
	splitter := NewSentenceSplitter(config, tokenizer, segmenter)
	return &Chunker{
		config: config,
		window: NewWindowSplitter(config.WindowSize, segmenter, splitter),
		llm:    NewLLMChunker(llm),
		logger: logging.OrNoOp(logger),
	}, nil
}

// StrategyFor reports which branch a text of this length takes.
func (c *Chunker) StrategyFor(text string) Strategy {
	n := utf8.RuneCountInString(text)
	switch {
	case n < c.config.ChunkSize:
		return StrategySingle
	case n < c.config.ChunkSize*4:
		return StrategyWindow
	default:
		return StrategyLLM
	}
}

func (c *Chunker) DynamicChunk(ctx context.Context, text string, metadata map[string]interface{}) ([]Node, error) {
	strategy := c.StrategyFor(text)

	var nodes []Node
	switch strategy {
	case StrategySingle:
		c.logger.Info("Document is smaller than chunk size, creating single chunk.")
		nodes = []Node{newNode(text, metadata)}
	case StrategyWindow:
		c.logger.Info("Chunking document by window sentences...")
		nodes = c.window.Split(text, metadata)
	default:
		c.logger.Info("Chunking document using LLM...")
		var err error
		nodes, err = c.llm.Split(ctx, text, metadata)
		if err != nil {
			c.logger.Error("Error chunking document with LLM", "error", err)
			return nil, err
		}
	}

	if len(nodes) == 0 {
		return nil, fmt.Errorf("chunking produced no nodes (strategy %s)", strategy)
	}
	c.logger.Info("Document chunked", "strategy", string(strategy), "chunks", len(nodes))
	return nodes, nil
}
