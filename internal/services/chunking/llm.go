package chunking

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/iyunix/go-meddy/internal/domain"
	"github.com/iyunix/go-meddy/internal/services/ai"
)

const llmChunkingSystemPrompt = "You are an assistant that splits text into smaller chunks. " +
	"Each chunk should be no longer than 512 characters, with an overlap of 50 characters. " +
	"Return the result as a JSON array of strings, where each string is a chunk of the text. " +
	"Do not include any markdown formatting (e.g., ```json). Only return the JSON array."

// LLMChunker asks a chat model to split long texts.
type LLMChunker struct {
	llm ai.CompletionProvider
}

func NewLLMChunker(llm ai.CompletionProvider) *LLMChunker {
	return &LLMChunker{llm: llm}
}

func (c *LLMChunker) Split(ctx context.Context, text string, metadata map[string]interface{}) ([]Node, error) {
	messages := []domain.ChatMessage{
		domain.SystemMessage(llmChunkingSystemPrompt),
		domain.UserMessage(fmt.Sprintf("## Input text ##: %s\n\n## Output format ##: [\"chunk1\", \"chunk2\", ...]\n\n## Output ##: ", text)),
	}

	reply, err := c.llm.ChatComplete(ctx, messages, ai.WithTemperature(0.1, 2048))
	if err != nil {
		return nil, fmt.Errorf("llm chunking: %w", err)
	}

	chunks, err := parseChunkList(reply)
	if err != nil {
		return nil, err
	}

	nodes := make([]Node, 0, len(chunks))
	for _, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		nodes = append(nodes, newNode(chunk, metadata))
	}
	linkNodes(nodes)
	return nodes, nil
}

// parseChunkList decodes a JSON array of strings, tolerating a surrounding
// markdown code fence.
func parseChunkList(reply string) ([]string, error) {
	body := strings.TrimSpace(reply)
	if strings.HasPrefix(body, "```") {
		body = strings.TrimPrefix(body, "```json")
		body = strings.TrimPrefix(body, "```")
		body = strings.TrimSuffix(strings.TrimSpace(body), "```")
		body = strings.TrimSpace(body)
	}

	var raw interface{}
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("failed to decode LLM response as JSON: %w", err)
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("LLM response is not a valid JSON list")
	}

	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("LLM response item %d is not a string", i)
		}
		out = append(out, s)
	}
	return out, nil
}
