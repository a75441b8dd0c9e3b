// Package fake provides a scripted ai.Service for tests.
package fake

import (
	"context"
	"errors"
	"sync"

	"github.com/iyunix/go-meddy/internal/domain"
	"github.com/iyunix/go-meddy/internal/services/ai"
)

// ErrNoResponse is returned when the script runs dry.
var ErrNoResponse = errors.New("fake: no scripted response left")

// Call records one request made to the fake.
type Call struct {
	Kind     string // embedding, complete, tools, function_call
	Messages []domain.ChatMessage
	Options  ai.CompletionOptions
	Tools    []ai.Tool
	Text     string
}

// Provider replays queued replies in order.
type Provider struct {
	mu sync.Mutex

	Completions []string
	ToolReplies []domain.ChatMessage
	FuncCalls   []domain.ToolCall
	Embedding   []float32

	CompleteErr  error
	EmbeddingErr error

	Calls []Call
}

var _ ai.Service = (*Provider)(nil)

func (p *Provider) CreateEmbedding(_ context.Context, text string) ([]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = append(p.Calls, Call{Kind: "embedding", Text: text})
	if p.EmbeddingErr != nil {
		return nil, p.EmbeddingErr
	}
	if p.Embedding == nil {
		return []float32{0.1, 0.2, 0.3}, nil
	}
	return p.Embedding, nil
}

func (p *Provider) ChatComplete(_ context.Context, messages []domain.ChatMessage, opts ai.CompletionOptions) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = append(p.Calls, Call{Kind: "complete", Messages: copyMessages(messages), Options: opts})
	if p.CompleteErr != nil {
		return "", p.CompleteErr
	}
	if len(p.Completions) == 0 {
		return "", ErrNoResponse
	}
	out := p.Completions[0]
	p.Completions = p.Completions[1:]
	return out, nil
}

func (p *Provider) ChatWithTools(_ context.Context, messages []domain.ChatMessage, tools []ai.Tool, opts ai.CompletionOptions) (domain.ChatMessage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = append(p.Calls, Call{Kind: "tools", Messages: copyMessages(messages), Options: opts, Tools: tools})
	if len(p.ToolReplies) == 0 {
		return domain.ChatMessage{}, ErrNoResponse
	}
	out := p.ToolReplies[0]
	p.ToolReplies = p.ToolReplies[1:]
	return out, nil
}

func (p *Provider) ForcedFunctionCall(_ context.Context, messages []domain.ChatMessage, fn ai.Tool) (domain.ToolCall, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = append(p.Calls, Call{Kind: "function_call", Messages: copyMessages(messages), Tools: []ai.Tool{fn}})
	if len(p.FuncCalls) == 0 {
		return domain.ToolCall{}, ErrNoResponse
	}
	out := p.FuncCalls[0]
	p.FuncCalls = p.FuncCalls[1:]
	return out, nil
}

func (p *Provider) HealthCheck(context.Context) error { return nil }

// CallsOf returns the recorded calls of one kind.
func (p *Provider) CallsOf(kind string) []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Call
	for _, c := range p.Calls {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

func copyMessages(in []domain.ChatMessage) []domain.ChatMessage {
	out := make([]domain.ChatMessage, len(in))
	copy(out, in)
	return out
}
