// File: internal/services/ai/openai_provider.go
package ai

import (
	"context"
	"strings"

	"github.com/iyunix/go-meddy/internal/domain"
	"github.com/iyunix/go-meddy/internal/logging"
	openai "github.com/sashabaranov/go-openai"
)

type OpenAIProvider struct {
	config *Config
	client *openai.Client
	retry  *RetryService
	logger logging.Logger
}

func NewOpenAIProvider(config *Config, logger logging.Logger) *OpenAIProvider {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
		retry:  NewRetryService(config, logger),
		logger: logging.OrNoOp(logger),
	}
}

// CreateEmbedding embeds text with newlines flattened to spaces.
func (p *OpenAIProvider) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, NewValidationError("embedding", "text cannot be empty")
	}

	req := openai.EmbeddingRequest{
		Input: []string{strings.ReplaceAll(text, "\n", " ")},
		Model: openai.EmbeddingModel(p.config.EmbeddingModel),
	}

	var embedding []float32
	err := p.retry.RetryWithTimeout(ctx, func(ctx context.Context) error {
		resp, err := p.client.CreateEmbeddings(ctx, req)
		if err != nil {
			return NewProviderError("embedding", "failed to create embedding", err)
		}
		if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
			return NewProviderError("embedding", "empty embedding response", nil)
		}
		embedding = resp.Data[0].Embedding
		return nil
	})
	if err != nil {
		return nil, err
	}
	return embedding, nil
}

func (p *OpenAIProvider) ChatComplete(ctx context.Context, messages []domain.ChatMessage, opts CompletionOptions) (string, error) {
	reply, err := p.complete(ctx, "completion", p.request(messages, opts))
	if err != nil {
		return "", err
	}
	if reply.Content == "" {
		return "", NewProviderError("completion", "empty completion response", nil)
	}
	return reply.Content, nil
}

func (p *OpenAIProvider) ChatWithTools(ctx context.Context, messages []domain.ChatMessage, tools []Tool, opts CompletionOptions) (domain.ChatMessage, error) {
	req := p.request(messages, opts)
	req.Tools = toOpenAITools(tools)
	return p.complete(ctx, "tools", req)
}

func (p *OpenAIProvider) ForcedFunctionCall(ctx context.Context, messages []domain.ChatMessage, fn Tool) (domain.ToolCall, error) {
	req := p.request(messages, CompletionOptions{})
	req.Tools = toOpenAITools([]Tool{fn})
	req.ToolChoice = openai.ToolChoice{
		Type:     openai.ToolTypeFunction,
		Function: openai.ToolFunction{Name: fn.Name},
	}

	reply, err := p.complete(ctx, "function_call", req)
	if err != nil {
		return domain.ToolCall{}, err
	}
	for _, call := range reply.ToolCalls {
		if call.Name == fn.Name {
			return call, nil
		}
	}
	return domain.ToolCall{}, NewProviderError("function_call", "model did not call "+fn.Name, nil)
}

// HealthCheck lists models, which needs a valid key but no tokens.
func (p *OpenAIProvider) HealthCheck(ctx context.Context) error {
	if _, err := p.client.ListModels(ctx); err != nil {
		return NewProviderError("health", "list models failed", err)
	}
	return nil
}

func (p *OpenAIProvider) request(messages []domain.ChatMessage, opts CompletionOptions) openai.ChatCompletionRequest {
	temperature := p.config.Temperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}
	maxTokens := p.config.MaxTokens
	if opts.MaxTokens > 0 {
		maxTokens = opts.MaxTokens
	}

	return openai.ChatCompletionRequest{
		Model:       p.config.ChatModel,
		Messages:    toOpenAIMessages(messages),
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
}

func (p *OpenAIProvider) complete(ctx context.Context, operation string, req openai.ChatCompletionRequest) (domain.ChatMessage, error) {
	if len(req.Messages) == 0 {
		return domain.ChatMessage{}, NewValidationError(operation, "messages cannot be empty")
	}

	var reply domain.ChatMessage
	err := p.retry.RetryWithTimeout(ctx, func(ctx context.Context) error {
		resp, err := p.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return NewProviderError(operation, "failed to create completion", err)
		}
		if len(resp.Choices) == 0 {
			return NewProviderError(operation, "empty completion response", nil)
		}
		reply = fromOpenAIMessage(resp.Choices[0].Message)
		return nil
	})
	if err != nil {
		return domain.ChatMessage{}, err
	}

	p.logger.Debug("completion finished", "operation", operation, "tool_calls", len(reply.ToolCalls))
	return reply, nil
}

func toOpenAIMessages(messages []domain.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		msg := openai.ChatCompletionMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		if m.Role == domain.RoleFunction {
			msg.Name = m.Name
		}
		for _, call := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
				ID:   call.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      call.Name,
					Arguments: call.Arguments,
				},
			})
		}
		out = append(out, msg)
	}
	return out
}

func fromOpenAIMessage(m openai.ChatCompletionMessage) domain.ChatMessage {
	msg := domain.ChatMessage{Role: m.Role, Content: m.Content}
	if msg.Role == "" {
		msg.Role = domain.RoleAssistant
	}
	for _, call := range m.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, domain.ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}
	return msg
}

func toOpenAITools(tools []Tool) []openai.Tool {
	out := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}
