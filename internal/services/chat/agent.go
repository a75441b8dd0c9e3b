// File: internal/services/chat/agent.go
package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/iyunix/go-meddy/internal/domain"
	"github.com/iyunix/go-meddy/internal/logging"
	"github.com/iyunix/go-meddy/internal/services/ai"
)

// Agent answers general questions with a bounded tool-calling loop.
type Agent struct {
	llm       ai.CompletionProvider
	tools     map[string]AgentTool
	defs      []ai.Tool
	maxRounds int
	logger    logging.Logger
}

func NewAgent(llm ai.CompletionProvider, tools []AgentTool, maxRounds int, logger logging.Logger) *Agent {
	a := &Agent{
		llm:       llm,
		tools:     make(map[string]AgentTool, len(tools)),
		maxRounds: maxRounds,
		logger:    logging.OrNoOp(logger),
	}
	for _, t := range tools {
		a.tools[t.Definition.Name] = t
		a.defs = append(a.defs, t.Definition)
	}
	return a
}

// Run lets the model call tools for up to maxRounds rounds. Tool failures are
// reported back to the model as the tool result. If the model is still
// calling tools after the last round it is asked to answer without them.
func (a *Agent) Run(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", NewValidationError("agent", "question cannot be empty")
	}

	messages := []domain.ChatMessage{
		domain.SystemMessage(agentSystemPrompt),
		domain.UserMessage(question),
	}

	for round := 0; round < a.maxRounds; round++ {
		reply, err := a.llm.ChatWithTools(ctx, messages, a.defs, ai.CompletionOptions{})
		if err != nil {
			return "", NewAgentError("run", "tool-calling completion failed", err)
		}

		if len(reply.ToolCalls) == 0 {
			if strings.TrimSpace(reply.Content) == "" {
				return "", NewAgentError("run", "agent returned an empty answer", nil)
			}
			a.logger.Info("agent answered", "rounds", round+1)
			return reply.Content, nil
		}

		reply.Role = domain.RoleAssistant
		messages = append(messages, reply)
		for _, call := range reply.ToolCalls {
			messages = append(messages, domain.ToolResultMessage(call.ID, call.Name, a.invoke(ctx, call)))
		}
	}

	a.logger.Warn("agent hit tool round limit", "max_rounds", a.maxRounds)
	answer, err := a.llm.ChatComplete(ctx, messages, ai.CompletionOptions{})
	if err != nil {
		return "", NewAgentError("run", "final completion failed", err)
	}
	return answer, nil
}

func (a *Agent) invoke(ctx context.Context, call domain.ToolCall) string {
	tool, ok := a.tools[call.Name]
	if !ok {
		a.logger.Warn("agent requested unknown tool", "tool", call.Name)
		return "Error: unknown tool " + call.Name
	}
	out, err := tool.Run(ctx, call.Arguments)
	if err != nil {
		a.logger.Debug("tool call failed", "tool", call.Name, "error", err)
		return "Error: " + toolErrorText(err)
	}
	a.logger.Debug("tool call succeeded", "tool", call.Name)
	return out
}

// toolErrorText is the error wording the model sees in a tool result.
func toolErrorText(err error) string {
	if errors.Is(err, errDivideByZero) {
		return "Cannot divide by zero"
	}
	return err.Error()
}
