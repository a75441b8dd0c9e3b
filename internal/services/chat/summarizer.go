// File: internal/services/chat/summarizer.go
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/iyunix/go-meddy/internal/domain"
	"github.com/iyunix/go-meddy/internal/services/ai"
)

// Summarize condenses an answer before it is stored as conversation history.
func (s *Service) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", NewValidationError("summarize", "text cannot be empty")
	}

	messages := []domain.ChatMessage{
		domain.SystemMessage(summarySystemPrompt),
		domain.UserMessage(fmt.Sprintf(summaryUserPrompt, text)),
	}

	var summary string
	err := s.observe("openai", func() error {
		var err error
		summary, err = s.ai.ChatComplete(ctx, messages, ai.WithTemperature(s.config.SummaryTemperature, s.config.SummaryMaxTokens))
		return err
	})
	if err != nil {
		return "", NewRAGError("summarize", "failed to summarize answer", err)
	}
	s.logger.Debug("summarized text", "summary", summary)
	return summary, nil
}
