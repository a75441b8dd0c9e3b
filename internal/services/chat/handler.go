// File: internal/services/chat/handler.go
package chat

import (
	"context"
	"strings"

	"github.com/iyunix/go-meddy/internal/domain"
)

// HandleMessage stores the user's message, answers it with the conversation
// so far, and stores a summary of the answer. Any failure yields the apology
// message instead of an error.
func (s *Service) HandleMessage(ctx context.Context, botID, userID, query string) domain.ChatMessage {
	s.logger.Info("message handler started", "bot_id", botID, "user_id", userID)

	answer, err := s.handle(ctx, botID, userID, query)
	if err != nil {
		s.logger.Error("message handler failed", "bot_id", botID, "user_id", userID, "error", err)
		return domain.AssistantMessage(ApologyMessage)
	}

	s.logger.Info("message handler completed", "bot_id", botID, "user_id", userID)
	return domain.AssistantMessage(answer)
}

func (s *Service) handle(ctx context.Context, botID, userID, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", NewValidationError("handle_message", "query cannot be empty")
	}
	if s.history == nil {
		return "", NewConfigError("history service is not configured", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	conversationID, err := s.history.UpdateConversation(ctx, botID, userID, query, true)
	if err != nil {
		return "", err
	}

	messages, err := s.history.MessagesFromConversation(ctx, conversationID)
	if err != nil {
		return "", err
	}
	s.logger.Info("conversation loaded", "conversation_id", conversationID, "messages", len(messages))

	// The last row is the request just stored.
	history := messages[:len(messages)-1]

	answer, err := s.Answer(ctx, history, query)
	if err != nil {
		return "", err
	}

	summary, err := s.Summarize(ctx, answer)
	if err != nil {
		return "", err
	}
	if _, err := s.history.UpdateConversation(ctx, botID, userID, summary, false); err != nil {
		return "", err
	}
	return answer, nil
}
