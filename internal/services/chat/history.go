// File: internal/services/chat/history.go
package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/iyunix/go-meddy/internal/cache"
	"github.com/iyunix/go-meddy/internal/domain"
	"github.com/iyunix/go-meddy/internal/logging"
	"github.com/iyunix/go-meddy/internal/repository/conversation"
)

// HistoryService ties the session cache to the persisted conversation rows.
type HistoryService struct {
	sessions cache.SessionStore
	repo     conversation.ConversationRepository
	logger   logging.Logger
}

func NewHistoryService(sessions cache.SessionStore, repo conversation.ConversationRepository, logger logging.Logger) *HistoryService {
	return &HistoryService{
		sessions: sessions,
		repo:     repo,
		logger:   logging.OrNoOp(logger),
	}
}

// UpdateConversation appends a turn to the active conversation of (bot, user),
// starting a new one when the session expired, and returns its id.
func (h *HistoryService) UpdateConversation(ctx context.Context, botID, userID, message string, isRequest bool) (string, error) {
	conversationID, err := h.sessions.GetConversationID(ctx, botID, userID)
	if err != nil {
		return "", NewHistoryError("update_conversation", "failed to resolve conversation id", err)
	}

	_, err = h.repo.Append(ctx, &domain.ConversationMessage{
		ConversationID: conversationID,
		BotID:          botID,
		UserID:         userID,
		Message:        message,
		IsRequest:      isRequest,
		IsCompleted:    !isRequest,
	})
	if err != nil {
		return "", NewHistoryError("update_conversation", "failed to store message", err)
	}

	h.logger.Debug("conversation updated",
		"conversation_id", conversationID,
		"bot_id", botID,
		"user_id", userID,
		"is_request", isRequest)
	return conversationID, nil
}

// MessagesFromConversation rebuilds the message chain of a conversation: the
// system prompt followed by every stored turn, oldest first.
func (h *HistoryService) MessagesFromConversation(ctx context.Context, conversationID string) ([]domain.ChatMessage, error) {
	messages := []domain.ChatMessage{domain.SystemMessage(SystemPrompt)}

	turns, err := h.repo.CountByConversationID(ctx, conversationID)
	if err != nil {
		return nil, NewHistoryError("messages_from_conversation", "failed to count conversation", err)
	}
	if turns == 0 {
		return messages, nil
	}

	rows, err := h.repo.FindByConversationID(ctx, conversationID)
	if errors.Is(err, conversation.ErrConversationNotFound) {
		return messages, nil
	}
	if err != nil {
		return nil, NewHistoryError("messages_from_conversation", "failed to load conversation", err)
	}

	for _, row := range rows {
		messages = append(messages, domain.ChatMessage{Role: row.Role(), Content: row.Message})
	}
	h.logger.Debug("conversation loaded", "conversation_id", conversationID, "turns", turns)
	return messages, nil
}

// ConversationText renders user and assistant turns as "role: content" lines.
func ConversationText(history []domain.ChatMessage) string {
	var b strings.Builder
	for _, m := range history {
		if m.Role != domain.RoleUser && m.Role != domain.RoleAssistant {
			continue
		}
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	return b.String()
}
