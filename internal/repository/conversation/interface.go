// File: internal/repository/conversation/interface.go
package conversation

import (
	"context"

	"github.com/iyunix/go-meddy/internal/domain"
)

// ConversationRepository stores conversation turns.
type ConversationRepository interface {
	Append(ctx context.Context, msg *domain.ConversationMessage) (*domain.ConversationMessage, error)
	FindByConversationID(ctx context.Context, conversationID string) ([]domain.ConversationMessage, error)
	CountByConversationID(ctx context.Context, conversationID string) (int64, error)
}
