// File: internal/repository/conversation/conversation_repository.go
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iyunix/go-meddy/internal/domain"
	"github.com/iyunix/go-meddy/internal/logging"
	"gorm.io/gorm"
)

var ErrConversationNotFound = errors.New("conversation not found")

type gormConversationRepository struct {
	db     *gorm.DB
	logger logging.Logger
}

func NewConversationRepository(db *gorm.DB, logger logging.Logger) ConversationRepository {
	return &gormConversationRepository{db: db, logger: logging.OrNoOp(logger)}
}

// Append validates and stores a single turn. Missing bot/user ids take the
// column defaults.
func (r *gormConversationRepository) Append(ctx context.Context, msg *domain.ConversationMessage) (*domain.ConversationMessage, error) {
	if err := r.validateMessageInput(msg); err != nil {
		r.logger.Warn("[ConversationRepository] Validation failed", "error", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if msg.BotID == "" {
		msg.BotID = domain.DefaultBotID
	}
	if msg.UserID == "" {
		msg.UserID = domain.DefaultUserID
	}

	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		// message bodies are medical content, keep them out of logs
		r.logger.Error("[ConversationRepository] Database error during append",
			"conversation_id", msg.ConversationID, "error", err)
		return nil, fmt.Errorf("database error appending message: %w", err)
	}

	r.logger.Debug("[ConversationRepository] Message appended",
		"id", msg.ID, "conversation_id", msg.ConversationID, "is_request", msg.IsRequest)
	return msg, nil
}

// FindByConversationID returns every turn in insertion order.
func (r *gormConversationRepository) FindByConversationID(ctx context.Context, conversationID string) ([]domain.ConversationMessage, error) {
	if err := validateConversationID(conversationID); err != nil {
		return nil, err
	}

	var messages []domain.ConversationMessage
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at asc, id asc").
		Find(&messages).Error
	if err != nil {
		r.logger.Error("[ConversationRepository] Database error fetching messages",
			"conversation_id", conversationID, "error", err)
		return nil, fmt.Errorf("database error fetching messages: %w", err)
	}
	if len(messages) == 0 {
		return nil, ErrConversationNotFound
	}
	return messages, nil
}

func (r *gormConversationRepository) CountByConversationID(ctx context.Context, conversationID string) (int64, error) {
	if err := validateConversationID(conversationID); err != nil {
		return 0, err
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.ConversationMessage{}).
		Where("conversation_id = ?", conversationID).
		Count(&count).Error
	if err != nil {
		r.logger.Error("[ConversationRepository] Database error counting messages",
			"conversation_id", conversationID, "error", err)
		return 0, fmt.Errorf("database error counting messages: %w", err)
	}
	return count, nil
}

// ===== VALIDATION HELPERS =====

func (r *gormConversationRepository) validateMessageInput(msg *domain.ConversationMessage) error {
	if msg == nil {
		return errors.New("message cannot be nil")
	}
	if err := validateConversationID(msg.ConversationID); err != nil {
		return err
	}
	if len(msg.BotID) > domain.MaxConversationIDLength || len(msg.UserID) > domain.MaxConversationIDLength {
		return errors.New("bot_id and user_id must be at most 100 characters")
	}
	if strings.TrimSpace(msg.Message) == "" {
		return errors.New("message content cannot be empty")
	}
	return nil
}

func validateConversationID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("invalid conversation ID")
	}
	if len(id) > domain.MaxConversationIDLength {
		return fmt.Errorf("conversation ID too long: max %d characters", domain.MaxConversationIDLength)
	}
	return nil
}
