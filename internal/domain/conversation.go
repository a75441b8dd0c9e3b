// File: internal/domain/conversation.go
package domain

import "time"

const (
	DefaultBotID  = "Meddy"
	DefaultUserID = "user_1"

	MaxConversationIDLength = 100
)

// ConversationMessage is one persisted turn of a conversation. Requests come
// from the user, completed rows hold the (summarised) assistant answer.
type ConversationMessage struct {
	ID             uint      `json:"id" gorm:"primarykey"`
	ConversationID string    `json:"conversation_id" gorm:"size:100;index;not null"`
	BotID          string    `json:"bot_id" gorm:"size:100;default:Meddy"`
	UserID         string    `json:"user_id" gorm:"size:100;default:user_1"`
	Message        string    `json:"message" gorm:"type:text"`
	IsRequest      bool      `json:"is_request"`
	IsCompleted    bool      `json:"is_completed"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (ConversationMessage) TableName() string {
	return "chat_conversations"
}

// Role maps the row onto a chat role.
func (m ConversationMessage) Role() string {
	if m.IsRequest {
		return RoleUser
	}
	return RoleAssistant
}
