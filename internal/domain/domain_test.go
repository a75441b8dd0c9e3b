package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversationMessageRole(t *testing.T) {
	assert.Equal(t, RoleUser, ConversationMessage{IsRequest: true}.Role())
	assert.Equal(t, RoleAssistant, ConversationMessage{IsRequest: false}.Role())
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "chat_conversations", ConversationMessage{}.TableName())
	assert.Equal(t, "documents", Document{}.TableName())
}
