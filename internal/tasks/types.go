// File: internal/tasks/types.go
package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	TypeChatMessage   = "chat:message"
	TypeDocumentIndex = "document:index"
)

// ChatMessagePayload asks the worker to answer one user message.
type ChatMessagePayload struct {
	BotID       string `json:"bot_id"`
	UserID      string `json:"user_id"`
	UserMessage string `json:"user_message"`
}

// DocumentIndexPayload asks the worker to chunk and index a stored document.
type DocumentIndexPayload struct {
	DocumentID uint   `json:"document_id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
}

// IndexResult is written back when indexing completes.
type IndexResult struct {
	DocumentID uint `json:"document_id"`
	Chunks     int  `json:"chunks"`
}

func NewChatMessageTask(p ChatMessagePayload, opts ...asynq.Option) (*asynq.Task, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", TypeChatMessage, err)
	}
	return asynq.NewTask(TypeChatMessage, b, opts...), nil
}

func NewDocumentIndexTask(p DocumentIndexPayload, opts ...asynq.Option) (*asynq.Task, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", TypeDocumentIndex, err)
	}
	return asynq.NewTask(TypeDocumentIndex, b, opts...), nil
}
