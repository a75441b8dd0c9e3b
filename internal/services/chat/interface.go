// File: internal/services/chat/interface.go
package chat

import (
	"context"
	"time"

	"github.com/iyunix/go-meddy/internal/domain"
	"github.com/iyunix/go-meddy/internal/services/vectorstore"
)

// Route is the intent label deciding which answering path runs.
type Route string

const (
	RouteMedical Route = "medical"
	RouteGeneral Route = "general"
)

// Retriever is the read side of the vector store.
type Retriever interface {
	Search(ctx context.Context, vector []float32, topK int) ([]vectorstore.SearchResult, error)
}

// Recorder receives pipeline observations. *metrics.Recorder satisfies it.
type Recorder interface {
	ObserveRoute(route string)
	ObserveWebFallback(reason string)
	ObserveExternal(dependency string, d time.Duration, err error)
}

// MessageHandler answers one user message end to end. It always produces an
// assistant message, falling back to ApologyMessage on failure.
type MessageHandler interface {
	HandleMessage(ctx context.Context, botID, userID, query string) domain.ChatMessage
}

// Answerer produces an answer for a question given prior turns.
type Answerer interface {
	Answer(ctx context.Context, history []domain.ChatMessage, question string) (string, error)
}

type noopRecorder struct{}

func (noopRecorder) ObserveRoute(string) {}
func (noopRecorder) ObserveWebFallback(string) {}
func (noopRecorder) ObserveExternal(string, time.Duration, error) {}
