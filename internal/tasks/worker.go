// File: internal/tasks/worker.go
package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/iyunix/go-meddy/internal/domain"
	"github.com/iyunix/go-meddy/internal/logging"
)

// MessageHandler answers a chat message. *chat.Service satisfies it.
type MessageHandler interface {
	HandleMessage(ctx context.Context, botID, userID, query string) domain.ChatMessage
}

// DocumentIndexer indexes a stored document. *indexing.Indexer satisfies it.
type DocumentIndexer interface {
	IndexDocument(ctx context.Context, docID uint, title, content string) (int, error)
}

// Recorder receives task outcomes. *metrics.Recorder satisfies it.
type Recorder interface {
	ObserveTask(taskType string, err error)
}

// Handlers holds the worker-side task handlers.
type Handlers struct {
	chat    MessageHandler
	indexer DocumentIndexer
	logger  logging.Logger
}

func NewHandlers(chat MessageHandler, indexer DocumentIndexer, logger logging.Logger) *Handlers {
	return &Handlers{chat: chat, indexer: indexer, logger: logging.OrNoOp(logger)}
}

func (h *Handlers) HandleChatMessage(ctx context.Context, t *asynq.Task) error {
	var p ChatMessagePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}

	reply := h.chat.HandleMessage(ctx, p.BotID, p.UserID, p.UserMessage)
	return writeResult(t, reply)
}

func (h *Handlers) HandleDocumentIndex(ctx context.Context, t *asynq.Task) error {
	var p DocumentIndexPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}

	n, err := h.indexer.IndexDocument(ctx, p.DocumentID, p.Title, p.Content)
	if err != nil {
		return err
	}
	return writeResult(t, IndexResult{DocumentID: p.DocumentID, Chunks: n})
}

// writeResult stores v as the task result. Tasks built outside a worker have
// no result writer.
func writeResult(t *asynq.Task, v interface{}) error {
	w := t.ResultWriter()
	if w == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s result: %w", t.Type(), err)
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("write %s result: %w", t.Type(), err)
	}
	return nil
}

// NewServeMux routes task types to handlers behind a logging and metrics
// middleware.
func NewServeMux(h *Handlers, metrics Recorder, logger logging.Logger) *asynq.ServeMux {
	logger = logging.OrNoOp(logger)
	mux := asynq.NewServeMux()
	mux.Use(observe(metrics, logger))
	mux.HandleFunc(TypeChatMessage, h.HandleChatMessage)
	mux.HandleFunc(TypeDocumentIndex, h.HandleDocumentIndex)
	return mux
}

func observe(metrics Recorder, logger logging.Logger) asynq.MiddlewareFunc {
	return func(next asynq.Handler) asynq.Handler {
		return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
			start := time.Now()
			taskID, _ := asynq.GetTaskID(ctx)
			logger.Info("task started", "task_id", taskID, "type", t.Type())

			err := next.ProcessTask(ctx, t)

			if metrics != nil {
				metrics.ObserveTask(t.Type(), err)
			}
			if err != nil {
				logger.Error("task failed", "task_id", taskID, "type", t.Type(), "error", err, "duration", time.Since(start))
				return err
			}
			logger.Info("task completed", "task_id", taskID, "type", t.Type(), "duration", time.Since(start))
			return nil
		})
	}
}

// NewServer builds the asynq worker server for the configured queue.
func NewServer(config *Config, logger logging.Logger) *asynq.Server {
	logger = logging.OrNoOp(logger)
	return asynq.NewServer(config.RedisOpt(), asynq.Config{
		Concurrency: config.Concurrency,
		Queues:      map[string]int{config.Queue: 1},
		Logger:      logging.TaskQueueLogger{Logger: logger},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, t *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			logger.Warn("task attempt failed", "type", t.Type(), "retried", retried, "max_retry", maxRetry, "error", err)
		}),
	})
}
