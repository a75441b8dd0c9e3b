// File: internal/tasks/client.go
package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/iyunix/go-meddy/internal/logging"
)

// Enqueuer schedules background work and returns the task id.
type Enqueuer interface {
	EnqueueChatMessage(ctx context.Context, p ChatMessagePayload) (string, error)
	EnqueueDocumentIndex(ctx context.Context, p DocumentIndexPayload) (string, error)
}

// StatusReader reports task progress.
type StatusReader interface {
	Status(ctx context.Context, taskID string) (*Status, error)
	Wait(ctx context.Context, taskID string) (*Status, bool, error)
}

type taskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type taskInspector interface {
	GetTaskInfo(queue, id string) (*asynq.TaskInfo, error)
}

// Client enqueues tasks and reads their state back from Redis.
type Client struct {
	config    *Config
	enqueuer  taskEnqueuer
	inspector taskInspector
	logger    logging.Logger
	closers   []func() error
}

var (
	_ Enqueuer     = (*Client)(nil)
	_ StatusReader = (*Client)(nil)
)

func NewClient(config *Config, logger logging.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid task configuration: %w", err)
	}
	client := asynq.NewClient(config.RedisOpt())
	inspector := asynq.NewInspector(config.RedisOpt())

	c := newClient(config, client, inspector, logger)
	c.closers = []func() error{client.Close, inspector.Close}
	return c, nil
}

func newClient(config *Config, enqueuer taskEnqueuer, inspector taskInspector, logger logging.Logger) *Client {
	return &Client{
		config:    config,
		enqueuer:  enqueuer,
		inspector: inspector,
		logger:    logging.OrNoOp(logger),
	}
}

func (c *Client) EnqueueChatMessage(ctx context.Context, p ChatMessagePayload) (string, error) {
	// The handler never fails, so a retry would only repeat the apology.
	task, err := NewChatMessageTask(p, asynq.MaxRetry(0))
	if err != nil {
		return "", err
	}
	return c.enqueue(ctx, task)
}

func (c *Client) EnqueueDocumentIndex(ctx context.Context, p DocumentIndexPayload) (string, error) {
	task, err := NewDocumentIndexTask(p, asynq.MaxRetry(c.config.IndexMaxRetry))
	if err != nil {
		return "", err
	}
	return c.enqueue(ctx, task)
}

func (c *Client) enqueue(ctx context.Context, task *asynq.Task) (string, error) {
	info, err := c.enqueuer.EnqueueContext(ctx, task,
		asynq.TaskID(uuid.NewString()),
		asynq.Queue(c.config.Queue),
		asynq.Retention(c.config.Retention),
	)
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}
	c.logger.Info("task enqueued", "task_id", info.ID, "type", task.Type(), "queue", info.Queue)
	return info.ID, nil
}

// Status returns the current state of a task. Unknown ids read as PENDING.
func (c *Client) Status(_ context.Context, taskID string) (*Status, error) {
	info, err := c.inspector.GetTaskInfo(c.config.Queue, taskID)
	if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
		return &Status{TaskID: taskID, Status: StatusPending, Result: []byte("null")}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("inspect task %s: %w", taskID, err)
	}
	return statusFromInfo(info), nil
}

// Wait polls the task until it finishes or the poll timeout passes. The bool
// reports a timeout.
func (c *Client) Wait(ctx context.Context, taskID string) (*Status, bool, error) {
	deadline := time.Now().Add(c.config.PollTimeout)
	ticker := time.NewTicker(c.config.PollInterval)
	defer ticker.Stop()

	for {
		status, err := c.Status(ctx, taskID)
		if err != nil {
			return nil, false, err
		}
		if status.Done() {
			return status, false, nil
		}
		if time.Now().After(deadline) {
			return status, true, nil
		}

		select {
		case <-ctx.Done():
			return status, false, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) Close() error {
	var errs []error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
