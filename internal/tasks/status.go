// File: internal/tasks/status.go
package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task status names exposed to API clients.
const (
	StatusPending = "PENDING"
	StatusStarted = "STARTED"
	StatusSuccess = "SUCCESS"
	StatusFailure = "FAILURE"
	StatusRetry   = "RETRY"
)

// Status is a point-in-time view of a task.
type Status struct {
	TaskID string          `json:"task_id"`
	Status string          `json:"status"`
	Result json.RawMessage `json:"task_result"`
	Error  string          `json:"error,omitempty"`
}

// Done reports whether the task left the pending/started states.
func (s *Status) Done() bool {
	return s.Status != StatusPending && s.Status != StatusStarted
}

// StatusFromState maps an asynq task state onto the API status names.
func StatusFromState(state asynq.TaskState) string {
	switch state {
	case asynq.TaskStateActive:
		return StatusStarted
	case asynq.TaskStateCompleted:
		return StatusSuccess
	case asynq.TaskStateRetry:
		return StatusRetry
	case asynq.TaskStateArchived:
		return StatusFailure
	default:
		return StatusPending
	}
}

func statusFromInfo(info *asynq.TaskInfo) *Status {
	s := &Status{
		TaskID: info.ID,
		Status: StatusFromState(info.State),
		Result: json.RawMessage("null"),
	}
	if info.State == asynq.TaskStateCompleted && len(info.Result) > 0 && json.Valid(info.Result) {
		s.Result = json.RawMessage(info.Result)
	}
	if info.State == asynq.TaskStateArchived || info.State == asynq.TaskStateRetry {
		s.Error = info.LastErr
	}
	return s
}
