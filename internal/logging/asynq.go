package logging

import (
	"fmt"
	"os"
)

// TaskQueueLogger satisfies the asynq.Logger interface on top of Logger.
type TaskQueueLogger struct {
	Logger Logger
}

func (t TaskQueueLogger) Debug(args ...interface{}) {
	t.Logger.Debug(fmt.Sprint(args...), "component", "asynq")
}

func (t TaskQueueLogger) Info(args ...interface{}) {
	t.Logger.Info(fmt.Sprint(args...), "component", "asynq")
}

func (t TaskQueueLogger) Warn(args ...interface{}) {
	t.Logger.Warn(fmt.Sprint(args...), "component", "asynq")
}

func (t TaskQueueLogger) Error(args ...interface{}) {
	t.Logger.Error(fmt.Sprint(args...), "component", "asynq")
}

func (t TaskQueueLogger) Fatal(args ...interface{}) {
	t.Logger.Error(fmt.Sprint(args...), "component", "asynq", "fatal", true)
	os.Exit(1)
}
