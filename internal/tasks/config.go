// File: internal/tasks/config.go
package tasks

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Queue       string
	Concurrency int

	// How long completed results stay readable.
	Retention time.Duration

	// Status polling used by the HTTP API.
	PollTimeout  time.Duration
	PollInterval time.Duration

	IndexMaxRetry int
}

func (c *Config) Validate() error {
	if c.RedisAddr == "" {
		return fmt.Errorf("redis_addr is required")
	}
	if c.Queue == "" {
		return fmt.Errorf("queue is required")
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive")
	}
	if c.Retention <= 0 {
		return fmt.Errorf("retention must be positive")
	}
	if c.PollInterval <= 0 || c.PollTimeout < c.PollInterval {
		return fmt.Errorf("poll interval must be positive and not exceed poll timeout")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		RedisAddr:     "localhost:6379",
		Queue:         "default",
		Concurrency:   2,
		Retention:     time.Hour,
		PollTimeout:   60 * time.Second,
		PollInterval:  500 * time.Millisecond,
		IndexMaxRetry: 3,
	}
}

// RedisOpt is the asynq connection option for this config.
func (c *Config) RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}
