// File: internal/services/ai/retry.go
package ai

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/iyunix/go-meddy/internal/logging"
	openai "github.com/sashabaranov/go-openai"
)

type RetryService struct {
	config *Config
	logger logging.Logger
}

func NewRetryService(config *Config, logger logging.Logger) *RetryService {
	return &RetryService{
		config: config,
		logger: logging.OrNoOp(logger),
	}
}

// RetryWithTimeout runs call until it succeeds, the retry budget runs out, the
// error is not retryable, or the overall timeout elapses.
func (r *RetryService) RetryWithTimeout(parent context.Context, call func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, r.config.Timeout)
	defer cancel()

	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if attempt > 0 {
			r.logger.Debug("retrying operation", "attempt", attempt, "max_retries", r.config.MaxRetries)
			select {
			case <-ctx.Done():
				return NewTimeoutError("operation timed out during retry", ctx.Err())
			case <-time.After(r.config.RetryDelay):
			}
		}

		err := call(ctx)
		if err == nil {
			if attempt > 0 {
				r.logger.Info("operation succeeded after retry", "attempts", attempt+1)
			}
			return nil
		}

		lastErr = err

		if ctx.Err() != nil {
			return NewTimeoutError("operation timed out", ctx.Err())
		}
		if !isRetryable(err) {
			return err
		}

		if attempt < r.config.MaxRetries {
			r.logger.Warn("operation failed, retrying", "attempt", attempt+1, "error", err)
		}
	}

	r.logger.Error("operation failed after all retries", "attempts", r.config.MaxRetries+1, "error", lastErr)
	return NewRetryError("operation failed after all retries", lastErr)
}

// Client errors other than 408/429 will fail the same way on every attempt.
func isRetryable(err error) bool {
	var aiErr *AIError
	if errors.As(err, &aiErr) && aiErr.Type == ErrTypeValidation {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	return true
}

func retryableStatus(code int) bool {
	if code == http.StatusRequestTimeout || code == http.StatusTooManyRequests {
		return true
	}
	return code == 0 || code >= 500
}
