// File: internal/services/vectorstore/retry.go
package vectorstore

import (
	"context"
	"time"

	"github.com/iyunix/go-meddy/internal/logging"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
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

// Only transport-level gRPC failures are worth another attempt.
func isRetryable(err error) bool {
	st, ok := status.FromError(err)
	if !ok {
		return true
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted, codes.Internal, codes.Unknown:
		return true
	default:
		return false
	}
}
