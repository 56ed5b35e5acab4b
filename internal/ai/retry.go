package ai

import (
	"context"
	"errors"
	"time"

	"go-leximed/internal/logger"

	"github.com/sirupsen/logrus"
)

type retryClient struct {
	next       Client
	maxRetries int
	backoff    time.Duration
}

// WithRetry retries transient failures up to maxRetries extra times with linear backoff.
// Blocked responses and context cancellation are not retried.
func WithRetry(c Client, maxRetries int, backoff time.Duration) Client {
	if c == nil || maxRetries <= 0 {
		return c
	}
	return &retryClient{next: c, maxRetries: maxRetries, backoff: backoff}
}

func (r *retryClient) Generate(ctx context.Context, prompt string, attachments ...Attachment) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(attempt) * r.backoff
			logger.WithContext(ctx).WithFields(logrus.Fields{
				"attempt": attempt + 1,
				"wait_ms": wait.Milliseconds(),
			}).WithError(lastErr).Warn("Retrying model call")

			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return "", ctx.Err()
			case <-timer.C:
			}
		}

		text, err := r.next.Generate(ctx, prompt, attachments...)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable(ctx, err) {
			return "", err
		}
	}
	return "", lastErr
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	return !errors.Is(err, ErrBlocked) &&
		!errors.Is(err, ErrNotConfigured) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}
