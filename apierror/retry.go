package apierror

import (
	"context"
	"time"
)

// WithRetry re-invokes op up to maxRetries additional times with exponential
// backoff (baseDelay doubled per retry). Failures that are HTTP 4xx other
// than 429 are not retried. The last error is returned on exhaustion.
func WithRetry(ctx context.Context, op func() error, maxRetries int, baseDelay time.Duration) error {
	var last error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := baseDelay << (attempt - 1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		last = op()
		if last == nil {
			return nil
		}
		if !Retryable(last) {
			return last
		}
	}
	return last
}
