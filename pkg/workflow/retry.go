package workflow

import (
	"context"
	"time"
)

// withRetry runs op up to attempts+1 times, sleeping backoff between
// tries. Each try gets its own timeout-bounded context. Cancellation of
// the parent context stops retrying immediately.
func withRetry(ctx context.Context, attempts int, backoff, timeout time.Duration, op func(context.Context) error) error {
	var err error
	for attempt := 0; attempt <= attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		err = op(callCtx)
		cancel()
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
	}
	return err
}
