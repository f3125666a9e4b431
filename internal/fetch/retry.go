package fetch

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/caslex/caslex/internal/errclass"
)

const MaxRetries = 3

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int63n(int64(base) / 2))
	return base + jitter
}

// waitBeforeRetry sleeps out the delay appropriate to the previous
// failure. A rate limit dictates its own wait; everything else gets
// exponential backoff.
func waitBeforeRetry(ctx context.Context, lastErr error, attempt int) error {
	delay := Backoff(attempt)
	var ce *errclass.Error
	if errors.As(lastErr, &ce) && ce.Kind == errclass.RateLimited {
		delay = time.Duration(ce.RetryAfterSeconds) * time.Second
	}

	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
