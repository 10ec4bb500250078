package listener

import (
	"context"
	"math/rand"
	"time"
)

// backoffDelay computes the exponential delay for a zero-based attempt,
// bounded by cap, with half-interval jitter.
func backoffDelay(attempt int, base, cap time.Duration) time.Duration {
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	delay := base
	for i := 0; i < attempt; i++ {
		delay *= 2
		if cap > 0 && delay >= cap {
			delay = cap
			break
		}
	}
	if cap > 0 && delay > cap {
		delay = cap
	}
	half := delay / 2
	if half > 0 {
		delay = half + time.Duration(rand.Int63n(int64(half)))
	}
	return delay
}

// sleepBackoff sleeps the backoff delay for attempt, returning early with
// the context error if cancelled.
func sleepBackoff(ctx context.Context, attempt int, base, cap time.Duration) error {
	timer := time.NewTimer(backoffDelay(attempt, base, cap))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// sleep waits for d, returning early with the context error if cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
