package listener

import (
	"context"
	"testing"
	"time"
)

func TestBackoffDelayGrowsAndStaysJittered(t *testing.T) {
	base := 100 * time.Millisecond
	cap := 10 * time.Second

	for attempt := 0; attempt < 5; attempt++ {
		nominal := base << uint(attempt)
		for i := 0; i < 20; i++ {
			delay := backoffDelay(attempt, base, cap)
			if delay < nominal/2 || delay > nominal {
				t.Fatalf("attempt %d: delay %v outside [%v, %v]", attempt, delay, nominal/2, nominal)
			}
		}
	}
}

func TestBackoffDelayCapped(t *testing.T) {
	base := 1 * time.Second
	cap := 2 * time.Second

	for i := 0; i < 20; i++ {
		delay := backoffDelay(10, base, cap)
		if delay > cap {
			t.Fatalf("delay %v above cap %v", delay, cap)
		}
	}
}

func TestSleepBackoffCancellable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if err := sleepBackoff(ctx, 8, time.Second, time.Minute); err == nil {
		t.Fatalf("expected context error")
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("cancelled backoff slept %v", elapsed)
	}
}

func TestSleepCancellable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := sleep(ctx, time.Minute); err == nil {
		t.Fatalf("expected context error")
	}
}
