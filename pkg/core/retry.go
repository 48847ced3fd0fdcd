package core

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Sleeper abstracts delay waiting for deterministic tests.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// FuncSleeper wraps a function to satisfy Sleeper.
type FuncSleeper func(ctx context.Context, d time.Duration) error

// Sleep implements the Sleeper interface.
func (f FuncSleeper) Sleep(ctx context.Context, d time.Duration) error { return f(ctx, d) }

// BackoffStrategy holds retry parameters.
type BackoffStrategy struct {
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	MaxAttempts int
	Jitter      float64
	Sleeper     Sleeper
	Rand        func() float64
}

// DefaultBackoff returns a conservative exponential backoff configuration.
func DefaultBackoff() BackoffStrategy {
	return BackoffStrategy{
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    3 * time.Second,
		MaxAttempts: 3,
		Jitter:      0.2,
	}
}

// Retry executes fn with exponential backoff. It stops when fn returns nil,
// when shouldRetry returns false, when ctx is cancelled, or after MaxAttempts
// have been exhausted. It returns the number of attempts executed and the
// last error from fn (or the context error if cancellation won).
func (b BackoffStrategy) Retry(ctx context.Context, fn func() error, shouldRetry func(error) bool) (int, error) {
	if b.MaxAttempts <= 0 {
		b.MaxAttempts = 1
	}
	if b.BaseDelay <= 0 {
		b.BaseDelay = 100 * time.Millisecond
	}
	if b.MaxDelay <= 0 {
		b.MaxDelay = time.Second
	}
	sleeper := b.Sleeper
	if sleeper == nil {
		sleeper = FuncSleeper(contextSleep)
	}
	rnd := b.Rand
	if rnd == nil {
		rnd = rand.Float64
	}
	for attempt := 1; attempt <= b.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt - 1, err
		}
		err := fn()
		if err == nil {
			return attempt, nil
		}
		if shouldRetry != nil && !shouldRetry(err) {
			return attempt, err
		}
		if attempt == b.MaxAttempts {
			return attempt, err
		}
		delay := b.nextDelay(attempt)
		if b.Jitter > 0 {
			jitter := float64(delay) * b.Jitter * rnd()
			delay += time.Duration(jitter)
		}
		if sleepErr := sleeper.Sleep(ctx, delay); sleepErr != nil {
			return attempt, err
		}
	}
	return b.MaxAttempts, nil
}

func (b BackoffStrategy) nextDelay(attempt int) time.Duration {
	exp := float64(attempt - 1)
	delay := float64(b.BaseDelay) * math.Pow(2, exp)
	max := float64(b.MaxDelay)
	if delay > max {
		delay = max
	}
	return time.Duration(delay)
}

// contextSleep waits for the duration or until the context is done.
func contextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
