// Package retry repeats a function with backoff.
package retry

import (
	"context"
	"errors"
	"time"
)

// ErrRetry marks an error as retryable.
//
// Join or wrap it with the cause, then Blocking calls the function again.
var ErrRetry = errors.New("retry")

// Backoff blocks until the next try.
//
// It returns ctx.Err() when the context is done before that.
type Backoff func(context.Context) error

// StaticBackoff waits for the interval each time.
func StaticBackoff(interval time.Duration) Backoff {
	return ExponentialBackoff(interval, 1)
}

// ExponentialBackoff waits for initialInterval at first,
// and the wait is multiplied by r for each call.
func ExponentialBackoff(initialInterval time.Duration, r float64) Backoff {
	interval := initialInterval
	return func(ctx context.Context) error {
		timer := time.NewTimer(interval)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			interval = time.Duration(float64(interval) * r)
			return nil
		}
	}
}

// Blocking calls f until it returns nil or an error other than ErrRetry.
//
// Backoff is awaited before each call, including the first one.
// When the backoff gives up, Blocking returns the last value of f and the error of the backoff.
func Blocking[T any](ctx context.Context, b Backoff, f func() (T, error)) (T, error) {
	last := *new(T)
	for {
		if err := b(ctx); err != nil {
			return last, err
		}

		var err error
		last, err = f()
		if err == nil {
			return last, nil
		}
		if !errors.Is(err, ErrRetry) {
			return last, err
		}
	}
}
