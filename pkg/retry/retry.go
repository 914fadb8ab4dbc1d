// Package retry implements the bounded optimistic-concurrency retry loop
// account mutations run under: a fixed attempt budget and no
// backoff, since these retries exist purely to re-read-and-recompute
// after a lost compare-and-swap race, not to ride out transient network
// failures.
package retry

import (
	"context"
	"fmt"
)

// DefaultMaxAttempts is the loop's default attempt budget.
const DefaultMaxAttempts = 3

// Outcome is the three-way result a retried closure can report for one
// attempt: Success short-circuits the loop, Failure retries (or, on the
// final attempt, is surfaced to the caller). A closure that instead
// returns a non-nil error from Attempt is a "thrown" error: it propagates
// immediately without retrying, since it did not originate from the
// optimistic-concurrency race the loop exists to absorb.
type Outcome[T any] struct {
	ok    bool
	value T
	err   error
}

// Success reports a successful attempt carrying value.
func Success[T any](value T) Outcome[T] {
	return Outcome[T]{ok: true, value: value}
}

// Failure reports a retryable attempt failure.
func Failure[T any](err error) Outcome[T] {
	return Outcome[T]{ok: false, err: err}
}

// Attempt is one iteration of a retried operation. A non-nil returned
// error is a thrown error and is never retried.
type Attempt[T any] func(ctx context.Context, attemptNumber int) (Outcome[T], error)

// Loop runs attempt up to maxAttempts times. Success short-circuits with
// its value. Failure is retried; after the final attempt, the last
// Failure's error is returned. A thrown error (attempt's second return
// value) propagates immediately without consuming further attempts. The
// loop never sleeps between attempts.
func Loop[T any](ctx context.Context, maxAttempts int, attempt Attempt[T]) (T, error) {
	var zero T
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	var lastErr error
	for n := 1; n <= maxAttempts; n++ {
		outcome, err := attempt(ctx, n)
		if err != nil {
			return zero, err
		}
		if outcome.ok {
			return outcome.value, nil
		}
		lastErr = outcome.err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("retry: exhausted %d attempts with no recorded failure", maxAttempts)
	}
	return zero, lastErr
}
