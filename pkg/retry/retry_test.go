package retry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoopSucceedsOnFirstAttempt(t *testing.T) {
	calls := 0
	value, err := Loop(context.Background(), 3, func(ctx context.Context, n int) (Outcome[string], error) {
		calls++
		return Success("ok"), nil
	})
	require.NoError(t, err)
	require.Equal(t, "ok", value)
	require.Equal(t, 1, calls)
}

func TestLoopRetriesOnFailureThenSucceeds(t *testing.T) {
	calls := 0
	value, err := Loop(context.Background(), 3, func(ctx context.Context, n int) (Outcome[int], error) {
		calls++
		if n < 2 {
			return Failure[int](errors.New("stale version")), nil
		}
		return Success(42), nil
	})
	require.NoError(t, err)
	require.Equal(t, 42, value)
	require.Equal(t, 2, calls)
}

func TestLoopSurfacesLastFailureAfterExhaustion(t *testing.T) {
	calls := 0
	sentinel := errors.New("conflict")
	_, err := Loop(context.Background(), 3, func(ctx context.Context, n int) (Outcome[int], error) {
		calls++
		return Failure[int](sentinel), nil
	})
	require.ErrorIs(t, err, sentinel)
	require.Equal(t, 3, calls)
}

func TestLoopPropagatesThrownErrorImmediately(t *testing.T) {
	calls := 0
	sentinel := errors.New("boom")
	_, err := Loop(context.Background(), 3, func(ctx context.Context, n int) (Outcome[int], error) {
		calls++
		return Outcome[int]{}, sentinel
	})
	require.ErrorIs(t, err, sentinel)
	require.Equal(t, 1, calls)
}

func TestLoopDefaultsMaxAttempts(t *testing.T) {
	calls := 0
	_, err := Loop(context.Background(), 0, func(ctx context.Context, n int) (Outcome[int], error) {
		calls++
		return Failure[int](errors.New("nope")), nil
	})
	require.Error(t, err)
	require.Equal(t, DefaultMaxAttempts, calls)
}
