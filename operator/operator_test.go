package operator_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.pipeflow.dev/pipeflow/operator"
)

func sliceSource[T any](items []T) operator.Puller[T] {
	i := 0

	return operator.PullerFunc[T](func(ctx context.Context) (T, bool, error) {
		if i >= len(items) {
			var zero T

			return zero, false, nil
		}

		v := items[i]
		i++

		return v, true, nil
	})
}

func drainInts(t *testing.T, p operator.Puller[int]) ([]int, error) {
	t.Helper()

	var out []int

	ctx := context.Background()

	for {
		v, ok, err := p.Next(ctx)
		if !ok {
			return out, err
		}

		out = append(out, v)
	}
}

func TestMapOrderedPreservesInputOrderUnderJitter(t *testing.T) {
	t.Parallel()

	src := sliceSource([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})

	double := func(_ context.Context, n int) (int, error) {
		time.Sleep(time.Duration(rand.IntN(5)) * time.Millisecond)

		return n * 2, nil
	}

	r := operator.MapOrdered[int, int](context.Background(), src, double, operator.WithWorkers(4))

	out, err := drainInts(t, operator.PullerFunc[int](func(ctx context.Context) (int, bool, error) {
		return r.Recv(ctx)
	}))

	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 4, 6, 8, 10, 12, 14, 16, 18}, out)
}

func TestMapUnorderedIsAPermutationOfInput(t *testing.T) {
	t.Parallel()

	items := make([]int, 50)
	for i := range items {
		items[i] = i
	}

	src := sliceSource(items)

	ident := func(_ context.Context, n int) (int, error) {
		time.Sleep(time.Duration(rand.IntN(3)) * time.Millisecond)

		return n, nil
	}

	r := operator.MapUnordered[int, int](context.Background(), src, ident, operator.WithWorkers(8))

	out, err := drainInts(t, operator.PullerFunc[int](func(ctx context.Context) (int, bool, error) {
		return r.Recv(ctx)
	}))

	require.NoError(t, err)
	require.Len(t, out, len(items))

	sort.Ints(out)
	assert.Equal(t, items, out)
}

func TestMapOrderedPropagatesFatalError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	src := sliceSource([]int{1, 2, 3})

	failOnTwo := func(_ context.Context, n int) (int, error) {
		if n == 2 {
			return 0, boom
		}

		return n, nil
	}

	r := operator.MapOrdered[int, int](context.Background(), src, failOnTwo, operator.WithWorkers(1))

	_, _, err := r.Recv(context.Background())
	assert.NoError(t, err)

	for {
		_, ok, err := r.Recv(context.Background())
		if !ok {
			assert.ErrorIs(t, err, boom)

			break
		}
	}
}

func TestMapContinueOnErrorSkipsFailedItems(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	src := sliceSource([]int{1, 2, 3, 4})

	failOnEven := func(_ context.Context, n int) (int, error) {
		if n%2 == 0 {
			return 0, boom
		}

		return n, nil
	}

	r := operator.MapOrdered[int, int](
		context.Background(), src, failOnEven,
		operator.WithWorkers(1), operator.WithContinueOnError(),
	)

	out, err := drainInts(t, operator.PullerFunc[int](func(ctx context.Context) (int, bool, error) {
		return r.Recv(ctx)
	}))

	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, out)
}

func TestFilterKeepsOnlyMatchingItems(t *testing.T) {
	t.Parallel()

	src := sliceSource([]int{1, 2, 3, 4, 5, 6})
	filtered := operator.Filter(src, func(n int) bool { return n%2 == 0 })

	out, err := drainInts(t, filtered)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 6}, out)
}

func TestTakeLimitsToN(t *testing.T) {
	t.Parallel()

	src := sliceSource([]int{1, 2, 3, 4, 5})
	limited := operator.Take(src, 3)

	out, err := drainInts(t, limited)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, out)
}

func TestTakeZeroIsImmediatelyExhausted(t *testing.T) {
	t.Parallel()

	src := sliceSource([]int{1, 2, 3})
	limited := operator.Take(src, 0)

	out, err := drainInts(t, limited)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestFilterThenTakeComposes(t *testing.T) {
	t.Parallel()

	src := sliceSource([]int{1, 2, 3, 4, 5, 6, 7, 8})
	pipeline := operator.Take(operator.Filter(src, func(n int) bool { return n%2 == 0 }), 2)

	out, err := drainInts(t, pipeline)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4}, out)
}

func TestRateLimitSpacesOutCalls(t *testing.T) {
	t.Parallel()

	src := sliceSource([]int{1, 2, 3})
	limited := operator.RateLimit(src, 15*time.Millisecond)

	start := time.Now()

	ctx := context.Background()

	for k := 0; k < 3; k++ {
		v, ok, err := limited.Next(ctx)
		require.True(t, ok)
		require.NoError(t, err)
		assert.Equal(t, k+1, v)
	}

	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 2*15*time.Millisecond, "three calls should be spaced by at least two intervals")
}

func TestRateLimitRespectsContextCancel(t *testing.T) {
	t.Parallel()

	src := operator.PullerFunc[int](func(ctx context.Context) (int, bool, error) {
		return 1, true, nil
	})

	limited := operator.RateLimit[int](src, time.Hour)

	ctx := context.Background()
	_, _, _ = limited.Next(ctx)

	cancelCtx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok, err := limited.Next(cancelCtx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
}
