package adapter_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.pipeflow.dev/pipeflow/adapter"
	"go.pipeflow.dev/pipeflow/buffer"
	"go.pipeflow.dev/pipeflow/diagnostics"
	"go.pipeflow.dev/pipeflow/source"
)

func TestPollPublishesOnEveryTick(t *testing.T) {
	t.Parallel()

	src := source.New[int]()
	w, r := buffer.New[int](buffer.BoundedWait, 8)
	src.AddWriter(w)

	var n atomic.Int64

	fn := func(context.Context) (int, error) {
		return int(n.Add(1)), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Millisecond)
	defer cancel()

	done := make(chan struct{})

	go func() {
		adapter.Poll(ctx, src, 10*time.Millisecond, fn)
		close(done)
	}()

	<-done

	var got []int

	for {
		v, ok, _ := r.Recv(context.Background())
		if !ok {
			break
		}

		got = append(got, v)
	}

	assert.NotEmpty(t, got)
	assert.Equal(t, 1, got[0])
}

func TestPollErrorIsSkippedNotFatal(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	src := source.New[int]()
	w, r := buffer.New[int](buffer.BoundedWait, 8)
	src.AddWriter(w)

	rec := diagnostics.NewRecorder()
	sub := rec.Subscribe()

	var calls atomic.Int64

	fn := func(context.Context) (int, error) {
		n := calls.Add(1)
		if n == 1 {
			return 0, boom
		}

		return int(n), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 35*time.Millisecond)
	defer cancel()

	done := make(chan struct{})

	go func() {
		adapter.Poll(ctx, src, 10*time.Millisecond, fn, adapter.WithPollDiagnostics(rec))
		close(done)
	}()

	<-done

	ev := <-sub.C()
	assert.Equal(t, diagnostics.KindAdapterError, ev.Kind)
	assert.ErrorIs(t, ev.Err, boom)

	v, ok, _ := r.Recv(context.Background())
	require.True(t, ok)
	assert.Equal(t, 2, v, "first tick's error should not have published an item")
}

func TestThrottleSpacesOutPublishes(t *testing.T) {
	t.Parallel()

	src := source.New[int]()
	w, r := buffer.New[int](buffer.BoundedWait, 8)
	src.AddWriter(w)

	in := make(chan int, 3)
	in <- 1
	in <- 2
	in <- 3
	close(in)

	start := time.Now()

	done := make(chan struct{})

	go func() {
		adapter.Throttle[int](src, in, 15*time.Millisecond, nil)
		close(done)
	}()

	<-done

	var got []int

	for {
		v, ok, _ := r.Recv(context.Background())
		if !ok {
			break
		}

		got = append(got, v)
	}

	assert.Equal(t, []int{1, 2, 3}, got)

	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 2*15*time.Millisecond, "three publishes should be spaced by at least two intervals")
}

func TestThrottleCancelEndsWithoutError(t *testing.T) {
	t.Parallel()

	src := source.New[int]()
	w, r := buffer.New[int](buffer.BoundedWait, 8)
	src.AddWriter(w)

	in := make(chan int)
	cancel := make(chan struct{})

	done := make(chan struct{})

	go func() {
		adapter.Throttle[int](src, in, time.Hour, cancel)
		close(done)
	}()

	close(cancel)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("throttle did not return after cancel")
	}

	_, ok, err := r.Recv(context.Background())
	assert.False(t, ok)
	assert.NoError(t, err, "cancellation must end the relay without surfacing a cancellation error")
}
