package buffer

import (
	"context"
	"sync"
)

// New creates the Writer and Reader ends of a single FIFO channel governed
// by policy. capacity is ignored for [Unbounded] and clamped to at least 1
// for every bounded policy.
func New[T any](policy Policy, capacity int) (*Writer[T], *Reader[T]) {
	if policy != Unbounded && capacity < 1 {
		capacity = 1
	}

	var core *core[T]
	if policy == Unbounded {
		core = newUnboundedCore[T]()
	} else {
		core = newFixedCore[T](capacity)
	}

	w := &Writer[T]{policy: policy, core: core}
	r := &Reader[T]{core: core}

	return w, r
}

// core holds the state shared by one Buffer's Writer and Reader end. Two
// flavors exist: a fixed core backed directly by a capacity-N channel (the
// channel itself is the backing store, so completion can close the done
// signal immediately -- any items already sitting in the channel remain
// readable), and an unbounded core backed by a growable backlog drained by
// a pump goroutine into a capacity-1 handoff channel (done is only closed by
// the pump once the backlog is empty, so no item is ever skipped).
type core[T any] struct {
	ch   chan T
	done chan struct{}

	mu        sync.Mutex
	closeOnce sync.Once
	err       error

	// unbounded only
	cond    *sync.Cond
	backlog []T
	closing bool
}

func newFixedCore[T any](capacity int) *core[T] {
	return &core[T]{
		ch:   make(chan T, capacity),
		done: make(chan struct{}),
	}
}

func newUnboundedCore[T any]() *core[T] {
	c := &core[T]{
		ch:   make(chan T, 1),
		done: make(chan struct{}),
	}
	c.cond = sync.NewCond(&c.mu)

	go c.pump()

	return c
}

// pump moves items from the backlog into ch one at a time, blocking on the
// handoff send rather than the backlog lock. Only the unbounded core runs
// this goroutine.
func (c *core[T]) pump() {
	for {
		c.mu.Lock()

		for len(c.backlog) == 0 && !c.closing {
			c.cond.Wait()
		}

		if len(c.backlog) == 0 {
			c.mu.Unlock()
			close(c.done)

			return
		}

		item := c.backlog[0]

		var zero T

		c.backlog[0] = zero
		c.backlog = c.backlog[1:]

		c.mu.Unlock()

		c.ch <- item
	}
}

func (c *core[T]) loadErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.err
}

// complete records the terminal error (nil for a clean completion)
// exactly once. For a fixed core, done closes immediately -- any items still
// sitting in ch remain readable after close. For an unbounded core, the
// pump goroutine is the one that closes done, once the backlog drains.
func (c *core[T]) complete(err error) {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.err = err

		if c.cond != nil {
			c.closing = true
			c.cond.Signal()
			c.mu.Unlock()

			return
		}

		c.mu.Unlock()
		close(c.done)
	})
}

// Writer is the Source-side, send-only end of a buffer made by [New].
type Writer[T any] struct {
	policy Policy
	core   *core[T]

	// evictMu serializes the evict-then-insert sequence used by
	// BoundedDropOldest so concurrent publishers never race each other's
	// eviction.
	evictMu sync.Mutex
}

// Policy returns the buffer policy this Writer enforces.
func (w *Writer[T]) Policy() Policy {
	return w.policy
}

// TryEnqueue attempts a non-blocking enqueue. BoundedWait falls back to
// [Writer.EnqueueBlocking] in callers that want to wait; TryEnqueue itself
// never blocks.
func (w *Writer[T]) TryEnqueue(item T) EnqueueOutcome {
	select {
	case <-w.core.done:
		return RejectedClosed
	default:
	}

	switch w.policy {
	case Unbounded:
		w.core.mu.Lock()
		defer w.core.mu.Unlock()

		if w.core.closing {
			return RejectedClosed
		}

		w.core.backlog = append(w.core.backlog, item)
		w.core.cond.Signal()

		return Accepted
	case BoundedDropOldest:
		return w.tryEnqueueDropOldest(item)
	default:
		select {
		case w.core.ch <- item:
			return Accepted
		default:
			return RejectedFull
		}
	}
}

func (w *Writer[T]) tryEnqueueDropOldest(item T) EnqueueOutcome {
	w.evictMu.Lock()
	defer w.evictMu.Unlock()

	select {
	case w.core.ch <- item:
		return Accepted
	default:
	}

	select {
	case <-w.core.ch:
	default:
	}

	select {
	case w.core.ch <- item:
		return Accepted
	default:
		return RejectedFull
	}
}

// EnqueueBlocking attempts to enqueue item, waiting for capacity under
// [BoundedWait] until ctx is done. Every other policy behaves exactly like
// [Writer.TryEnqueue].
func (w *Writer[T]) EnqueueBlocking(ctx context.Context, item T) EnqueueOutcome {
	if w.policy != BoundedWait {
		return w.TryEnqueue(item)
	}

	select {
	case <-w.core.done:
		return RejectedClosed
	default:
	}

	select {
	case w.core.ch <- item:
		return Accepted
	case <-w.core.done:
		return RejectedClosed
	case <-ctx.Done():
		return Cancelled
	}
}

// CompleteOK marks the Writer end complete with no error. Idempotent.
func (w *Writer[T]) CompleteOK() {
	w.core.complete(nil)
}

// CompleteErr marks the Writer end complete with err. Idempotent and has no
// effect if [Writer.CompleteOK] or a prior CompleteErr already ran.
func (w *Writer[T]) CompleteErr(err error) {
	w.core.complete(err)
}

// Reader is the Flow-side, receive-only end of a buffer made by [New].
type Reader[T any] struct {
	core *core[T]
}

// Recv returns the next item in FIFO order. When the Writer end has
// completed and every item enqueued before completion has been delivered,
// Recv returns ok=false and the terminal error (nil for a clean
// completion). A done ctx returns a non-nil error with ok=false without
// consuming a buffered item.
func (r *Reader[T]) Recv(ctx context.Context) (item T, ok bool, err error) {
	if err := ctx.Err(); err != nil {
		var zero T

		return zero, false, err
	}

	select {
	case v := <-r.core.ch:
		return v, true, nil
	case <-r.core.done:
		select {
		case v := <-r.core.ch:
			return v, true, nil
		default:
			var zero T

			return zero, false, r.core.loadErr()
		}
	case <-ctx.Done():
		var zero T

		return zero, false, ctx.Err()
	}
}

// DataChan returns the raw receive channel backing r. Exposed so a Consumer
// can fold many Readers into one dynamic [reflect.Select] wait set; ordinary
// callers should use [Reader.Recv] instead, which also handles completion.
func (r *Reader[T]) DataChan() <-chan T {
	return r.core.ch
}

// DoneChan returns the channel that closes once the Writer end has
// completed. A close of this channel does not by itself mean Recv will
// return ok=false: a final buffered item may still be pending, which is why
// [Reader.Recv] re-checks DataChan non-blockingly before reporting
// completion.
func (r *Reader[T]) DoneChan() <-chan struct{} {
	return r.core.done
}
