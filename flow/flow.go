package flow

import (
	"sync"

	"go.pipeflow.dev/pipeflow/buffer"
	"go.pipeflow.dev/pipeflow/diagnostics"
	"go.pipeflow.dev/pipeflow/source"
)

// Subscription is the triple binding a Source to a Buffer within a Flow: the
// Source itself, the Writer end registered with it, and the Reader end a
// [Consumer] pulls from. At most one Subscription exists per (Flow, Source)
// pair.
type Subscription[T any] struct {
	source *source.Source[T]
	writer *buffer.Writer[T]
	reader *buffer.Reader[T]
}

// Flow owns the live Subscription map feeding a single [Consumer]. Sources
// can be attached or detached at any time, including mid-iteration.
type Flow[T any] struct {
	mu        sync.Mutex
	subs      map[*source.Source[T]]*Subscription[T]
	byReader  map[*buffer.Reader[T]]*source.Source[T]
	changedCh chan struct{}
	closed    bool
	diag      diagnostics.Sink
	name      string
}

// Option configures a [Flow].
type Option[T any] func(*Flow[T])

// WithDiagnostics attaches a sink for non-fatal observability events.
func WithDiagnostics[T any](sink diagnostics.Sink) Option[T] {
	return func(f *Flow[T]) {
		f.diag = sink
	}
}

// WithName labels the Flow in diagnostics events.
func WithName[T any](name string) Option[T] {
	return func(f *Flow[T]) {
		f.name = name
	}
}

// New creates a Flow with no Subscriptions attached.
func New[T any](opts ...Option[T]) *Flow[T] {
	f := &Flow[T]{
		subs:      make(map[*source.Source[T]]*Subscription[T]),
		byReader:  make(map[*buffer.Reader[T]]*source.Source[T]),
		changedCh: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// AttachOption configures a single [Flow.Attach] call.
type AttachOption[T any] func(*attachConfig[T])

type attachConfig[T any] struct {
	predicate source.Predicate[T]
}

// WithPredicate installs pred as src's acceptance predicate for the
// duration of this Subscription. Since a [source.Source] carries a single
// predicate shared by every attached Writer, this replaces any predicate src
// already had; it is meant for the common case of one Subscription per
// Source.
func WithPredicate[T any](pred source.Predicate[T]) AttachOption[T] {
	return func(c *attachConfig[T]) {
		c.predicate = pred
	}
}

// Attach registers src as a new Subscription: it allocates a [buffer.Writer]/
// [buffer.Reader] pair governed by policy and capacity, registers the Writer
// with src via [source.Source.AddWriter], and adds the Reader to the set a
// [Consumer] waits on. Safe to call before, during, or after consumption has
// started. A call after [Flow.Close] is a no-op. Attaching a Source that
// already has a Subscription first tears down the old one (see [Flow.Detach]).
func (f *Flow[T]) Attach(src *source.Source[T], policy buffer.Policy, capacity int, opts ...AttachOption[T]) {
	var cfg attachConfig[T]
	for _, opt := range opts {
		opt(&cfg)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}

	if existing, ok := f.subs[src]; ok {
		f.teardownLocked(existing)
	}

	if cfg.predicate != nil {
		src.SetPredicate(cfg.predicate)
	}

	w, r := buffer.New[T](policy, capacity)
	src.AddWriter(w)

	sub := &Subscription[T]{source: src, writer: w, reader: r}
	f.subs[src] = sub
	f.byReader[r] = src

	f.notifyLocked()
}

// Detach removes src's Subscription, if any. Per the teardown order the
// Writer is removed from src before it is completed, so no item Published
// after this call can ever be enqueued into a buffer nothing will read.
// Items already enqueued before this call remain visible to the Consumer
// until drained.
func (f *Flow[T]) Detach(src *source.Source[T]) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sub, ok := f.subs[src]
	if !ok {
		return
	}

	f.teardownLocked(sub)
	f.notifyLocked()
}

// DetachByReader is the dual lookup [Consumer] uses when a Reader reports
// closed: it maps r back to its owning Source and performs the same
// teardown as [Flow.Detach].
func (f *Flow[T]) DetachByReader(r *buffer.Reader[T]) {
	f.mu.Lock()
	defer f.mu.Unlock()

	src, ok := f.byReader[r]
	if !ok {
		return
	}

	f.teardownLocked(f.subs[src])
	f.notifyLocked()
}

// teardownLocked removes sub's Writer from its Source before completing the
// Writer end, then drops the Subscription from both maps. Callers must hold
// f.mu. Completing an already-completed Writer (the common case when a
// Source finished on its own) is a no-op, since [buffer.Writer.CompleteOK]
// is idempotent.
func (f *Flow[T]) teardownLocked(sub *Subscription[T]) {
	sub.source.RemoveWriter(sub.writer)
	sub.writer.CompleteOK()

	delete(f.subs, sub.source)
	delete(f.byReader, sub.reader)
}

// Close marks the Flow as having its final topology: future [Flow.Attach]
// calls are ignored. A [Consumer] reports iteration as finished once every
// attached Reader has drained and Close has been called. Idempotent.
func (f *Flow[T]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}

	f.closed = true
	f.notifyLocked()
}

// notifyLocked wakes every Consumer blocked in a dynamic select by closing
// the current changed channel and replacing it, so the next snapshot
// observes a fresh, open channel. Callers must hold f.mu.
func (f *Flow[T]) notifyLocked() {
	close(f.changedCh)
	f.changedCh = make(chan struct{})
}

// snapshot returns the currently attached Readers, the channel that closes
// on the next topology change, and whether the Flow is closed.
func (f *Flow[T]) snapshot() ([]*buffer.Reader[T], <-chan struct{}, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*buffer.Reader[T], 0, len(f.subs))
	for _, sub := range f.subs {
		out = append(out, sub.reader)
	}

	return out, f.changedCh, f.closed
}

// Consumer creates a pull iterator over f. A Flow can support more than one
// Consumer, but each iterates the same shared Readers, so items are
// distributed between them rather than duplicated; most topologies use
// exactly one Consumer per Flow.
func (f *Flow[T]) Consumer() *Consumer[T] {
	return &Consumer[T]{flow: f}
}
