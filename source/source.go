package source

import (
	"context"
	"sync"

	"go.pipeflow.dev/pipeflow/buffer"
	"go.pipeflow.dev/pipeflow/diagnostics"
)

// Predicate gates whether an item published to a [Source] is delivered to
// attached Writers. A Predicate that returns a non-nil error is treated as a
// rejection and reported to diagnostics as [diagnostics.KindPredicateError];
// it never stops the Source.
type Predicate[T any] func(item T) (bool, error)

// Source is the publish side of one upstream feed. Zero or more
// [buffer.Writer] ends can be attached at any time via [Source.AddWriter];
// every attached Writer receives every item that passes the Source's
// [Predicate], in the order [Source.Publish] was called.
//
// A Source is safe for concurrent use: Publish, AddWriter, RemoveWriter,
// Complete, and Fault may all be called from different goroutines.
type Source[T any] struct {
	mu        sync.Mutex
	writers   map[*buffer.Writer[T]]struct{}
	predicate Predicate[T]
	diag      diagnostics.Sink
	name      string

	done    bool
	doneErr error
}

// Option configures a [Source].
type Option[T any] func(*Source[T])

// WithPredicate installs a gate evaluated for every published item before
// fan-out to attached Writers.
func WithPredicate[T any](p Predicate[T]) Option[T] {
	return func(s *Source[T]) {
		s.predicate = p
	}
}

// WithDiagnostics attaches a sink for non-fatal observability events. A nil
// sink (the default) discards events.
func WithDiagnostics[T any](sink diagnostics.Sink) Option[T] {
	return func(s *Source[T]) {
		s.diag = sink
	}
}

// WithName labels the Source in diagnostics events.
func WithName[T any](name string) Option[T] {
	return func(s *Source[T]) {
		s.name = name
	}
}

// New creates a Source with no Writers attached.
func New[T any](opts ...Option[T]) *Source[T] {
	s := &Source[T]{writers: make(map[*buffer.Writer[T]]struct{})}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// AddWriter attaches w so it begins receiving items from future Publish
// calls. If the Source has already completed (via [Source.Complete] or
// [Source.Fault]), w is completed immediately with the Source's terminal
// error instead of being attached, so a late attach can never wait forever.
func (s *Source[T]) AddWriter(w *buffer.Writer[T]) {
	s.mu.Lock()

	if s.done {
		err := s.doneErr
		s.mu.Unlock()
		w.CompleteErr(err)

		return
	}

	s.writers[w] = struct{}{}
	s.mu.Unlock()
}

// SetPredicate replaces the Source's acceptance predicate, affecting every
// future [Source.Publish]/[Source.TryPublish] call. Pass nil to accept every
// item unconditionally. Since a Source's predicate is shared by every
// attached Writer rather than scoped per-Writer, callers that attach more
// than one Writer to the same Source should set the predicate before
// attaching the second one.
func (s *Source[T]) SetPredicate(p Predicate[T]) {
	s.mu.Lock()
	s.predicate = p
	s.mu.Unlock()
}

// RemoveWriter detaches w. Future publishes no longer reach it. RemoveWriter
// does not complete w; the caller (typically a Flow reconfiguring its
// topology) owns that decision.
func (s *Source[T]) RemoveWriter(w *buffer.Writer[T]) {
	s.mu.Lock()
	delete(s.writers, w)
	s.mu.Unlock()
}

// Publish gates item through the Source's [Predicate] (if any) and, if
// accepted, delivers it to every attached Writer using
// [buffer.Writer.EnqueueBlocking]. A [buffer.BoundedWait] Writer can make
// Publish wait for capacity; ctx bounds that wait for all writers. Publish
// returns ctx.Err() if ctx is done before every writer has accepted or
// rejected the item; writers already processed keep their outcome.
func (s *Source[T]) Publish(ctx context.Context, item T) error {
	if s.predicate != nil {
		ok, err := s.evaluatePredicate(item)
		if err != nil {
			diagnostics.Emit(s.diag, diagnostics.Event{
				Component: s.name,
				Kind:      diagnostics.KindPredicateError,
				Message:   "predicate returned an error; item dropped",
				Err:       err,
			})

			return nil
		}

		if !ok {
			return nil
		}
	}

	for _, w := range s.snapshotWriters() {
		outcome := w.EnqueueBlocking(ctx, item)

		switch outcome {
		case buffer.Accepted:
		case buffer.Cancelled:
			return ctx.Err()
		default:
			diagnostics.Emit(s.diag, diagnostics.Event{
				Component: s.name,
				Kind:      diagnostics.KindPublishRejected,
				Message:   "writer rejected published item: " + outcome.String(),
			})
		}
	}

	return nil
}

// TryPublish is the non-blocking counterpart to [Source.Publish]: every
// writer receives a [buffer.Writer.TryEnqueue] attempt regardless of
// policy, so a [buffer.BoundedWait] writer that is full is reported as
// rejected rather than waited on.
func (s *Source[T]) TryPublish(item T) {
	if s.predicate != nil {
		ok, err := s.evaluatePredicate(item)
		if err != nil {
			diagnostics.Emit(s.diag, diagnostics.Event{
				Component: s.name,
				Kind:      diagnostics.KindPredicateError,
				Message:   "predicate returned an error; item dropped",
				Err:       err,
			})

			return
		}

		if !ok {
			return
		}
	}

	for _, w := range s.snapshotWriters() {
		if outcome := w.TryEnqueue(item); outcome != buffer.Accepted {
			diagnostics.Emit(s.diag, diagnostics.Event{
				Component: s.name,
				Kind:      diagnostics.KindPublishRejected,
				Message:   "writer rejected published item: " + outcome.String(),
			})
		}
	}
}

func (s *Source[T]) evaluatePredicate(item T) (accept bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			accept, err = false, panicError{r}
		}
	}()

	return s.predicate(item)
}

// Complete marks the Source clean-finished: every attached Writer is
// completed with a nil error, and any Writer attached afterward via
// [Source.AddWriter] is completed immediately instead of being registered.
// Idempotent; only the first call among Complete and [Source.Fault] takes
// effect.
func (s *Source[T]) Complete() {
	s.finish(nil)
}

// Fault marks the Source finished with err: every attached Writer is
// completed with err, and a future [Source.AddWriter] completes immediately
// with err instead of registering. Idempotent; only the first call among
// Complete and Fault takes effect.
func (s *Source[T]) Fault(err error) {
	diagnostics.Emit(s.diag, diagnostics.Event{
		Component: s.name,
		Kind:      diagnostics.KindSourceFault,
		Message:   "source faulted",
		Err:       err,
	})
	s.finish(err)
}

func (s *Source[T]) finish(err error) {
	s.mu.Lock()

	if s.done {
		s.mu.Unlock()

		return
	}

	s.done = true
	s.doneErr = err
	writers := s.writers
	s.writers = make(map[*buffer.Writer[T]]struct{})
	s.mu.Unlock()

	for w := range writers {
		w.CompleteErr(err)
	}
}

func (s *Source[T]) snapshotWriters() []*buffer.Writer[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*buffer.Writer[T], 0, len(s.writers))
	for w := range s.writers {
		out = append(out, w)
	}

	return out
}

// panicError wraps a recovered panic value as an error.
type panicError struct {
	v any
}

func (p panicError) Error() string {
	return "predicate panicked: " + errorString(p.v)
}

func errorString(v any) string {
	if err, ok := v.(error); ok {
		return err.Error()
	}

	if s, ok := v.(string); ok {
		return s
	}

	return "non-error panic value"
}
