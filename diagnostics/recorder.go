package diagnostics

import (
	"sync"
	"sync/atomic"
)

const defaultBufferSize = 64

// Recorder is a [Sink] that fans out events to subscribers.
//
// Each call to [Recorder.Emit] delivers the event to every active
// [RecorderSubscription] via a buffered channel with ring-buffer semantics:
// when a subscriber's channel is full the oldest entry is dropped so Emit
// never blocks. Safe for concurrent use.
type Recorder struct {
	subscribers []*RecorderSubscription
	bufSize     int
	mu          sync.Mutex
	closed      bool
}

// NewRecorder creates a [Recorder] with the given options. The default
// buffer size is 64.
func NewRecorder(opts ...RecorderOption) *Recorder {
	r := &Recorder{bufSize: defaultBufferSize}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// RecorderOption configures a [Recorder].
type RecorderOption func(*Recorder)

// WithRecorderBufferSize sets the channel buffer size for new subscriptions.
// Values less than 1 are clamped to 1.
func WithRecorderBufferSize(n int) RecorderOption {
	return func(r *Recorder) {
		if n < 1 {
			n = 1
		}

		r.bufSize = n
	}
}

// Emit delivers ev to all active subscribers. When a subscriber's channel is
// full the oldest entry is dropped to make room. Closed subscriptions are
// compacted out of the subscriber list. A Recorder that has been [Close]d
// discards ev silently.
func (r *Recorder) Emit(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}

	alive := r.subscribers[:0]

	for _, sub := range r.subscribers {
		if sub.closed.Load() {
			close(sub.ch)

			continue
		}

		select {
		case sub.ch <- ev:
		default:
			select {
			case <-sub.ch:
			default:
			}

			sub.ch <- ev
		}

		alive = append(alive, sub)
	}

	for i := len(alive); i < len(r.subscribers); i++ {
		r.subscribers[i] = nil
	}

	r.subscribers = alive
}

// Subscribe creates and registers a new [RecorderSubscription]. If the
// Recorder is already closed the returned subscription's channel is
// immediately closed.
func (r *Recorder) Subscribe() *RecorderSubscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub := &RecorderSubscription{ch: make(chan Event, r.bufSize)}

	if r.closed {
		close(sub.ch)

		return sub
	}

	r.subscribers = append(r.subscribers, sub)

	return sub
}

// Close marks the Recorder as closed, closes all subscription channels, and
// releases the subscriber list. Idempotent.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}

	r.closed = true
	for _, sub := range r.subscribers {
		close(sub.ch)
	}

	r.subscribers = nil

	return nil
}

// RecorderSubscription receives events from a [Recorder].
type RecorderSubscription struct {
	ch     chan Event
	closed atomic.Bool
}

// C returns the read-only channel that delivers events.
func (s *RecorderSubscription) C() <-chan Event {
	return s.ch
}

// Close marks the subscription as closed. The Recorder will close the
// underlying channel on its next Emit or Close call. Idempotent.
func (s *RecorderSubscription) Close() {
	s.closed.Store(true)
}
