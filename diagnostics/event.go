package diagnostics

import "time"

// Kind categorizes an [Event]. New kinds may be added; callers should not
// treat the set as exhaustive.
type Kind string

const (
	// KindPublishRejected reports a Writer rejecting a Source.Publish item
	// because its buffer was full or closed. An item that the predicate
	// rejects emits no event.
	KindPublishRejected Kind = "publish-rejected"
	// KindPredicateError reports a predicate function that panicked or
	// returned an error while gating a publish.
	KindPredicateError Kind = "predicate-error"
	// KindSourceFault reports a Source transitioning to a faulted
	// completion via Source.Fault.
	KindSourceFault Kind = "source-fault"
	// KindBufferOverflow names a bounded buffer rejecting or evicting an
	// item because it was full. No component in this module emits it: a
	// Source reports a full buffer as KindPublishRejected.
	KindBufferOverflow Kind = "buffer-overflow"
	// KindWriterDetached reports the Consumer detaching a Reader whose
	// Writer completed with an error.
	KindWriterDetached Kind = "writer-detached"
	// KindOperatorError reports a worker function returning an error inside
	// an Operator stage.
	KindOperatorError Kind = "operator-error"
	// KindAdapterError reports an Adapter failing to produce an item.
	KindAdapterError Kind = "adapter-error"
)

// Event is a single diagnostics record. Emitters in this module always set
// Kind; Component is empty for an unnamed component, and Time is left zero.
type Event struct {
	Time      time.Time
	Component string
	Kind      Kind
	Message   string
	Err       error
}

// Sink receives [Event] values. Implementations must not block the caller
// and must be safe for concurrent use; [Recorder] satisfies both
// requirements.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a plain function to [Sink].
type SinkFunc func(Event)

// Emit calls f.
func (f SinkFunc) Emit(ev Event) {
	f(ev)
}

// Nop is a [Sink] that discards every event.
var Nop Sink = SinkFunc(func(Event) {})

// Emit is a nil-safe helper: it calls sink.Emit(ev) unless sink is nil, so
// callers throughout the engine can hold a possibly-nil Sink field without
// checking it at every call site.
func Emit(sink Sink, ev Event) {
	if sink == nil {
		return
	}

	sink.Emit(ev)
}
