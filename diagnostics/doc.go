// Package diagnostics provides a non-blocking observability sink for the
// flow engine.
//
// The engine layers ([go.pipeflow.dev/pipeflow/source],
// [go.pipeflow.dev/pipeflow/flow],
// [go.pipeflow.dev/pipeflow/operator], [go.pipeflow.dev/pipeflow/adapter])
// accepts an optional [Sink] and emits an [Event] for state transitions that
// are useful to observe but must never block or fail the data path:
// predicate panics, buffer overflows, source faults, worker errors. A nil
// Sink is always valid and discards every event.
//
// [Sink] is implemented by [Recorder], a fixed-capacity ring buffer
// modeled on the drop-oldest fan-out used elsewhere in this module for log
// publishing: emitting an event never blocks the caller, and a slow or
// absent consumer can only ever lose the oldest unread events, never stall
// the producer.
//
//	rec := diagnostics.NewRecorder()
//	src := source.New[int](source.WithDiagnostics[int](rec))
//	sub := rec.Subscribe()
//	go func() {
//	    for ev := range sub.C() {
//	        log.Printf("%s: %s", ev.Kind, ev.Message)
//	    }
//	}()
package diagnostics
