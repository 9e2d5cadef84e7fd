// Package buffer implements the FIFO primitive that sits between a
// [go.pipeflow.dev/pipeflow/source.Source] and the fan-in engine in
// [go.pipeflow.dev/pipeflow/flow].
//
// A buffer has a [Writer] end and a [Reader] end. The Writer end is owned
// by a Source registration; the Reader end is owned by a Flow. Buffers come
// in five capacity policies ([Unbounded], [BoundedWait], [BoundedDropOldest],
// [BoundedDropNewest], [BoundedFail]) selected at construction time via
// [New]; callers never type-switch on the underlying implementation, only on
// the [Policy] value, keeping the policies a uniform tagged variant rather
// than a class hierarchy.
//
// Completion (ok or error) is delivered exactly once and only after every
// item enqueued before completion has been drained by the Reader:
//
//	w, r := buffer.New[int](buffer.BoundedWait, 4)
//	w.TryEnqueue(1)
//	w.CompleteOK()
//	v, ok, err := r.Recv(context.Background()) // v=1, ok=true, err=nil
//	_, ok, err = r.Recv(context.Background())  // ok=false, err=nil
package buffer
