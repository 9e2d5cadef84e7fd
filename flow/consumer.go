package flow

import (
	"context"
	"reflect"

	"go.pipeflow.dev/pipeflow/buffer"
	"go.pipeflow.dev/pipeflow/diagnostics"
)

// Consumer is a pull iterator over a [Flow]'s attached Readers. Create one
// with [Flow.Consumer].
//
// Cancellation is benign: a cancelled ctx passed to [Consumer.Next] returns
// ctx.Err() without disturbing the Flow's attached Readers, and a later call
// with a fresh context resumes normally.
type Consumer[T any] struct {
	flow *Flow[T]
}

// Next returns the next available item across every attached Reader, in
// whatever order it becomes available; items from the same Reader are never
// reordered relative to each other.
//
// Next returns ok=false, err=nil once every attached Reader has drained and
// the Flow has been [Flow.Close]d. A single upstream Reader completing with
// a non-nil error surfaces as ok=false, err=<that error> for that one
// event; the Reader is detached and Next may be called again to keep
// consuming the remaining Readers.
func (c *Consumer[T]) Next(ctx context.Context) (item T, ok bool, err error) {
	for {
		readers, changed, closed := c.flow.snapshot()

		if len(readers) == 0 {
			if closed {
				var zero T

				return zero, false, nil
			}

			select {
			case <-changed:
				continue
			case <-ctx.Done():
				var zero T

				return zero, false, ctx.Err()
			}
		}

		item, ok, err, again := c.selectOnce(ctx, readers, changed)
		if again {
			continue
		}

		return item, ok, err
	}
}

// selectOnce waits on the dynamic case list built from readers, plus the
// Flow's changed signal and ctx.Done(). again=true means the caller should
// rebuild its snapshot and retry without returning to the user.
func (c *Consumer[T]) selectOnce(
	ctx context.Context,
	readers []*buffer.Reader[T],
	changed <-chan struct{},
) (item T, ok bool, err error, again bool) {
	cases := make([]reflect.SelectCase, 0, 2*len(readers)+2)

	for _, r := range readers {
		cases = append(cases,
			reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(r.DataChan())},
			reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(r.DoneChan())},
		)
	}

	changedIdx := len(cases)
	cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(changed)})

	ctxIdx := len(cases)
	cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())})

	chosen, recv, recvOK := reflect.Select(cases)

	switch {
	case chosen == changedIdx:
		return item, false, nil, true
	case chosen == ctxIdx:
		var zero T

		return zero, false, ctx.Err(), false
	case chosen%2 == 0:
		// Data case for readers[chosen/2].
		if !recvOK {
			// The data channel is never closed by design; treat a spurious
			// closed read as nothing available and retry.
			return item, false, nil, true
		}

		return recv.Interface().(T), true, nil, false
	default:
		// Done case for readers[chosen/2]: that Reader's Writer end has
		// completed. Delegate to Recv to replicate its drain-then-report
		// logic exactly, then detach the exhausted Reader.
		r := readers[chosen/2]

		v, ok, err := r.Recv(context.Background())
		if ok {
			return v, true, nil, false
		}

		c.flow.DetachByReader(r)

		if err != nil {
			diagnostics.Emit(c.flow.diag, diagnostics.Event{
				Component: c.flow.name,
				Kind:      diagnostics.KindWriterDetached,
				Message:   "reader detached after upstream fault",
				Err:       err,
			})

			var zero T

			return zero, false, err, false
		}

		return item, false, nil, true
	}
}
