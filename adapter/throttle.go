package adapter

import (
	"context"
	"time"

	"go.pipeflow.dev/pipeflow/source"
)

// Throttle relays every item received on in to src.Publish, sleeping at
// least interval between consecutive publishes so a bursty in never drives
// src faster than one item per interval. Throttle runs until in is closed or
// cancel fires; either ending calls [source.Source.Complete], never
// [source.Source.Fault] -- cancellation ends the sequence without
// surfacing a cancellation error, as [Poll] does.
func Throttle[T any](src *source.Source[T], in <-chan T, interval time.Duration, cancel <-chan struct{}) {
	defer src.Complete()

	ctx, stop := contextFromCancel(cancel)
	defer stop()

	var last time.Time

	for {
		select {
		case <-cancel:
			return
		case item, ok := <-in:
			if !ok {
				return
			}

			if !last.IsZero() {
				if wait := interval - time.Since(last); wait > 0 {
					timer := time.NewTimer(wait)

					select {
					case <-timer.C:
					case <-cancel:
						timer.Stop()

						return
					}
				}
			}

			if err := src.Publish(ctx, item); err != nil {
				return
			}

			last = time.Now()
		}
	}
}

// contextFromCancel returns a context that is cancelled as soon as cancel
// fires, so a [source.Source.Publish] blocked under [buffer.BoundedWait]
// unblocks promptly instead of waiting out a full Throttle interval.
func contextFromCancel(cancel <-chan struct{}) (context.Context, context.CancelFunc) {
	ctx, stop := context.WithCancel(context.Background())

	go func() {
		select {
		case <-cancel:
			stop()
		case <-ctx.Done():
		}
	}()

	return ctx, stop
}
