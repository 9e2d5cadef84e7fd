package operator

import (
	"context"
	"time"
)

// Filter wraps src so Next only ever returns items for which pred returns
// true. A pred that panics propagates the panic to the caller of Next,
// matching the behavior of an ordinary inline predicate.
func Filter[T any](src Puller[T], pred func(T) bool) Puller[T] {
	return PullerFunc[T](func(ctx context.Context) (T, bool, error) {
		for {
			item, ok, err := src.Next(ctx)
			if !ok || pred(item) {
				return item, ok, err
			}
		}
	})
}

// Take wraps src so Next returns at most n items before reporting
// iteration complete (ok=false, err=nil), regardless of how many src has
// left. n <= 0 produces a Puller that is immediately exhausted.
func Take[T any](src Puller[T], n int) Puller[T] {
	remaining := n

	return PullerFunc[T](func(ctx context.Context) (T, bool, error) {
		if remaining <= 0 {
			var zero T

			return zero, false, nil
		}

		remaining--

		return src.Next(ctx)
	})
}

// RateLimit wraps src so Next never returns more than once per minInterval,
// smoothing a bursty upstream Puller into a steady maximum rate. The first
// Next call always returns immediately. Unlike [go.pipeflow.dev/pipeflow/adapter.Throttle],
// which relays into a Source, RateLimit operates directly on a Puller and
// surfaces ctx.Err() like any other operator when ctx is cancelled mid-wait.
func RateLimit[T any](src Puller[T], minInterval time.Duration) Puller[T] {
	var last time.Time

	return PullerFunc[T](func(ctx context.Context) (T, bool, error) {
		if !last.IsZero() {
			if wait := minInterval - time.Since(last); wait > 0 {
				timer := time.NewTimer(wait)
				defer timer.Stop()

				select {
				case <-timer.C:
				case <-ctx.Done():
					var zero T

					return zero, false, ctx.Err()
				}
			}
		}

		item, ok, err := src.Next(ctx)
		last = time.Now()

		return item, ok, err
	})
}
