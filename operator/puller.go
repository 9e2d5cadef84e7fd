package operator

import "context"

// Puller is the minimal pull-iterator surface an operator consumes and
// produces. [go.pipeflow.dev/pipeflow/flow.Consumer] satisfies Puller, as do
// the results of [Filter], [Take] and [RateLimit]. [MapOrdered] and
// [MapUnordered] return a [go.pipeflow.dev/pipeflow/buffer.Reader], whose
// method is Recv rather than Next; wrap its Recv in a [PullerFunc] to feed
// it to another operator.
type Puller[T any] interface {
	Next(ctx context.Context) (item T, ok bool, err error)
}

// PullerFunc adapts a plain function to [Puller].
type PullerFunc[T any] func(ctx context.Context) (T, bool, error)

// Next calls f.
func (f PullerFunc[T]) Next(ctx context.Context) (T, bool, error) {
	return f(ctx)
}
