package adapter

import (
	"context"
	"time"

	"go.pipeflow.dev/pipeflow/diagnostics"
	"go.pipeflow.dev/pipeflow/source"
)

// PollFunc produces one item, or an error if this tick found nothing worth
// publishing.
type PollFunc[T any] func(ctx context.Context) (T, error)

// PollOption configures [Poll].
type PollOption func(*pollConfig)

type pollConfig struct {
	diag diagnostics.Sink
	name string
}

// WithPollDiagnostics attaches a sink for non-fatal observability events.
func WithPollDiagnostics(sink diagnostics.Sink) PollOption {
	return func(c *pollConfig) {
		c.diag = sink
	}
}

// WithPollName labels the adapter in diagnostics events.
func WithPollName(name string) PollOption {
	return func(c *pollConfig) {
		c.name = name
	}
}

// Poll calls fn every interval and publishes whatever it returns to src. A
// fn error is reported to diagnostics as [diagnostics.KindAdapterError] and
// that tick is skipped rather than treated as a source fault. Poll runs
// until ctx is done, at which point it calls [source.Source.Complete] and
// returns.
func Poll[T any](ctx context.Context, src *source.Source[T], interval time.Duration, fn PollFunc[T], opts ...PollOption) {
	cfg := pollConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	defer src.Complete()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			item, err := fn(ctx)
			if err != nil {
				diagnostics.Emit(cfg.diag, diagnostics.Event{
					Component: cfg.name,
					Kind:      diagnostics.KindAdapterError,
					Message:   "poll function returned an error; tick skipped",
					Err:       err,
				})

				continue
			}

			if pubErr := src.Publish(ctx, item); pubErr != nil {
				return
			}
		}
	}
}
