package operator

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"go.pipeflow.dev/pipeflow/buffer"
	"go.pipeflow.dev/pipeflow/diagnostics"
)

// MapFunc transforms one item. A non-nil error fails that item; whether it
// fails the whole map depends on [WithContinueOnError].
type MapFunc[In, Out any] func(ctx context.Context, item In) (Out, error)

// Config controls a map operator's concurrency and error behavior.
type Config struct {
	workers         int
	perItemTimeout  time.Duration
	continueOnError bool
	diag            diagnostics.Sink
	name            string
}

// MapOption configures a map operator.
type MapOption func(*Config)

// WithWorkers sets the number of items processed concurrently. Values less
// than 1 are clamped to 1.
func WithWorkers(n int) MapOption {
	return func(c *Config) {
		if n < 1 {
			n = 1
		}

		c.workers = n
	}
}

// WithPerItemTimeout bounds each call to the map function with its own
// context timeout. Zero (the default) means no per-item timeout.
func WithPerItemTimeout(d time.Duration) MapOption {
	return func(c *Config) {
		c.perItemTimeout = d
	}
}

// WithContinueOnError makes a failing item get reported through
// diagnostics and skipped, rather than aborting the whole map with that
// item's error.
func WithContinueOnError() MapOption {
	return func(c *Config) {
		c.continueOnError = true
	}
}

// WithMapDiagnostics attaches a sink for non-fatal observability events.
func WithMapDiagnostics(sink diagnostics.Sink) MapOption {
	return func(c *Config) {
		c.diag = sink
	}
}

// WithMapName labels the operator in diagnostics events.
func WithMapName(name string) MapOption {
	return func(c *Config) {
		c.name = name
	}
}

func buildConfig(opts []MapOption) Config {
	cfg := Config{workers: 1}
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// MapUnordered applies fn to every item pulled from src using up to
// cfg.workers concurrent goroutines, bounded by
// [golang.org/x/sync/semaphore.Weighted] and joined with
// [golang.org/x/sync/errgroup.Group]. Results are delivered in whatever
// order their worker finishes, which need not match input order.
func MapUnordered[In, Out any](ctx context.Context, src Puller[In], fn MapFunc[In, Out], opts ...MapOption) *buffer.Reader[Out] {
	cfg := buildConfig(opts)
	w, r := buffer.New[Out](buffer.Unbounded, 0)

	go runUnordered(ctx, src, fn, cfg, w)

	return r
}

func runUnordered[In, Out any](ctx context.Context, src Puller[In], fn MapFunc[In, Out], cfg Config, w *buffer.Writer[Out]) {
	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(cfg.workers))

	var fatal error

pull:
	for {
		item, ok, err := src.Next(gctx)
		if !ok {
			if err != nil {
				fatal = err
			}

			break pull
		}

		if sem.Acquire(gctx, 1) != nil {
			break pull
		}

		g.Go(func() error {
			defer sem.Release(1)

			out, workErr := callWithTimeout(gctx, item, fn, cfg.perItemTimeout)
			if workErr != nil {
				return reportWorkerError(cfg, workErr)
			}

			w.EnqueueBlocking(gctx, out)

			return nil
		})
	}

	waitErr := g.Wait()

	w.CompleteErr(firstNonNil(fatal, waitErr))
}

// MapOrdered behaves like [MapUnordered] but buffers completed-but-not-yet-
// due results in memory until every earlier item has been emitted, so
// output order matches input order even though workers finish out of
// order.
func MapOrdered[In, Out any](ctx context.Context, src Puller[In], fn MapFunc[In, Out], opts ...MapOption) *buffer.Reader[Out] {
	cfg := buildConfig(opts)
	w, r := buffer.New[Out](buffer.Unbounded, 0)

	go runOrdered(ctx, src, fn, cfg, w)

	return r
}

type orderedResult[Out any] struct {
	seq int
	out Out
	err error
}

func runOrdered[In, Out any](ctx context.Context, src Puller[In], fn MapFunc[In, Out], cfg Config, w *buffer.Writer[Out]) {
	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(cfg.workers))

	results := make(chan orderedResult[Out], cfg.workers)
	drained := make(chan struct{})

	go func() {
		defer close(drained)

		pending := make(map[int]orderedResult[Out])
		next := 0

		for res := range results {
			pending[res.seq] = res

			for {
				r, ok := pending[next]
				if !ok {
					break
				}

				delete(pending, next)
				next++

				if r.err != nil {
					continue
				}

				w.EnqueueBlocking(gctx, r.out)
			}
		}
	}()

	var fatal error

	seq := 0

pull:
	for {
		item, ok, err := src.Next(gctx)
		if !ok {
			if err != nil {
				fatal = err
			}

			break pull
		}

		if sem.Acquire(gctx, 1) != nil {
			break pull
		}

		s := seq
		seq++

		g.Go(func() error {
			defer sem.Release(1)

			out, workErr := callWithTimeout(gctx, item, fn, cfg.perItemTimeout)
			if workErr != nil {
				results <- orderedResult[Out]{seq: s, err: workErr}

				return reportWorkerError(cfg, workErr)
			}

			results <- orderedResult[Out]{seq: s, out: out}

			return nil
		})
	}

	waitErr := g.Wait()
	close(results)
	<-drained

	w.CompleteErr(firstNonNil(fatal, waitErr))
}

func callWithTimeout[In, Out any](ctx context.Context, item In, fn MapFunc[In, Out], timeout time.Duration) (Out, error) {
	if timeout <= 0 {
		return fn(ctx, item)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return fn(ctx, item)
}

func reportWorkerError(cfg Config, err error) error {
	diagnostics.Emit(cfg.diag, diagnostics.Event{
		Component: cfg.name,
		Kind:      diagnostics.KindOperatorError,
		Message:   "map worker failed",
		Err:       err,
	})

	if cfg.continueOnError {
		return nil
	}

	return err
}

func firstNonNil(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	return nil
}
