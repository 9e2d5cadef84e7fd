package topology

import (
	"context"
	"fmt"
	"os"

	"go.pipeflow.dev/pipeflow/buffer"
	"go.pipeflow.dev/pipeflow/diagnostics"
	"go.pipeflow.dev/pipeflow/flow"
	"go.pipeflow.dev/pipeflow/format"
	"go.pipeflow.dev/pipeflow/source"
)

// Run is a started topology: a [flow.Flow] ready to be consumed, and one
// feed function per configured source that must be run (typically each in
// its own goroutine, e.g. via [golang.org/x/sync/errgroup.Group]) to
// actually move data.
type Run struct {
	Flow  *flow.Flow[format.Record]
	Feeds []Feed
}

// Feed is one source's data-moving function, ready to run.
type Feed struct {
	Name string
	Run  func(ctx context.Context) error
}

// Build wires cfg into a [Run]. Build assumes cfg has already passed
// [Config.Validate]. An unknown policy makes Build return an error; an
// unknown adapter is not checked here, and the matching Feed's Run panics
// when called.
func (c *Config) Build(diag diagnostics.Sink) (*Run, error) {
	fl := flow.New[format.Record](flow.WithDiagnostics[format.Record](diag))

	feeds := make([]Feed, 0, len(c.Sources))

	for _, sc := range c.Sources {
		sc := sc

		policy, err := buffer.ParsePolicy(sc.Policy)
		if err != nil {
			return nil, fmt.Errorf("topology: build source %q: %w", sc.Name, err)
		}

		capacity := sc.Capacity
		if capacity < 1 {
			capacity = 1
		}

		src := source.New[format.Record](
			source.WithName[format.Record](sc.Name),
			source.WithDiagnostics[format.Record](diag),
		)

		fl.Attach(src, policy, capacity)

		feeds = append(feeds, Feed{
			Name: sc.Name,
			Run: func(ctx context.Context) error {
				f, openErr := os.Open(sc.Path)
				if openErr != nil {
					src.Fault(openErr)

					return fmt.Errorf("topology: open %q for source %q: %w", sc.Path, sc.Name, openErr)
				}
				defer f.Close()

				switch sc.Adapter {
				case AdapterCSV:
					return format.FeedCSV(ctx, src, f)
				case AdapterJSONLines:
					return format.FeedJSONLines(ctx, src, f)
				case AdapterYAMLDocs:
					return format.FeedYAMLDocuments(ctx, src, f)
				default:
					panic(fmt.Sprintf("topology: unvalidated adapter %q reached Build", sc.Adapter))
				}
			},
		})
	}

	return &Run{Flow: fl, Feeds: feeds}, nil
}
