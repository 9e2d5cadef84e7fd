package format

import (
	"context"
	"io"

	"github.com/goccy/go-yaml"

	"go.pipeflow.dev/pipeflow/source"
)

// FeedYAMLDocuments reads r as a stream of `---`-separated YAML documents
// using [github.com/goccy/go-yaml]'s streaming decoder, publishing one
// [Record] per document to src until EOF, a decode error, or ctx is
// cancelled. The Source is completed (cleanly or with a fault) before
// FeedYAMLDocuments returns.
func FeedYAMLDocuments(ctx context.Context, src *source.Source[Record], r io.Reader) error {
	dec := yaml.NewDecoder(r)

	for {
		select {
		case <-ctx.Done():
			src.Fault(ctx.Err())

			return ctx.Err()
		default:
		}

		var rec Record
		if err := dec.Decode(&rec); err != nil {
			if err == io.EOF {
				src.Complete()

				return nil
			}

			src.Fault(err)

			return err
		}

		if pubErr := src.Publish(ctx, rec); pubErr != nil {
			src.Fault(pubErr)

			return pubErr
		}
	}
}
