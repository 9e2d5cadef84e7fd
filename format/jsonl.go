package format

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	"go.pipeflow.dev/pipeflow/source"
)

// FeedJSONLines reads r one line at a time, skips blank lines, decodes
// each remaining line as a JSON object, and publishes it as a [Record] to
// src until EOF, a decode error, or ctx is cancelled. The Source is
// completed (cleanly or with a fault) before FeedJSONLines returns.
func FeedJSONLines(ctx context.Context, src *source.Source[Record], r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			src.Fault(ctx.Err())

			return ctx.Err()
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			src.Fault(err)

			return err
		}

		if pubErr := src.Publish(ctx, rec); pubErr != nil {
			src.Fault(pubErr)

			return pubErr
		}
	}

	if err := scanner.Err(); err != nil {
		src.Fault(err)

		return err
	}

	src.Complete()

	return nil
}
