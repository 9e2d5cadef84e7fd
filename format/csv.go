package format

import (
	"context"
	"encoding/csv"
	"io"

	"go.pipeflow.dev/pipeflow/source"
)

// CSVOption configures [FeedCSV].
type CSVOption func(*csv.Reader)

// WithComma sets the field delimiter. Defaults to comma.
func WithComma(r rune) CSVOption {
	return func(cr *csv.Reader) {
		cr.Comma = r
	}
}

// WithComment sets the comment-line marker. Lines starting with r are
// skipped. Disabled by default.
func WithComment(r rune) CSVOption {
	return func(cr *csv.Reader) {
		cr.Comment = r
	}
}

// FeedCSV reads r as CSV, treats the first row as field names, and
// publishes one [Record] per subsequent row to src until EOF, a read
// error, or ctx is cancelled. The Source is completed (cleanly or with a
// fault) before FeedCSV returns.
func FeedCSV(ctx context.Context, src *source.Source[Record], r io.Reader, opts ...CSVOption) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	for _, opt := range opts {
		opt(cr)
	}

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			src.Complete()

			return nil
		}

		src.Fault(err)

		return err
	}

	for {
		select {
		case <-ctx.Done():
			src.Fault(ctx.Err())

			return ctx.Err()
		default:
		}

		row, err := cr.Read()
		if err == io.EOF {
			src.Complete()

			return nil
		}

		if err != nil {
			src.Fault(err)

			return err
		}

		rec := make(Record, len(header))

		for i, field := range header {
			if i < len(row) {
				rec[field] = row[i]
			}
		}

		if pubErr := src.Publish(ctx, rec); pubErr != nil {
			src.Fault(pubErr)

			return pubErr
		}
	}
}
