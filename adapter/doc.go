// Package adapter provides producer adapters that drive a
// [go.pipeflow.dev/pipeflow/source.Source] from something that is not
// itself push-based: a function polled on an interval, or an existing
// channel relayed in at a maximum throughput.
package adapter
