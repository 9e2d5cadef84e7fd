// Package topology parses a YAML document declaring a set of named
// sources, each backed by a [go.pipeflow.dev/pipeflow/format] adapter and
// feeding a [go.pipeflow.dev/pipeflow/buffer] buffer with its own capacity
// policy, all fanning into one [go.pipeflow.dev/pipeflow/flow.Flow].
//
// [Parse] uses [github.com/goccy/go-yaml] to decode the document and
// [Config.Validate] checks every adapter name and buffer policy before any
// goroutine starts, so a malformed topology fails fast with
// [ErrUnknownAdapter] or wraps [go.pipeflow.dev/pipeflow/buffer.ErrUnknownPolicy]
// rather than failing partway through a run.
//
//	doc := `
//	sources:
//	  - name: orders
//	    adapter: csv
//	    path: orders.csv
//	    policy: bounded-wait
//	    capacity: 64
//	`
//	cfg, err := topology.Parse(strings.NewReader(doc))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package topology
