// Package flow implements the fan-in aggregator that sits between one or
// more [go.pipeflow.dev/pipeflow/source.Source] feeds and a single pull-based
// [Consumer].
//
// A [Flow] owns the live set of [Subscription]s: each pairs a Source with
// the [go.pipeflow.dev/pipeflow/buffer.Writer]/[go.pipeflow.dev/pipeflow/buffer.Reader]
// pair [Flow.Attach] allocates for it. Sources can be attached or detached at
// any time, including while a [Consumer] is mid-iteration; the Consumer
// rebuilds its wait set on the fly rather than requiring a fixed topology up
// front. Because the number of Readers is only known at runtime, the
// Consumer cannot use a static Go select statement (whose case list is fixed
// at compile time) to wait across them; it instead builds a dynamic case
// list with [reflect.Select] every time the attached-Reader set changes,
// folding in one extra case for a topology-changed notification so a newly
// attached Reader is picked up without the Consumer needing to poll.
//
// Items from different Sources interleave in delivery order with no
// ordering guarantee across sources; items from the same Source are never
// reordered. A Source whose Writer end has completed is detached
// automatically and does not reappear. [Flow.Detach] removes the Writer from
// its Source before completing it, so an explicit detach of a still-live
// Source can never leave that Source publishing into a buffer nothing
// drains.
//
//	fl := flow.New[int]()
//	fl.Attach(src, buffer.BoundedWait, 16)
//	fl.Close() // no further Attach; Next ends once src's items are drained
//
//	c := fl.Consumer()
//	for {
//	    v, ok, err := c.Next(context.Background())
//	    if !ok {
//	        break
//	    }
//	    fmt.Println(v)
//	}
package flow
