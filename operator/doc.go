// Package operator provides stateless transforms over a
// [go.pipeflow.dev/pipeflow/flow.Consumer]'s pulled items: parallel map
// (ordered or unordered), filter, and take.
//
// [MapOrdered] and [MapUnordered] run worker-count goroutines bounded by
// [golang.org/x/sync/semaphore.Weighted] and joined with
// [golang.org/x/sync/errgroup.Group]. MapOrdered additionally buffers
// completed-but-not-yet-due results in a reorder map so results are emitted
// in input order even though workers finish out of order; the reorder map
// has no size limit, so one slow item lets it grow by every later result
// that finishes first. MapUnordered skips that buffer and emits as soon as a worker
// finishes, trading order for lower latency.
package operator
