package buffer

import "fmt"

// Policy selects the capacity and overflow behavior of a buffer.
// Policies form a closed, uniform tagged variant rather than an inheritance
// hierarchy: every policy is handled by the same [Writer] and [Reader]
// types, distinguished only by this value.
type Policy int

const (
	// Unbounded always accepts a publish; memory grows with the backlog.
	Unbounded Policy = iota
	// BoundedWait makes the producer wait for capacity. This is the primary
	// backpressure policy.
	BoundedWait
	// BoundedDropOldest evicts the head of the buffer to accept a new item
	// when full. Useful for "latest wins" telemetry.
	BoundedDropOldest
	// BoundedDropNewest rejects the incoming item when full, keeping
	// whatever is already buffered. Useful for "first wins" sampling.
	BoundedDropNewest
	// BoundedFail surfaces a rejection to the caller when full, for strict
	// callers that want to react rather than silently drop or wait.
	BoundedFail
)

// String returns a lowercase, hyphenated name for p, matching the
// vocabulary used in topology configuration files.
func (p Policy) String() string {
	switch p {
	case Unbounded:
		return "unbounded"
	case BoundedWait:
		return "bounded-wait"
	case BoundedDropOldest:
		return "bounded-drop-oldest"
	case BoundedDropNewest:
		return "bounded-drop-newest"
	case BoundedFail:
		return "bounded-fail"
	default:
		return fmt.Sprintf("buffer.Policy(%d)", int(p))
	}
}

// ParsePolicy parses the string form produced by [Policy.String].
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "unbounded":
		return Unbounded, nil
	case "bounded-wait":
		return BoundedWait, nil
	case "bounded-drop-oldest":
		return BoundedDropOldest, nil
	case "bounded-drop-newest":
		return BoundedDropNewest, nil
	case "bounded-fail":
		return BoundedFail, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// EnqueueOutcome reports what happened to an item passed to
// [Writer.TryEnqueue] or [Writer.EnqueueBlocking].
type EnqueueOutcome int

const (
	// Accepted means the item was enqueued and will be delivered in order.
	Accepted EnqueueOutcome = iota
	// RejectedFull means the buffer was full and the policy does not wait
	// (BoundedDropNewest, BoundedFail) or the drop-oldest eviction raced
	// with a concurrent sender and lost.
	RejectedFull
	// RejectedClosed means the Writer end was already completed or
	// faulted; the item was not enqueued.
	RejectedClosed
	// Cancelled means the caller's context was done before a
	// BoundedWait enqueue could complete; the item was not enqueued and is
	// returned to the caller to decide its fate.
	Cancelled
)

// String returns a human-readable name, used in diagnostics events.
func (o EnqueueOutcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case RejectedFull:
		return "rejected-full"
	case RejectedClosed:
		return "rejected-closed"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("buffer.EnqueueOutcome(%d)", int(o))
	}
}
