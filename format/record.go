package format

// Record is the common item type produced by every adapter in this
// package, so a single [go.pipeflow.dev/pipeflow/topology] configuration
// can swap one input format for another without touching downstream
// operators.
type Record map[string]any
