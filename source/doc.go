// Package source implements the publish side of the flow engine: a
// [Source] accepts items from producing code and fans each one out to every
// [go.pipeflow.dev/pipeflow/buffer.Writer] currently attached to it.
//
// A Source has no notion of a Flow or a Consumer; it only knows how to
// publish to whatever Writers are attached at the moment of publish, and
// how to complete (cleanly or with a fault) so every attached Writer is
// marked complete in turn. [go.pipeflow.dev/pipeflow/flow.Flow] is what
// attaches a fresh Buffer's Writer end to a Source when a topology wires
// the two together.
//
//	src := source.New[int]()
//	w, r := buffer.New[int](buffer.BoundedWait, 16)
//	src.AddWriter(w)
//
//	go func() {
//	    for i := range 10 {
//	        src.Publish(context.Background(), i)
//	    }
//	    src.Complete()
//	}()
//
//	for {
//	    v, ok, err := r.Recv(context.Background())
//	    if !ok {
//	        break
//	    }
//	    fmt.Println(v)
//	}
package source
