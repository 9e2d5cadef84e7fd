// Package schema infers a JSON Schema describing the shape of records
// flowing through a [go.pipeflow.dev/pipeflow/topology] by structurally
// walking one or more sample YAML documents with
// [github.com/goccy/go-yaml]'s AST parser and building a
// [github.com/google/jsonschema-go/jsonschema.Schema].
//
// This is a smaller, purpose-built relative of a general-purpose
// Helm-values-to-JSON-Schema generator: it keeps the structural inference
// (scalar type detection, object/array recursion, anchor/alias resolution,
// union-merge across multiple samples) and drops the pluggable annotation
// system, since pipeflow topologies describe plain data records rather than
// chart values needing `@schema` and `@param` style author annotations.
//
//	gen := schema.NewGenerator(schema.WithTitle("orders"))
//	s, err := gen.Generate([]byte("id: 1\nqty: 2\n"), []byte("id: 2\nqty: 3\nnote: ok\n"))
package schema
