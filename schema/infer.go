package schema

import (
	"strings"

	"github.com/goccy/go-yaml/ast"
	"github.com/google/jsonschema-go/jsonschema"
)

// JSON Schema type constants.
const (
	typeBoolean = "boolean"
	typeInteger = "integer"
	typeNumber  = "number"
	typeString  = "string"
	typeArray   = "array"
	typeObject  = "object"
)

// inferType returns the JSON Schema type string for node. Returns an empty
// string for null/empty values (maximally permissive).
func inferType(node ast.Node) string {
	node = unwrapNode(node)

	switch node.(type) {
	case *ast.BoolNode:
		return typeBoolean
	case *ast.IntegerNode:
		return typeInteger
	case *ast.FloatNode, *ast.InfinityNode, *ast.NanNode:
		return typeNumber
	case *ast.StringNode, *ast.LiteralNode:
		return typeString
	case *ast.SequenceNode:
		return typeArray
	case *ast.MappingNode, *ast.MappingValueNode:
		return typeObject
	default:
		return ""
	}
}

// unwrapNode resolves TagNode and AnchorNode wrappers to the underlying
// value node.
func unwrapNode(node ast.Node) ast.Node {
	for {
		switch n := node.(type) {
		case *ast.TagNode:
			node = n.Value
		case *ast.AnchorNode:
			node = n.Value
		default:
			return node
		}
	}
}

// extractComment pulls a plain-text description out of a mapping value
// node's head or inline comments.
func extractComment(node ast.Node) string {
	mvn, ok := node.(*ast.MappingValueNode)
	if !ok {
		return ""
	}

	if desc := cleanComment(mvn.GetComment()); desc != "" {
		return desc
	}

	if mvn.Value != nil {
		if desc := cleanComment(mvn.Value.GetComment()); desc != "" {
			return desc
		}
	}

	if keyNode, ok := mvn.Key.(ast.Node); ok {
		if desc := cleanComment(keyNode.GetComment()); desc != "" {
			return desc
		}
	}

	return ""
}

// cleanComment strips comment markers and blank lines, returning the
// remaining lines joined with spaces.
func cleanComment(comment *ast.CommentGroupNode) string {
	if comment == nil {
		return ""
	}

	lines := strings.Split(comment.String(), "\n")

	var parts []string

	for _, line := range lines {
		cleaned := strings.TrimSpace(strings.TrimPrefix(strings.TrimLeft(strings.TrimSpace(line), "#"), " "))
		if cleaned != "" {
			parts = append(parts, cleaned)
		}
	}

	return strings.Join(parts, " ")
}

// inferItemsSchema infers an items schema from a sequence node's scalar
// elements, widening mixed types. Returns nil for an empty sequence.
func inferItemsSchema(seq *ast.SequenceNode) *jsonschema.Schema {
	if len(seq.Values) == 0 {
		return nil
	}

	resultType := inferType(seq.Values[0])

	for _, val := range seq.Values[1:] {
		resultType = widenType(resultType, inferType(val))
	}

	if resultType == "" {
		return nil
	}

	return &jsonschema.Schema{Type: resultType}
}

// widenType returns the widened JSON Schema type when merging two type
// strings, or "" (no constraint) for incompatible types.
func widenType(a, b string) string {
	switch {
	case a == b:
		return a
	case a == "":
		return b
	case b == "":
		return a
	case (a == typeInteger && b == typeNumber) || (a == typeNumber && b == typeInteger):
		return typeNumber
	default:
		return ""
	}
}

// isBlank reports whether data contains only whitespace.
func isBlank(data []byte) bool {
	return len(strings.TrimSpace(string(data))) == 0
}
