package schema

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
	"github.com/google/jsonschema-go/jsonschema"
)

// Sentinel errors returned by [Generator.Generate].
var ErrInvalidYAML = errors.New("schema: invalid yaml")

// Generator produces a JSON Schema from sample YAML/JSON documents (JSON is
// a subset of YAML, so JSON Lines samples parse the same way).
type Generator struct {
	title       string
	description string
	id          string
	strict      bool
}

// Option configures a [Generator].
type Option func(*Generator)

// NewGenerator creates a Generator with the given options.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{}
	for _, opt := range opts {
		opt(g)
	}

	return g
}

// WithTitle sets the schema title.
func WithTitle(title string) Option {
	return func(g *Generator) { g.title = title }
}

// WithDescription sets the schema description.
func WithDescription(desc string) Option {
	return func(g *Generator) { g.description = desc }
}

// WithID sets the schema $id.
func WithID(id string) Option {
	return func(g *Generator) { g.id = id }
}

// WithStrict sets additionalProperties to false on every inferred object.
func WithStrict(strict bool) Option {
	return func(g *Generator) { g.strict = strict }
}

// Generate produces a JSON Schema from one or more sample documents, each a
// byte slice of YAML (or JSON) content describing one representative
// record. Multiple samples are merged with union semantics so a field
// present in only some samples still appears. No field is marked required,
// whether or not every sample has it.
func (g *Generator) Generate(samples ...[]byte) (*jsonschema.Schema, error) {
	var result *jsonschema.Schema

	if len(samples) == 0 {
		result = g.emptySchema()
	} else {
		schemas := make([]*jsonschema.Schema, 0, len(samples))

		for i, sample := range samples {
			s, err := g.generateSingle(sample)
			if err != nil {
				return nil, fmt.Errorf("schema: sample %d: %w", i, err)
			}

			schemas = append(schemas, s)
		}

		result = schemas[0]
		for _, s := range schemas[1:] {
			result = mergeSchemas(result, s)
		}
	}

	result.Schema = "http://json-schema.org/draft-07/schema#"

	if g.title != "" {
		result.Title = g.title
	}

	if g.description != "" {
		result.Description = g.description
	}

	if g.id != "" {
		result.ID = g.id
	}

	if (result.Type == typeObject || result.Properties != nil) && result.AdditionalProperties == nil {
		if g.strict {
			result.AdditionalProperties = FalseSchema()
		} else {
			result.AdditionalProperties = TrueSchema()
		}
	}

	return result, nil
}

func (g *Generator) generateSingle(input []byte) (*jsonschema.Schema, error) {
	if len(input) == 0 || isBlank(input) {
		return g.emptySchema(), nil
	}

	file, err := parser.ParseBytes(input, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidYAML, err)
	}

	if len(file.Docs) == 0 || file.Docs[0].Body == nil {
		return g.emptySchema(), nil
	}

	anchors := buildAnchorMap(file.Docs[0].Body)

	return g.walkNode(file.Docs[0].Body, anchors), nil
}

func (g *Generator) walkNode(node ast.Node, anchors map[string]ast.Node) *jsonschema.Schema {
	node = resolveAliases(node, anchors)
	node = unwrapNode(node)

	if node == nil {
		return &jsonschema.Schema{}
	}

	switch n := node.(type) {
	case *ast.MappingNode:
		return g.walkMapping(n, anchors)
	case *ast.MappingValueNode:
		return g.walkMapping(nil, anchors, n)
	case *ast.SequenceNode:
		return g.walkSequence(n, anchors)
	default:
		return g.walkScalar(node)
	}
}

func (g *Generator) walkMapping(mn *ast.MappingNode, anchors map[string]ast.Node, extra ...*ast.MappingValueNode) *jsonschema.Schema {
	schema := &jsonschema.Schema{
		Type:       typeObject,
		Properties: make(map[string]*jsonschema.Schema),
	}

	if g.strict {
		schema.AdditionalProperties = FalseSchema()
	} else {
		schema.AdditionalProperties = TrueSchema()
	}

	var values []*ast.MappingValueNode
	if mn != nil {
		values = mn.Values
	}

	values = append(values, extra...)

	var order []string

	for _, mvn := range values {
		keyName := mvn.Key.String()

		valueNode := resolveAliases(mvn.Value, anchors)
		valueNode = unwrapNode(valueNode)

		childSchema := g.walkNode(valueNode, anchors)
		if childSchema.Description == "" {
			childSchema.Description = extractComment(mvn)
		}

		schema.Properties[keyName] = childSchema
		order = append(order, keyName)
	}

	schema.PropertyOrder = order

	if len(schema.Properties) == 0 {
		schema.Properties = nil
		schema.PropertyOrder = nil
	}

	return schema
}

func (g *Generator) walkSequence(seq *ast.SequenceNode, anchors map[string]ast.Node) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:  typeArray,
		Items: g.inferItemsFromSequence(seq, anchors),
	}
}

func (g *Generator) inferItemsFromSequence(seq *ast.SequenceNode, anchors map[string]ast.Node) *jsonschema.Schema {
	if len(seq.Values) == 0 {
		return nil
	}

	allMappings := true

	for _, val := range seq.Values {
		resolved := unwrapNode(resolveAliases(val, anchors))
		if _, ok := resolved.(*ast.MappingNode); !ok {
			allMappings = false

			break
		}
	}

	if !allMappings {
		return inferItemsSchema(seq)
	}

	var result *jsonschema.Schema

	for _, val := range seq.Values {
		resolved := unwrapNode(resolveAliases(val, anchors))
		s := g.walkNode(resolved, anchors)

		if result == nil {
			result = s
		} else {
			result = mergeSchemas(result, s)
		}
	}

	return result
}

func (g *Generator) walkScalar(node ast.Node) *jsonschema.Schema {
	if t := inferType(node); t != "" {
		return &jsonschema.Schema{Type: t}
	}

	return &jsonschema.Schema{}
}

func (g *Generator) emptySchema() *jsonschema.Schema {
	return &jsonschema.Schema{}
}

// buildAnchorMap walks node and collects every YAML anchor definition.
func buildAnchorMap(node ast.Node) map[string]ast.Node {
	anchors := make(map[string]ast.Node)
	ast.Walk(&anchorVisitor{anchors: anchors}, node)

	return anchors
}

type anchorVisitor struct {
	anchors map[string]ast.Node
}

func (v *anchorVisitor) Visit(node ast.Node) ast.Visitor {
	if anchor, ok := node.(*ast.AnchorNode); ok {
		v.anchors[anchor.Name.String()] = anchor.Value
	}

	return v
}

// resolveAliases resolves an alias node using anchors; an unresolvable
// alias is treated as null.
func resolveAliases(node ast.Node, anchors map[string]ast.Node) ast.Node {
	if node == nil {
		return nil
	}

	alias, ok := node.(*ast.AliasNode)
	if !ok {
		return node
	}

	if resolved, found := anchors[alias.Value.String()]; found {
		return resolved
	}

	return nil
}
