// Package graphdoc decodes an externally built graph document into the
// typed tree arena. The external model-to-graph builder ships its output
// as a map-shaped document (YAML or JSON); this adapter is the boundary
// where that loose shape becomes the strict IR the compiler passes expect.
package graphdoc

import (
	"fmt"
	"sort"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/mathemads/bonsai/pkg/tree"
)

// NodeDoc is the serialized form of one graph node. It uses mapstructure
// tags so documents decoded from YAML or JSON both land here.
type NodeDoc struct {
	ID    int            `mapstructure:"id"`
	Split string         `mapstructure:"split"`
	State map[string]any `mapstructure:"state"`

	Leaf        bool `mapstructure:"is_leaf"`
	DefaultLeaf bool `mapstructure:"is_default_leaf"`
	DefaultNode bool `mapstructure:"is_default_node"`
	Smart       bool `mapstructure:"is_smart"`

	Output *float64 `mapstructure:"output"`

	LeafName   string   `mapstructure:"leaf_name"`
	Value      *float64 `mapstructure:"value"`
	InputField string   `mapstructure:"input_field"`
	Multiplier *float64 `mapstructure:"multiplier"`
	Offset     *float64 `mapstructure:"offset"`
	MinValue   *float64 `mapstructure:"min_value"`
	MaxValue   *float64 `mapstructure:"max_value"`
}

// ComponentDoc is one dimension of a compound edge test.
type ComponentDoc struct {
	Feature string `mapstructure:"feature"`
	Type    string `mapstructure:"type"`
	Value   any    `mapstructure:"value"`
	Negated bool   `mapstructure:"negated"`
}

// EdgeDoc is the serialized form of one edge.
type EdgeDoc struct {
	From       int            `mapstructure:"from"`
	To         int            `mapstructure:"to"`
	Type       string         `mapstructure:"type"`
	Value      any            `mapstructure:"value"`
	Negated    bool           `mapstructure:"negated"`
	Join       string         `mapstructure:"join"`
	Components []ComponentDoc `mapstructure:"components"`
}

// Document is a complete graph as delivered by the external builder.
type Document struct {
	Nodes []NodeDoc `mapstructure:"nodes"`
	Edges []EdgeDoc `mapstructure:"edges"`
}

// Parse decodes raw YAML (or JSON, which YAML subsumes) into a tree.
func Parse(data []byte) (*tree.Tree, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse graph document: %w", err)
	}

	var doc Document
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &doc,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode graph document: %w", err)
	}
	return FromDocument(&doc)
}

// FromDocument builds the arena tree from a decoded document.
func FromDocument(doc *Document) (*tree.Tree, error) {
	t := tree.New()
	ids := make(map[int]tree.NodeID, len(doc.Nodes))

	for _, nd := range doc.Nodes {
		node, err := buildNode(nd)
		if err != nil {
			return nil, err
		}
		if _, dup := ids[nd.ID]; dup {
			return nil, fmt.Errorf("duplicate node id %d", nd.ID)
		}
		ids[nd.ID] = t.AddNode(node)
	}

	for _, ed := range doc.Edges {
		parent, ok := ids[ed.From]
		if !ok {
			return nil, fmt.Errorf("edge references unknown node %d", ed.From)
		}
		child, ok := ids[ed.To]
		if !ok {
			return nil, fmt.Errorf("edge references unknown node %d", ed.To)
		}
		edge, err := buildEdge(ed)
		if err != nil {
			return nil, err
		}
		t.Connect(parent, child, edge)
	}

	if err := t.Check(); err != nil {
		return nil, err
	}
	return t, nil
}

func buildNode(nd NodeDoc) (tree.Node, error) {
	node := tree.Node{
		Kind:         tree.KindDecision,
		SplitFeature: nd.Split,
		DefaultLeaf:  nd.DefaultLeaf,
		DefaultNode:  nd.DefaultNode,
		Smart:        nd.Smart,
		LeafName:     nd.LeafName,
		State:        tree.NewState(),
	}
	if nd.Leaf || nd.DefaultLeaf {
		node.Kind = tree.KindLeaf
	}
	if node.Kind == tree.KindLeaf && nd.Split != "" {
		return node, fmt.Errorf("node %d: leaf cannot carry a split", nd.ID)
	}
	if nd.Output != nil {
		node.Output = *nd.Output
		node.HasOutput = true
	}
	if nd.Smart {
		node.Compute = &tree.Compute{
			Value:      nd.Value,
			InputField: nd.InputField,
			Multiplier: nd.Multiplier,
			Offset:     nd.Offset,
			Min:        nd.MinValue,
			Max:        nd.MaxValue,
		}
	}

	// Map iteration order is random; insert state sorted by feature name
	// so identical documents produce identical trees.
	feats := make([]string, 0, len(nd.State))
	for f := range nd.State {
		feats = append(feats, f)
	}
	sort.Strings(feats)
	for _, f := range feats {
		v, err := decodeStateValue(nd.State[f])
		if err != nil {
			return node, fmt.Errorf("node %d, feature %q: %w", nd.ID, f, err)
		}
		node.State.Set(f, v)
	}
	return node, nil
}

func buildEdge(ed EdgeDoc) (tree.Edge, error) {
	edge := tree.Edge{Negated: ed.Negated}

	switch ed.Join {
	case "":
		edge.Join = tree.JoinNone
	case "any":
		edge.Join = tree.JoinAny
	case "every", "all":
		edge.Join = tree.JoinEvery
	default:
		return edge, fmt.Errorf("edge %d->%d: unknown join %q", ed.From, ed.To, ed.Join)
	}

	if ed.Type == "" && ed.Value == nil && len(ed.Components) == 0 {
		// Default-branch edge: no test.
		edge.Type = tree.Assignment
		edge.Value = tree.Absent()
		return edge, nil
	}

	typ, ok := tree.ParseEdgeType(ed.Type)
	if !ok {
		return edge, fmt.Errorf("edge %d->%d: unknown type %q", ed.From, ed.To, ed.Type)
	}
	edge.Type = typ

	if len(ed.Components) > 0 {
		for _, cd := range ed.Components {
			ctyp, ok := tree.ParseEdgeType(cd.Type)
			if !ok {
				return edge, fmt.Errorf("edge %d->%d: unknown component type %q", ed.From, ed.To, cd.Type)
			}
			v, err := decodeValue(cd.Value, ctyp)
			if err != nil {
				return edge, fmt.Errorf("edge %d->%d: %w", ed.From, ed.To, err)
			}
			edge.Compound = append(edge.Compound, tree.Component{
				Feature: cd.Feature,
				Type:    ctyp,
				Value:   v,
				Negated: cd.Negated,
			})
		}
		return edge, nil
	}

	v, err := decodeValue(ed.Value, typ)
	if err != nil {
		return edge, fmt.Errorf("edge %d->%d: %w", ed.From, ed.To, err)
	}
	edge.Value = v
	return edge, nil
}

// decodeValue converts a loosely typed document value into the tagged
// variant, guided by the edge type: two-element numeric lists on range
// edges become interval bounds, other lists become membership sets.
func decodeValue(raw any, typ tree.EdgeType) (tree.Value, error) {
	if typ == tree.Range {
		return decodeRange(raw)
	}
	return decodeScalarOrList(raw)
}

func decodeRange(raw any) (tree.Value, error) {
	items, ok := raw.([]any)
	if !ok || len(items) != 2 {
		return tree.Value{}, fmt.Errorf("range value must be a two-element list, got %v", raw)
	}
	var lo, hi *float64
	if items[0] != nil {
		f, ok := asNumber(items[0])
		if !ok {
			return tree.Value{}, fmt.Errorf("range lower bound %v is not numeric", items[0])
		}
		lo = &f
	}
	if items[1] != nil {
		f, ok := asNumber(items[1])
		if !ok {
			return tree.Value{}, fmt.Errorf("range upper bound %v is not numeric", items[1])
		}
		hi = &f
	}
	return tree.SpanBounds(lo, hi), nil
}

func decodeScalarOrList(raw any) (tree.Value, error) {
	switch v := raw.(type) {
	case nil:
		return tree.Absent(), nil
	case []any:
		members := make([]tree.Value, len(v))
		for i, m := range v {
			mv, err := decodeScalarOrList(m)
			if err != nil {
				return tree.Value{}, err
			}
			members[i] = mv
		}
		return tree.ListValue(members...), nil
	case string:
		return tree.TextValue(v), nil
	case bool:
		return tree.TextValue(fmt.Sprintf("%t", v)), nil
	default:
		if f, ok := asNumber(raw); ok {
			if f == float64(int64(f)) {
				return tree.Int(int(f)), nil
			}
			return tree.Number(f), nil
		}
	}
	return tree.Value{}, fmt.Errorf("unsupported value %v", raw)
}

// decodeStateValue decodes node state entries, where a two-element
// all-numeric list means a bounds tuple rather than a membership set.
func decodeStateValue(raw any) (tree.Value, error) {
	if items, ok := raw.([]any); ok && len(items) == 2 {
		_, loNum := asNumber(items[0])
		_, hiNum := asNumber(items[1])
		if (loNum || items[0] == nil) && (hiNum || items[1] == nil) {
			return decodeRange(raw)
		}
	}
	return decodeScalarOrList(raw)
}

func asNumber(raw any) (float64, bool) {
	switch v := raw.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}
