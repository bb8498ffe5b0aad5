package passes

import (
	"fmt"
	"strings"

	"github.com/mathemads/bonsai/pkg/config"
	"github.com/mathemads/bonsai/pkg/tree"
)

// placeholder renders an unset compute parameter.
const placeholder = "_"

// Emit walks the fully decorated tree in orderer-determined sequence and
// produces the Bonsai text: switch headers, conditional and case clauses,
// default clauses and leaf output statements. The default clause keyword
// is always "else", under switch headers included.
func Emit(t *tree.Tree, cfg *config.Config) (string, error) {
	root, err := t.Root()
	if err != nil {
		return "", err
	}
	e := &emitter{tree: t, cfg: cfg, indexed: indexedObjects(t, cfg)}

	var sb strings.Builder
	if t.Node(root).IsLeaf() {
		e.writeLeafOutput(&sb, t.Node(root))
		return sb.String(), nil
	}

	// Pre-order, sibling-ordered: push a node's out-edges reversed so the
	// stack pops them in orderer sequence.
	stack := pushReversed(nil, t.Node(root).Out)
	for len(stack) > 0 {
		eid := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		edge := t.Edge(eid)
		if edge == nil {
			continue
		}
		parent := t.Node(edge.Parent)
		child := t.Node(edge.Child)
		if child == nil {
			continue
		}

		if err := e.writeEdge(&sb, parent, edge, child); err != nil {
			return "", err
		}
		stack = pushReversed(stack, child.Out)
	}
	return sb.String(), nil
}

func pushReversed(stack []tree.EdgeID, out []tree.EdgeID) []tree.EdgeID {
	for i := len(out) - 1; i >= 0; i-- {
		stack = append(stack, out[i])
	}
	return stack
}

type emitter struct {
	tree    *tree.Tree
	cfg     *config.Config
	indexed map[string]bool
}

// indexedObjects collects the features rendered as feature[value]: every
// object part of a compound feature seen anywhere in the tree, plus the
// configured extras.
func indexedObjects(t *tree.Tree, cfg *config.Config) map[string]bool {
	indexed := make(map[string]bool)
	note := func(feature string) {
		if idx := strings.Index(feature, "."); idx > 0 {
			indexed[feature[:idx]] = true
		}
	}
	for _, id := range t.NodeIDs() {
		n := t.Node(id)
		note(n.SplitFeature)
		for _, f := range n.Split {
			note(f)
		}
		for _, f := range n.State.Features() {
			note(f)
		}
	}
	for _, f := range cfg.IndexedFeatures {
		indexed[f] = true
	}
	return indexed
}

func (e *emitter) writeEdge(sb *strings.Builder, parent *tree.Node, edge *tree.Edge, child *tree.Node) error {
	// A pending switch header goes out right before the first case.
	if parent.Ann.SwitchHeader != "" && child.Ann.Cond == "if" {
		sb.WriteString(tabs(parent.Ann.Indent - 1))
		sb.WriteString("switch ")
		sb.WriteString(parent.Ann.SwitchHeader)
		sb.WriteString(":\n")
	}

	indent := tabs(parent.Ann.Indent)
	if child.IsDefault() {
		sb.WriteString(indent)
		sb.WriteString("else:\n")
	} else {
		line, err := e.conditionalLine(parent, edge, child)
		if err != nil {
			return err
		}
		sb.WriteString(indent)
		sb.WriteString(line)
		sb.WriteString(":\n")
	}

	if child.IsLeaf() {
		e.writeLeafOutput(sb, child)
	}
	return nil
}

func (e *emitter) conditionalLine(parent *tree.Node, edge *tree.Edge, child *tree.Node) (string, error) {
	// Range cases under a synthesized switch header drop the conditional
	// keyword entirely.
	if parent.Ann.SwitchHeader != "" && edge.Type == tree.Range && len(edge.Compound) == 0 {
		return caseClause(edge)
	}

	feature := parent.Split[child.ID]
	if feature == "" {
		feature = parent.SplitFeature
	}

	var clause string
	var err error
	if len(edge.Compound) > 0 {
		clause, err = e.compoundClause(edge, child.State)
	} else {
		clause, err = e.clause(feature, edge.Type, edge.Value, edge.Negated, child.State)
	}
	if err != nil {
		return "", err
	}
	return child.Ann.Cond + " " + clause, nil
}

func caseClause(edge *tree.Edge) (string, error) {
	lo, hi := edge.Value.Lo, edge.Value.Hi
	switch {
	case lo != nil && hi != nil:
		return fmt.Sprintf("case (%s .. %s)", tree.FormatNumber(*lo), tree.FormatNumber(*hi)), nil
	case lo != nil:
		return fmt.Sprintf("case (%s)", tree.FormatNumber(*lo)), nil
	case hi != nil:
		return fmt.Sprintf("case (%s)", tree.FormatNumber(*hi)), nil
	}
	return "", &tree.ConfigError{Reason: "range value with both bounds absent"}
}

// clause renders a single-component feature test, without the conditional
// keyword.
func (e *emitter) clause(feature string, typ tree.EdgeType, v tree.Value, negated bool, state *tree.State) (string, error) {
	prefix := ""
	if negated {
		prefix = "not "
	}

	if v.Kind == tree.KindAbsent || e.cfg.IsAbsence(feature, v.String()) {
		return prefix + FeatureReference(feature, state) + " absent", nil
	}

	ref := FeatureReference(feature, state)
	switch typ {
	case tree.Range:
		body, err := e.rangeClause(ref, feature, v)
		if err != nil {
			return "", err
		}
		return prefix + body, nil
	case tree.Membership:
		return prefix + ref + " in " + membershipList(v), nil
	case tree.Assignment:
		if e.indexed[feature] {
			return fmt.Sprintf("%s%s[%s]", prefix, feature, v.String()), nil
		}
		return fmt.Sprintf("%s%s = %s", prefix, ref, quoted(v)), nil
	case tree.Association:
		return fmt.Sprintf("%s%s: %s", prefix, ref, v.String()), nil
	}
	return "", &tree.ConfigError{Reason: fmt.Sprintf("unknown edge type %d", typ)}
}

func (e *emitter) rangeClause(ref, feature string, v tree.Value) (string, error) {
	lo, hi := v.Lo, v.Hi
	aggregated := false
	for _, f := range e.cfg.AggregationFeatures {
		if f == feature {
			aggregated = true
			break
		}
	}
	switch {
	case lo != nil && hi != nil && !aggregated:
		return fmt.Sprintf("%s range (%s, %s)", ref, tree.FormatNumber(*lo), tree.FormatNumber(*hi)), nil
	case lo != nil && hi != nil:
		return fmt.Sprintf("%s >= %s and %s <= %s", ref, tree.FormatNumber(*lo), ref, tree.FormatNumber(*hi)), nil
	case lo != nil:
		return fmt.Sprintf("%s >= %s", ref, tree.FormatNumber(*lo)), nil
	case hi != nil:
		return fmt.Sprintf("%s <= %s", ref, tree.FormatNumber(*hi)), nil
	}
	return "", &tree.ConfigError{Reason: "range value with both bounds absent"}
}

func (e *emitter) compoundClause(edge *tree.Edge, state *tree.State) (string, error) {
	quantifier, joiner := "any", " or "
	if edge.Join == tree.JoinEvery {
		quantifier, joiner = "every", " and "
	}

	parts := make([]string, 0, len(edge.Compound))
	for _, comp := range edge.Compound {
		if comp.Type == tree.Range && edge.Join != tree.JoinEvery {
			return "", &tree.ConfigError{Reason: "range test cannot be combined with an \"any\" quantifier"}
		}
		part, err := e.clause(comp.Feature, comp.Type, comp.Value, comp.Negated, state)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	return quantifier + " " + strings.Join(parts, joiner), nil
}

func membershipList(v tree.Value) string {
	members := v.List
	if v.Kind != tree.KindList {
		members = []tree.Value{v}
	}
	parts := make([]string, len(members))
	for i, m := range members {
		parts[i] = quoted(m)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

func quoted(v tree.Value) string {
	if v.IsNumeric() {
		return v.String()
	}
	return fmt.Sprintf("%q", v.String())
}

func (e *emitter) writeLeafOutput(sb *strings.Builder, leaf *tree.Node) {
	indent := tabs(leaf.Ann.Indent)

	if !leaf.Smart {
		fmt.Fprintf(sb, "%s%.4f\n", indent, leaf.Output)
		return
	}

	if leaf.LeafName != "" {
		fmt.Fprintf(sb, "%sleaf_name: %q\n", indent, leaf.LeafName)
	}
	c := leaf.Compute
	switch {
	case c != nil && c.Value != nil && *c.Value <= 0:
		fmt.Fprintf(sb, "%svalue: no_bid\n", indent)
	case c != nil && c.Value != nil:
		fmt.Fprintf(sb, "%svalue: %.4f\n", indent, *c.Value)
	default:
		fmt.Fprintf(sb, "%svalue: compute(%s, %s, %s, %s, %s)\n", indent,
			computeField(c), computeParam(c, func(c *tree.Compute) *float64 { return c.Multiplier }),
			computeParam(c, func(c *tree.Compute) *float64 { return c.Offset }),
			computeParam(c, func(c *tree.Compute) *float64 { return c.Min }),
			computeParam(c, func(c *tree.Compute) *float64 { return c.Max }))
	}
}

func computeField(c *tree.Compute) string {
	if c == nil || c.InputField == "" {
		return placeholder
	}
	return c.InputField
}

func computeParam(c *tree.Compute, get func(*tree.Compute) *float64) string {
	if c == nil {
		return placeholder
	}
	p := get(c)
	if p == nil {
		return placeholder
	}
	return tree.FormatNumber(*p)
}

func tabs(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("\t", n)
}
