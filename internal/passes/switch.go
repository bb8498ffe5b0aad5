package passes

import (
	"fmt"
	"strings"

	"github.com/mathemads/bonsai/pkg/tree"
)

// Switches promotes qualifying decision nodes from a chained conditional
// style to a switch header with case clauses. A node qualifies iff its
// split touches exactly one feature and every non-default out-edge tests a
// numeric range. Each qualifying node's subtree is indented one extra
// level, since case clauses nest below the header; the header line itself
// is emitted one level above the node's widened depth.
func Switches(t *tree.Tree) error {
	var headers []tree.NodeID
	err := t.Walk(func(id tree.NodeID) {
		n := t.Node(id)
		if n.IsLeaf() || !qualifies(t, id) {
			return
		}
		feats := n.SplitFeatures(t)
		n.Ann.SwitchHeader = FeatureReference(feats[0], n.State)
		headers = append(headers, id)
	})
	if err != nil {
		return err
	}

	// Widen each dominated subtree. A node below several nested switch
	// headers is widened once per header.
	for _, h := range headers {
		queue := []tree.NodeID{h}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			t.Node(cur).Ann.Indent++
			queue = append(queue, t.Children(cur)...)
		}
	}
	return nil
}

func qualifies(t *tree.Tree, id tree.NodeID) bool {
	n := t.Node(id)
	if len(n.SplitFeatures(t)) != 1 {
		return false
	}
	conditional := 0
	for _, c := range t.Children(id) {
		if t.Node(c).IsDefault() {
			continue
		}
		e := t.EdgeBetween(id, c)
		if e == nil || e.Type != tree.Range || len(e.Compound) > 0 {
			return false
		}
		conditional++
	}
	return conditional > 0
}

// FeatureReference resolves a feature name for emission. A compound name
// of the form object.attribute renders as object[value].attribute, taking
// the object's concrete value from the enclosing state. Plain names, and
// compound names whose object has no value in scope, render verbatim.
func FeatureReference(feature string, state *tree.State) string {
	idx := strings.Index(feature, ".")
	if idx <= 0 {
		return feature
	}
	object, attribute := feature[:idx], feature[idx+1:]
	v, ok := state.Get(object)
	if !ok {
		return feature
	}
	return fmt.Sprintf("%s[%s].%s", object, v.String(), attribute)
}
