// Package passes implements the pipeline that turns a decision graph into
// Bonsai text: split normalization, value validation, slicing, sibling
// ordering, indentation, switch-header synthesis and emission. Each pass
// reads and mutates the caller-owned tree in place, decorating it with
// whatever the next pass needs.
package passes

import "github.com/mathemads/bonsai/pkg/tree"

// Normalize rewrites every node's single-feature split marker into the
// uniform child-to-feature mapping, so downstream passes always see a
// dict-shaped split regardless of how many distinct features a node
// branches on. No-op for nodes already carrying a mapping. Must run before
// any pass that reads Split.
func Normalize(t *tree.Tree) error {
	return t.Walk(func(id tree.NodeID) {
		n := t.Node(id)
		if n.IsLeaf() || len(n.Split) > 0 || n.SplitFeature == "" {
			return
		}
		n.Split = make(map[tree.NodeID]string)
		for _, c := range t.Children(id) {
			if t.Node(c).IsDefault() {
				continue
			}
			n.Split[c] = n.SplitFeature
		}
	})
}
