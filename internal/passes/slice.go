package passes

import (
	"strconv"

	"github.com/mathemads/bonsai/pkg/tree"
)

// Slice removes the given features from the tree, each retaining only the
// subtree consistent with its configured value. Subtrees testing other
// values are deleted, decision nodes left with a single conditional child
// are spliced out, and default branches are reconciled so the pruned tree
// stays total. Runs over an explicit candidate worklist; containers under
// mutation are never iterated.
func Slice(t *tree.Tree, sliceFeatures []string, retainedValues map[string]string) error {
	for _, feature := range sliceFeatures {
		raw, ok := retainedValues[feature]
		if !ok {
			return &tree.ConfigError{Reason: "no retained value configured for slice feature " + feature}
		}
		retained := parseRetained(raw)

		// Snapshot candidates first; surgery on one node may remove others.
		var candidates []tree.NodeID
		for _, id := range t.NodeIDs() {
			n := t.Node(id)
			if n.IsLeaf() {
				continue
			}
			if splitsOn(n, feature) {
				candidates = append(candidates, id)
			}
		}
		for _, id := range candidates {
			if t.Node(id) == nil {
				continue
			}
			if err := sliceNode(t, id, feature, retained); err != nil {
				return err
			}
		}
	}

	pruneOrphans(t)
	collapseDefaults(t)
	return nil
}

func parseRetained(raw string) tree.Value {
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return tree.Number(f)
	}
	return tree.TextValue(raw)
}

func splitsOn(n *tree.Node, feature string) bool {
	for _, f := range n.Split {
		if f == feature {
			return true
		}
	}
	return false
}

func sliceNode(t *tree.Tree, id tree.NodeID, feature string, retained tree.Value) error {
	n := t.Node(id)

	var survivor tree.NodeID = tree.None
	var doomed []tree.NodeID
	othersRemain := false
	for _, c := range t.Children(id) {
		child := t.Node(c)
		if child.IsDefault() {
			continue
		}
		if n.Split[c] != feature {
			othersRemain = true
			continue
		}
		e := t.EdgeBetween(id, c)
		if e != nil && e.Matches(retained) && survivor == tree.None {
			survivor = c
		} else {
			doomed = append(doomed, c)
		}
	}
	for _, c := range doomed {
		t.RemoveSubtree(c)
	}

	def := t.DefaultChild(id)

	if survivor == tree.None {
		if othersRemain {
			// The sliced branch is simply gone; the remaining split
			// features and the default still cover every input.
			return nil
		}
		if def == tree.None {
			return &tree.StructuralError{Node: id, Reason: "retained value unreachable and no default branch to substitute"}
		}
		absorbDefault(t, id, def)
		return nil
	}

	child := t.Node(survivor)
	if child.IsLeaf() {
		if othersRemain {
			if def == tree.None {
				return &tree.StructuralError{Node: id, Reason: "sliced leaf has no default branch to merge into"}
			}
			copyLeafOnto(t, def, survivor)
			t.RemoveSubtree(survivor)
			return nil
		}
		becomeLeaf(t, id, survivor)
		if def != tree.None {
			t.RemoveSubtree(def)
		}
		t.RemoveSubtree(survivor)
		return nil
	}

	spliceOut(t, id, survivor, def, feature)
	return nil
}

// absorbDefault turns node id into whatever its default child was: payload,
// split and children move up one level. The node keeps its own state and
// its role relative to its parent.
func absorbDefault(t *tree.Tree, id, def tree.NodeID) {
	n := t.Node(id)
	d := t.Node(def)

	n.Kind = d.Kind
	n.Output = d.Output
	n.HasOutput = d.HasOutput
	n.Smart = d.Smart
	n.Compute = d.Compute
	n.LeafName = d.LeafName
	n.SplitFeature = d.SplitFeature
	n.Split = make(map[tree.NodeID]string)

	children := t.Children(def)
	for _, c := range children {
		if f, ok := d.Split[c]; ok {
			n.Split[c] = f
		}
		t.Reattach(c, id)
	}
	t.RemoveNode(def)
}

// copyLeafOnto copies the leaf payload of src onto dst, making dst the new
// default leaf. Any subtree dst carried is deleted first.
func copyLeafOnto(t *tree.Tree, dst, src tree.NodeID) {
	for _, c := range t.Children(dst) {
		t.RemoveSubtree(c)
	}
	d := t.Node(dst)
	s := t.Node(src)
	d.Kind = tree.KindLeaf
	d.DefaultLeaf = true
	d.DefaultNode = false
	d.Output = s.Output
	d.HasOutput = s.HasOutput
	d.Smart = s.Smart
	d.Compute = s.Compute
	d.LeafName = s.LeafName
	d.SplitFeature = ""
	d.Split = nil
}

// becomeLeaf makes node id a leaf carrying the payload of leaf.
func becomeLeaf(t *tree.Tree, id, leaf tree.NodeID) {
	n := t.Node(id)
	l := t.Node(leaf)
	n.Kind = tree.KindLeaf
	n.Output = l.Output
	n.HasOutput = l.HasOutput
	n.Smart = l.Smart
	n.Compute = l.Compute
	n.LeafName = l.LeafName
	n.SplitFeature = ""
	n.Split = nil
}

// spliceOut removes the surviving internal child, reconnecting its
// children directly to the parent, dropping the sliced feature from the
// spliced subtree's states and merging the child's default branch into the
// parent's.
func spliceOut(t *tree.Tree, parent, survivor, parentDefault tree.NodeID, feature string) {
	// Strip the sliced feature from the spliced subtree's states.
	queue := []tree.NodeID{survivor}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		t.Node(cur).State.Delete(feature)
		queue = append(queue, t.Children(cur)...)
	}

	s := t.Node(survivor)
	survivorDefault := t.DefaultChild(survivor)

	// Merge the survivor's default branch into the parent's. The
	// survivor's default carries the routing the retained inputs would
	// have seen, so it wins.
	switch {
	case survivorDefault == tree.None:
		// Parent's default, if any, stays.
	case parentDefault == tree.None:
		t.Reattach(survivorDefault, parent)
	default:
		sd := t.Node(survivorDefault)
		pd := t.Node(parentDefault)
		if sd.IsLeaf() && pd.IsLeaf() {
			copyLeafOnto(t, parentDefault, survivorDefault)
			t.RemoveSubtree(survivorDefault)
		} else {
			t.RemoveSubtree(parentDefault)
			t.Reattach(survivorDefault, parent)
		}
	}

	p := t.Node(parent)
	if p.Split == nil {
		p.Split = make(map[tree.NodeID]string)
	}
	for _, c := range t.Children(survivor) {
		if f, ok := s.Split[c]; ok {
			p.Split[c] = f
		}
		t.Reattach(c, parent)
	}
	if p.SplitFeature == feature {
		p.SplitFeature = s.SplitFeature
	}
	t.RemoveNode(survivor)
}

// pruneOrphans removes nodes left with no parent and no children by the
// splicing surgery.
func pruneOrphans(t *tree.Tree) {
	if t.Len() <= 1 {
		return
	}
	for _, id := range t.NodeIDs() {
		n := t.Node(id)
		if n != nil && n.Parent == tree.None && len(t.Children(id)) == 0 {
			t.RemoveNode(id)
		}
	}
}

// collapseDefaults repeatedly folds a default leaf that is an only child
// into its parent, propagating upward until no such case remains.
func collapseDefaults(t *tree.Tree) {
	for {
		changed := false
		for _, id := range t.NodeIDs() {
			n := t.Node(id)
			if n == nil || n.IsLeaf() {
				continue
			}
			children := t.Children(id)
			if len(children) != 1 {
				continue
			}
			only := t.Node(children[0])
			if !only.DefaultLeaf {
				continue
			}
			becomeLeaf(t, id, children[0])
			t.RemoveSubtree(children[0])
			changed = true
		}
		if !changed {
			return
		}
	}
}
