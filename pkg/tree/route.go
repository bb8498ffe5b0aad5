package tree

// Route walks a concrete feature-assignment vector from the root down to
// the leaf the tree selects for it. Non-default children are tried in Out
// order; the default branch catches inputs no sibling matched. Routing
// reflects graph semantics only and is independent of any emission
// decoration, which makes it usable to cross-check the emitted text and
// the effect of slicing.
func (t *Tree) Route(input map[string]Value) (NodeID, error) {
	cur, err := t.Root()
	if err != nil {
		return None, err
	}
	lookup := func(feature string) (Value, bool) {
		v, ok := input[feature]
		return v, ok
	}

	for {
		n := t.Node(cur)
		if n.IsLeaf() {
			return cur, nil
		}

		next := None
		for _, eid := range n.Out {
			e := t.Edge(eid)
			if e == nil {
				continue
			}
			c := t.Node(e.Child)
			if c == nil || c.IsDefault() {
				continue
			}
			if len(e.Compound) > 0 {
				if e.MatchesCompound(lookup) {
					next = c.ID
					break
				}
				continue
			}
			feature, ok := n.Split[c.ID]
			if !ok {
				feature = n.SplitFeature
			}
			v, present := input[feature]
			if !present {
				v = Absent()
			}
			if e.Matches(v) {
				next = c.ID
				break
			}
		}
		if next == None {
			next = t.DefaultChild(cur)
			if next == None {
				return None, &StructuralError{Node: cur, Reason: "no branch matched and no default to fall back on"}
			}
		}
		cur = next
	}
}
