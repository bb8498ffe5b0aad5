package passes

import (
	"github.com/mathemads/bonsai/pkg/features"
	"github.com/mathemads/bonsai/pkg/tree"
)

// Validate checks the tree's structural invariants, then clamps and
// type-casts every node state entry and every edge value (compound
// components included) against the feature rule table. Fails with
// *tree.StructuralError on a malformed tree and *tree.ValidationError
// when a declared cast cannot convert a value; both are fatal,
// non-recoverable signals of malformed input.
func Validate(t *tree.Tree, rules features.Rules) error {
	if err := t.Check(); err != nil {
		return err
	}
	if len(rules) == 0 {
		return nil
	}

	var firstErr error
	walkErr := t.Walk(func(id tree.NodeID) {
		if firstErr != nil {
			return
		}
		n := t.Node(id)
		for _, feature := range n.State.Features() {
			v, _ := n.State.Get(feature)
			validated, err := rules.Validate(feature, v)
			if err != nil {
				firstErr = err
				return
			}
			n.State.Set(feature, validated)
		}
		for _, c := range t.Children(id) {
			e := t.EdgeBetween(id, c)
			if e == nil {
				continue
			}
			feature, ok := n.Split[c]
			if !ok {
				feature = n.SplitFeature
			}
			validated, err := rules.Validate(feature, e.Value)
			if err != nil {
				firstErr = err
				return
			}
			e.Value = validated
			for i, comp := range e.Compound {
				cv, err := rules.Validate(comp.Feature, comp.Value)
				if err != nil {
					firstErr = err
					return
				}
				e.Compound[i].Value = cv
			}
		}
	})
	if walkErr != nil {
		return walkErr
	}
	return firstErr
}
