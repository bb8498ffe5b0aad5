// Package testutils provides the shared graph fixtures the pass and
// integration tests run against.
package testutils

import (
	"github.com/mathemads/bonsai/pkg/config"
	"github.com/mathemads/bonsai/pkg/tree"
)

// BidTree builds the canonical bidding tree: segment assignment at the
// root, segment-scoped age ranges below, a geo membership test per age
// bucket, and a 0.05 default leaf at every level.
//
//	segment  -> 12345 | 67890
//	segment.age -> [0,10) [10,20)  /  [0,20) [20,40)
//	geo      -> {UK,DE} | {US,BR}
func BidTree() *tree.Tree {
	b := tree.NewBuilder()

	root := b.Decision("segment")

	seg1 := b.Decision("segment.age").With("segment", tree.Int(12345))
	seg2 := b.Decision("segment.age").With("segment", tree.Int(67890))
	b.Connect(root, seg1, tree.Assignment, tree.Int(12345))
	b.Connect(root, seg2, tree.Assignment, tree.Int(67890))

	ageBuckets := []struct {
		parent *tree.NodeBuilder
		seg    int
		span   [2]float64
	}{
		{seg1, 12345, [2]float64{0, 10}},
		{seg1, 12345, [2]float64{10, 20}},
		{seg2, 67890, [2]float64{0, 20}},
		{seg2, 67890, [2]float64{20, 40}},
	}
	for _, bucket := range ageBuckets {
		geo := b.Decision("geo").
			With("segment", tree.Int(bucket.seg)).
			With("segment.age", tree.Span(bucket.span[0], bucket.span[1]))
		b.Connect(bucket.parent, geo, tree.Range, tree.Span(bucket.span[0], bucket.span[1]))

		uk := b.Leaf(0.10).
			With("segment", tree.Int(bucket.seg)).
			With("segment.age", tree.Span(bucket.span[0], bucket.span[1])).
			With("geo", tree.ListValue(tree.TextValue("UK"), tree.TextValue("DE")))
		us := b.Leaf(0.20).
			With("segment", tree.Int(bucket.seg)).
			With("segment.age", tree.Span(bucket.span[0], bucket.span[1])).
			With("geo", tree.ListValue(tree.TextValue("US"), tree.TextValue("BR")))
		b.Connect(geo, uk, tree.Membership, tree.ListValue(tree.TextValue("UK"), tree.TextValue("DE")))
		b.Connect(geo, us, tree.Membership, tree.ListValue(tree.TextValue("US"), tree.TextValue("BR")))
		b.ConnectDefault(geo, b.DefaultLeaf(0.05))
	}

	b.ConnectDefault(seg1, b.DefaultLeaf(0.05))
	b.ConnectDefault(seg2, b.DefaultLeaf(0.05))
	b.ConnectDefault(root, b.DefaultLeaf(0.05))

	return b.Tree()
}

// BidConfig pairs with BidTree: explicit feature order plus the clamp
// rules for the numeric features.
func BidConfig() *config.Config {
	floor := func(f float64) *float64 { return &f }
	return &config.Config{
		FeatureOrder: []config.Group{{"segment"}, {"segment.age"}, {"geo"}},
		Features: map[string]config.RuleSpec{
			"segment":     {Type: "int"},
			"segment.age": {Floor: floor(0), Type: "int"},
			"user_hour":   {Floor: floor(0), Ceiling: floor(23), Type: "int"},
		},
	}
}

// MixedRangeTree builds a decision node splitting on two distinct
// range-tested features; such a node must never synthesize a switch
// header.
func MixedRangeTree() *tree.Tree {
	b := tree.NewBuilder()

	root := b.Decision("")
	young := b.Leaf(0.10).With("age", tree.Span(0, 18))
	early := b.Leaf(0.20).With("user_hour", tree.Span(0, 12))
	b.Connect(root, young, tree.Range, tree.Span(0, 18))
	b.Connect(root, early, tree.Range, tree.Span(0, 12))
	b.ConnectDefault(root, b.DefaultLeaf(0.05))

	t := b.Tree()
	t.Node(root.ID()).Split = map[tree.NodeID]string{
		young.ID(): "age",
		early.ID(): "user_hour",
	}
	return t
}
