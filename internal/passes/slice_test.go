package passes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathemads/bonsai/internal/passes"
	"github.com/mathemads/bonsai/internal/testutils"
	"github.com/mathemads/bonsai/pkg/tree"
)

func slice(t *testing.T, tr *tree.Tree, feature, value string) error {
	t.Helper()
	require.NoError(t, passes.Normalize(tr))
	return passes.Slice(tr, []string{feature}, map[string]string{feature: value})
}

// Surviving leaf with a remaining sibling branch: the leaf's payload moves
// onto the default child.
func TestSliceCollapsesLeafOntoDefault(t *testing.T) {
	b := tree.NewBuilder()
	root := b.Decision("")
	segHit := b.Leaf(0.30).With("segment", tree.Int(12345))
	geoHit := b.Leaf(0.20).With("geo", tree.TextValue("UK"))
	def := b.DefaultLeaf(0.05)
	b.Connect(root, segHit, tree.Assignment, tree.Int(12345))
	b.Connect(root, geoHit, tree.Assignment, tree.TextValue("UK"))
	b.ConnectDefault(root, def)
	tr := b.Tree()
	tr.Node(root.ID()).Split = map[tree.NodeID]string{
		segHit.ID(): "segment",
		geoHit.ID(): "geo",
	}

	require.NoError(t, slice(t, tr, "segment", "12345"))

	assert.Nil(t, tr.Node(segHit.ID()), "surviving slice leaf is folded away")
	d := tr.Node(def.ID())
	require.NotNil(t, d)
	assert.True(t, d.DefaultLeaf)
	assert.Equal(t, 0.30, d.Output, "default child took the sliced leaf's payload")
	assert.Len(t, tr.Children(root.ID()), 2)
}

// Surviving leaf that was the only conditional branch: the parent itself
// becomes the leaf.
func TestSliceCollapsesLeafOntoParent(t *testing.T) {
	b := tree.NewBuilder()
	root := b.Decision("segment")
	hit := b.Leaf(0.30).With("segment", tree.Int(12345))
	miss := b.Leaf(0.10).With("segment", tree.Int(67890))
	def := b.DefaultLeaf(0.05)
	b.Connect(root, hit, tree.Assignment, tree.Int(12345))
	b.Connect(root, miss, tree.Assignment, tree.Int(67890))
	b.ConnectDefault(root, def)
	tr := b.Tree()

	require.NoError(t, slice(t, tr, "segment", "12345"))

	n := tr.Node(root.ID())
	require.True(t, n.IsLeaf(), "parent absorbed the surviving leaf")
	assert.Equal(t, 0.30, n.Output)
	assert.Equal(t, 1, tr.Len())
}

// Surviving internal child: spliced out, its children reconnected to the
// parent and the slice feature stripped from their states.
func TestSliceSplicesInternalSurvivor(t *testing.T) {
	tr := testutils.BidTree()

	require.NoError(t, slice(t, tr, "segment", "12345"))

	root, err := tr.Root()
	require.NoError(t, err)
	n := tr.Node(root)
	require.False(t, n.IsLeaf())

	for c, f := range n.Split {
		assert.Equal(t, "segment.age", f, "root now splits directly on age")
		require.NotNil(t, tr.Node(c), "split entry references a removed node")
	}
	require.NoError(t, tr.Walk(func(id tree.NodeID) {
		_, has := tr.Node(id).State.Get("segment")
		assert.False(t, has, "slice feature stripped from node %d", id)
	}))

	// Two age buckets plus a default, nothing from segment 67890.
	assert.Len(t, tr.Children(root), 3)
	require.NoError(t, tr.Check())
}

// No child tests the retained value: the parent is replaced by its
// default branch.
func TestSliceReplacesParentWithDefault(t *testing.T) {
	b := tree.NewBuilder()
	root := b.Decision("segment")
	miss := b.Leaf(0.10).With("segment", tree.Int(67890))
	def := b.DefaultNode("geo")
	geoLeaf := b.Leaf(0.20).With("geo", tree.TextValue("UK"))
	geoDef := b.DefaultLeaf(0.05)
	b.Connect(root, miss, tree.Assignment, tree.Int(67890))
	b.ConnectDefault(root, def)
	b.Connect(def, geoLeaf, tree.Assignment, tree.TextValue("UK"))
	b.ConnectDefault(def, geoDef)
	tr := b.Tree()

	require.NoError(t, slice(t, tr, "segment", "12345"))

	n := tr.Node(root.ID())
	require.False(t, n.IsLeaf())
	assert.Equal(t, "geo", n.SplitFeature, "parent became its default branch")
	assert.Nil(t, tr.Node(def.ID()))
	assert.Equal(t, root.ID(), tr.Node(geoLeaf.ID()).Parent)
	require.NoError(t, tr.Check())
}

func TestSliceFailsWithoutDefaultFallback(t *testing.T) {
	b := tree.NewBuilder()
	root := b.Decision("segment")
	miss := b.Leaf(0.10).With("segment", tree.Int(67890))
	b.Connect(root, miss, tree.Assignment, tree.Int(67890))
	tr := b.Tree()

	err := slice(t, tr, "segment", "12345")
	var serr *tree.StructuralError
	require.ErrorAs(t, err, &serr)
}

func TestSliceFailsWithoutRetainedValue(t *testing.T) {
	tr := testutils.BidTree()
	require.NoError(t, passes.Normalize(tr))

	err := passes.Slice(tr, []string{"segment"}, nil)
	var cerr *tree.ConfigError
	require.ErrorAs(t, err, &cerr)
}

// Routing for retained inputs must not change when the slice feature is
// removed.
func TestSlicePreservesRoutingForRetainedInputs(t *testing.T) {
	tr := testutils.BidTree()
	require.NoError(t, passes.Normalize(tr))

	inputs := []map[string]tree.Value{
		{"segment": tree.Int(12345), "segment.age": tree.Number(5), "geo": tree.TextValue("UK")},
		{"segment": tree.Int(12345), "segment.age": tree.Number(5), "geo": tree.TextValue("US")},
		{"segment": tree.Int(12345), "segment.age": tree.Number(15), "geo": tree.TextValue("DE")},
		{"segment": tree.Int(12345), "segment.age": tree.Number(99), "geo": tree.TextValue("UK")},
		{"segment": tree.Int(12345), "segment.age": tree.Number(5), "geo": tree.TextValue("JP")},
	}

	var before []float64
	for _, in := range inputs {
		leaf, err := tr.Route(in)
		require.NoError(t, err)
		before = append(before, tr.Node(leaf).Output)
	}

	require.NoError(t, passes.Slice(tr, []string{"segment"}, map[string]string{"segment": "12345"}))

	for i, in := range inputs {
		delete(in, "segment")
		leaf, err := tr.Route(in)
		require.NoError(t, err)
		assert.Equal(t, before[i], tr.Node(leaf).Output, "input %d rerouted after slicing", i)
	}
}
