package passes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathemads/bonsai/internal/passes"
	"github.com/mathemads/bonsai/internal/testutils"
	"github.com/mathemads/bonsai/pkg/tree"
)

func layoutFixture(t *testing.T) *tree.Tree {
	t.Helper()
	tr := testutils.BidTree()
	require.NoError(t, passes.Normalize(tr))
	require.NoError(t, passes.Order(tr, testutils.BidConfig()))
	require.NoError(t, passes.Indent(tr))
	return tr
}

func TestIndentFollowsDepth(t *testing.T) {
	tr := layoutFixture(t)

	root, _ := tr.Root()
	assert.Equal(t, 0, tr.Node(root).Ann.Indent)
	require.NoError(t, tr.Walk(func(id tree.NodeID) {
		depth := tr.Node(id).Ann.Indent
		for _, c := range tr.Children(id) {
			assert.Equal(t, depth+1, tr.Node(c).Ann.Indent)
		}
	}))
}

func TestSwitchesPromoteRangeSplits(t *testing.T) {
	tr := layoutFixture(t)
	require.NoError(t, passes.Switches(tr))

	root, _ := tr.Root()
	assert.Empty(t, tr.Node(root).Ann.SwitchHeader, "assignment split must stay conditional")

	seg := tr.Children(root)[0]
	assert.Equal(t, "segment[12345].age", tr.Node(seg).Ann.SwitchHeader)

	// Membership splits below the age buckets stay conditional.
	for _, bucket := range tr.Children(seg) {
		assert.Empty(t, tr.Node(bucket).Ann.SwitchHeader)
	}
}

func TestSwitchesWidenDominatedSubtrees(t *testing.T) {
	tr := layoutFixture(t)
	require.NoError(t, passes.Switches(tr))

	root, _ := tr.Root()
	seg := tr.Children(root)[0]
	n := tr.Node(seg)

	// The header line sits at the node's pre-widening depth; the node and
	// everything below it shift one level right.
	assert.Equal(t, 2, n.Ann.Indent)
	for _, bucket := range tr.Children(seg) {
		assert.Equal(t, 3, tr.Node(bucket).Ann.Indent)
		for _, geo := range tr.Children(bucket) {
			assert.Equal(t, 4, tr.Node(geo).Ann.Indent)
		}
	}

	// Siblings outside the switch keep their plain depth.
	def := tr.DefaultChild(root)
	assert.Equal(t, 1, tr.Node(def).Ann.Indent)
}

func TestSwitchesRejectMixedFeatures(t *testing.T) {
	tr := testutils.MixedRangeTree()
	require.NoError(t, passes.Indent(tr))
	require.NoError(t, passes.Switches(tr))

	require.NoError(t, tr.Walk(func(id tree.NodeID) {
		assert.Empty(t, tr.Node(id).Ann.SwitchHeader)
	}))
}

func TestFeatureReference(t *testing.T) {
	state := tree.NewState()
	state.Set("segment", tree.Int(12345))

	tests := []struct {
		name    string
		feature string
		want    string
	}{
		{"plain", "geo", "geo"},
		{"compound in scope", "segment.age", "segment[12345].age"},
		{"compound out of scope", "campaign.age", "campaign.age"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, passes.FeatureReference(tt.feature, state))
		})
	}
}
