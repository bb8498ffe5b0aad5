package bonsai_test

import (
	"encoding/base64"
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathemads/bonsai"
	"github.com/mathemads/bonsai/internal/testutils"
	"github.com/mathemads/bonsai/pkg/observability"
	"github.com/mathemads/bonsai/pkg/tree"
)

func TestConvertBiddingScenario(t *testing.T) {
	out, err := bonsai.Convert(testutils.BidTree(), testutils.BidConfig())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "if segment[12345]:\n"))
	assert.Contains(t, out, "\tswitch segment[12345].age:\n")
	assert.Contains(t, out, "\t\tcase (0 .. 10):\n")
	assert.Contains(t, out, "\tswitch segment[67890].age:\n")
	assert.Contains(t, out, "\t\tcase (20 .. 40):\n")
	assert.Contains(t, out, "if geo in (\"UK\",\"DE\"):\n")
	assert.True(t, strings.HasSuffix(out, "else:\n\t0.0500\n"))
	assert.NotContains(t, out, "default:")
}

func TestConvertIsDeterministic(t *testing.T) {
	first, err := bonsai.Convert(testutils.BidTree(), testutils.BidConfig())
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := bonsai.Convert(testutils.BidTree(), testutils.BidConfig())
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestConvertClampsOutOfRangeValues(t *testing.T) {
	b := tree.NewBuilder()
	root := b.Decision("segment.age")
	young := b.Leaf(0.10).With("segment.age", tree.Span(-5, 10))
	b.Connect(root, young, tree.Range, tree.Span(-5, 10))
	b.ConnectDefault(root, b.DefaultLeaf(0.05))

	out, err := bonsai.Convert(b.Tree(), testutils.BidConfig())
	require.NoError(t, err)
	assert.Contains(t, out, "case (0 .. 10):\n")
	assert.NotContains(t, out, "-5")
}

func TestConvertSlicesBeforeEmission(t *testing.T) {
	cfg := testutils.BidConfig()
	cfg.SliceFeatures = []string{"segment"}
	cfg.SliceFeatureValues = map[string]string{"segment": "12345"}

	out, err := bonsai.Convert(testutils.BidTree(), cfg)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "switch segment.age:\n"))
	assert.Contains(t, out, "\tcase (0 .. 10):\n")
	assert.NotContains(t, out, "67890")
	assert.NotContains(t, out, "12345")
}

func TestConvertRejectsMalformedTrees(t *testing.T) {
	b := tree.NewBuilder()
	root := b.Decision("geo")
	b.Connect(root, b.Leaf(0.10), tree.Membership, tree.ListValue(tree.TextValue("UK")))

	out, err := bonsai.Convert(b.Tree(), nil)
	var serr *tree.StructuralError
	require.ErrorAs(t, err, &serr)
	assert.Empty(t, out)
}

func TestConvertBase64RoundTrip(t *testing.T) {
	conv := bonsai.New()

	plain, err := conv.Convert(testutils.BidTree(), testutils.BidConfig())
	require.NoError(t, err)

	encoded, err := conv.ConvertBase64(testutils.BidTree(), testutils.BidConfig())
	require.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.Equal(t, plain, string(decoded))
}

// bucketTree builds a one-level range split from generated bounds and bids.
func bucketTree(cut int, low, high float64) *tree.Tree {
	b := tree.NewBuilder()
	root := b.Decision("user_hour")
	young := b.Leaf(low)
	old := b.Leaf(high)
	b.Connect(root, young, tree.Range, tree.Span(0, float64(cut)))
	b.Connect(root, old, tree.Range, tree.Span(float64(cut), 24))
	b.ConnectDefault(root, b.DefaultLeaf(0.05))
	return b.Tree()
}

func TestConvertProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("output is stable across runs", prop.ForAll(
		func(cut int, low, high float64) bool {
			first, err := bonsai.Convert(bucketTree(cut, low, high), nil)
			if err != nil {
				return false
			}
			again, err := bonsai.Convert(bucketTree(cut, low, high), nil)
			return err == nil && first == again
		},
		gen.IntRange(1, 23),
		gen.Float64Range(0.01, 10),
		gen.Float64Range(0.01, 10),
	))

	properties.Property("bid lines carry four decimals", prop.ForAll(
		func(cut int, low, high float64) bool {
			out, err := bonsai.Convert(bucketTree(cut, low, high), nil)
			if err != nil {
				return false
			}
			want := fmt.Sprintf("%.4f", low)
			return strings.Contains(out, want+"\n")
		},
		gen.IntRange(1, 23),
		gen.Float64Range(0.01, 10),
		gen.Float64Range(0.01, 10),
	))

	properties.TestingRun(t)
}

func TestConvertRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	conv := bonsai.New(bonsai.WithMetrics(observability.NewMetrics(reg)))

	_, err := conv.Convert(testutils.BidTree(), testutils.BidConfig())
	require.NoError(t, err)

	b := tree.NewBuilder()
	root := b.Decision("geo")
	b.Connect(root, b.Leaf(0.10), tree.Membership, tree.ListValue(tree.TextValue("UK")))
	_, err = conv.Convert(b.Tree(), nil)
	require.Error(t, err)

	ok, err := reg.Gather()
	require.NoError(t, err)
	statuses := make(map[string]float64)
	for _, mf := range ok {
		if mf.GetName() != "bonsai_conversions_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "status" {
					statuses[l.GetValue()] = m.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, 1.0, statuses["ok"])
	assert.Equal(t, 1.0, statuses["error"])
}
