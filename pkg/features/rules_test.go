package features_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathemads/bonsai/pkg/features"
	"github.com/mathemads/bonsai/pkg/tree"
)

func bidRules() features.Rules {
	floor := func(f float64) *float64 { return &f }
	return features.Rules{
		"age":       {Floor: floor(0), Cast: features.CastInt},
		"user_hour": {Floor: floor(0), Ceiling: floor(23), Cast: features.CastInt},
		"segment":   {Cast: features.CastInt},
	}
}

func TestValidateClampsToBounds(t *testing.T) {
	rules := bidRules()

	tests := []struct {
		name    string
		feature string
		in      tree.Value
		want    tree.Value
	}{
		{"age below floor", "age", tree.Int(-5), tree.Int(0)},
		{"user_hour above ceiling", "user_hour", tree.Int(30), tree.Int(23)},
		{"in-range untouched", "user_hour", tree.Int(12), tree.Int(12)},
		{"float truncated", "age", tree.Number(17.9), tree.Int(17)},
		{"numeric text cast", "segment", tree.TextValue("12345"), tree.Int(12345)},
		{"unknown feature passes through", "geo", tree.TextValue("UK"), tree.TextValue("UK")},
		{"absent passes through", "age", tree.Absent(), tree.Absent()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rules.Validate(tt.feature, tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestValidateAppliesElementWise(t *testing.T) {
	rules := bidRules()

	got, err := rules.Validate("user_hour", tree.ListValue(tree.Int(-1), tree.Int(12), tree.Int(99)))
	require.NoError(t, err)
	want := tree.ListValue(tree.Int(0), tree.Int(12), tree.Int(23))
	assert.True(t, want.Equal(got), "got %s", got)

	got, err = rules.Validate("age", tree.Span(-5, 120))
	require.NoError(t, err)
	require.NotNil(t, got.Lo)
	assert.Equal(t, 0.0, *got.Lo)
	assert.Equal(t, 120.0, *got.Hi)
}

func TestValidateRejectsImpossibleCast(t *testing.T) {
	rules := bidRules()

	_, err := rules.Validate("segment", tree.TextValue("premium"))
	var verr *tree.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "segment", verr.Feature)
}

func TestValidateIdempotent(t *testing.T) {
	rules := bidRules()
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("validating twice equals validating once", prop.ForAll(
		func(hour int) bool {
			once, err := rules.Validate("user_hour", tree.Int(hour))
			if err != nil {
				return false
			}
			twice, err := rules.Validate("user_hour", once)
			if err != nil {
				return false
			}
			return once.Equal(twice)
		},
		gen.IntRange(-1000, 1000),
	))

	properties.Property("clamped values land on the nearest bound", prop.ForAll(
		func(hour int) bool {
			got, err := rules.Validate("user_hour", tree.Int(hour))
			if err != nil {
				return false
			}
			switch {
			case hour < 0:
				return got.Num == 0
			case hour > 23:
				return got.Num == 23
			default:
				return got.Num == float64(hour)
			}
		},
		gen.IntRange(-1000, 1000),
	))

	properties.TestingRun(t)
}
