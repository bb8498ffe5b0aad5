// Package features holds the per-feature knowledge the compiler passes
// consult: clamp/cast rules for validation and priority rankings for
// deterministic sibling ordering. Both are pure data structures, usable
// and testable independently of any tree traversal.
package features

import (
	"fmt"
	"math"
	"strconv"

	"github.com/mathemads/bonsai/pkg/tree"
)

// Cast names the declared type of a feature's values.
type Cast int

const (
	// CastNone leaves values untouched.
	CastNone Cast = iota
	// CastInt truncates to an integer.
	CastInt
	// CastFloat forces a floating-point number.
	CastFloat
	// CastText forces a textual rendering.
	CastText
)

// ParseCast converts a configuration type name into a Cast.
func ParseCast(s string) (Cast, error) {
	switch s {
	case "", "none":
		return CastNone, nil
	case "int":
		return CastInt, nil
	case "float":
		return CastFloat, nil
	case "string", "str":
		return CastText, nil
	}
	return CastNone, fmt.Errorf("unknown cast type %q", s)
}

// Rule declares the value domain of one feature. Nil bounds are open.
type Rule struct {
	Floor   *float64
	Ceiling *float64
	Cast    Cast
}

// Rules is the pluggable feature-keyed clamp table. Features without a
// rule pass through validation unchanged.
type Rules map[string]Rule

// Validate clamps and casts a value against the feature's rule, applying
// the rule element-wise to lists and to both range bounds. The result of
// validating an already-valid value is the value itself (idempotence).
// A cast that cannot convert the value yields a *tree.ValidationError.
func (r Rules) Validate(feature string, v tree.Value) (tree.Value, error) {
	rule, ok := r[feature]
	if !ok {
		return v, nil
	}
	return rule.apply(feature, v)
}

func (rule Rule) apply(feature string, v tree.Value) (tree.Value, error) {
	switch v.Kind {
	case tree.KindAbsent:
		return v, nil
	case tree.KindList:
		out := v.Clone()
		for i, m := range out.List {
			validated, err := rule.apply(feature, m)
			if err != nil {
				return v, err
			}
			out.List[i] = validated
		}
		return out, nil
	case tree.KindRange:
		out := v.Clone()
		if out.Lo != nil {
			lo := rule.clamp(*out.Lo)
			if rule.Cast == CastInt {
				lo = math.Trunc(lo)
			}
			out.Lo = &lo
		}
		if out.Hi != nil {
			hi := rule.clamp(*out.Hi)
			if rule.Cast == CastInt {
				hi = math.Trunc(hi)
			}
			out.Hi = &hi
		}
		return out, nil
	}
	return rule.applyScalar(feature, v)
}

func (rule Rule) applyScalar(feature string, v tree.Value) (tree.Value, error) {
	num, isNum := scalarNumber(v)

	switch rule.Cast {
	case CastText:
		if v.Kind == tree.KindText {
			return v, nil
		}
		return tree.TextValue(v.String()), nil
	case CastInt, CastFloat:
		if !isNum {
			return v, &tree.ValidationError{
				Feature: feature,
				Value:   v,
				Reason:  "not convertible to a number",
			}
		}
		num = rule.clamp(num)
		if rule.Cast == CastInt {
			out := tree.Int(int(math.Trunc(num)))
			return out, nil
		}
		return tree.Number(num), nil
	default:
		if !isNum {
			return v, nil
		}
		clamped := rule.clamp(num)
		if clamped == num {
			return v, nil
		}
		out := v
		out.Kind = tree.KindNumber
		out.Num = clamped
		out.Text = ""
		return out, nil
	}
}

func (rule Rule) clamp(f float64) float64 {
	if rule.Ceiling != nil {
		f = math.Min(*rule.Ceiling, f)
	}
	if rule.Floor != nil {
		f = math.Max(*rule.Floor, f)
	}
	return f
}

func scalarNumber(v tree.Value) (float64, bool) {
	switch v.Kind {
	case tree.KindNumber:
		return v.Num, true
	case tree.KindText:
		f, err := strconv.ParseFloat(v.Text, 64)
		return f, err == nil
	}
	return 0, false
}
