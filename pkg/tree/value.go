package tree

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueKind discriminates the variants of Value.
type ValueKind int

const (
	// KindAbsent marks a missing value (e.g. a feature known to be unset).
	KindAbsent ValueKind = iota
	// KindNumber is a numeric scalar.
	KindNumber
	// KindText is a textual scalar.
	KindText
	// KindRange is a half-open numeric interval with optional bounds.
	KindRange
	// KindList is an ordered collection of scalar values.
	KindList
)

// Value is a tagged variant holding a feature or edge value: a scalar
// (number or text), a range with optional bounds, a list of scalars, or
// the explicit absence of a value.
type Value struct {
	Kind ValueKind

	// Num and Integer are set for KindNumber. Integer records that the
	// value was declared (or cast to) an integer type.
	Num     float64
	Integer bool

	// Text is set for KindText.
	Text string

	// Lo and Hi are set for KindRange; a nil bound is unbounded.
	Lo, Hi *float64

	// List is set for KindList.
	List []Value
}

// Number returns a floating-point scalar value.
func Number(f float64) Value {
	return Value{Kind: KindNumber, Num: f}
}

// Int returns an integer scalar value.
func Int(i int) Value {
	return Value{Kind: KindNumber, Num: float64(i), Integer: true}
}

// TextValue returns a textual scalar value.
func TextValue(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// Span returns a range value with both bounds set.
func Span(lo, hi float64) Value {
	return Value{Kind: KindRange, Lo: &lo, Hi: &hi}
}

// SpanBounds returns a range value with optional bounds; nil means unbounded.
func SpanBounds(lo, hi *float64) Value {
	return Value{Kind: KindRange, Lo: lo, Hi: hi}
}

// ListValue returns a list value over the given scalars.
func ListValue(vs ...Value) Value {
	return Value{Kind: KindList, List: vs}
}

// Absent returns the explicit "no value" marker.
func Absent() Value {
	return Value{Kind: KindAbsent}
}

// IsNumeric reports whether the value is a numeric scalar, or a textual
// scalar that parses as a number.
func (v Value) IsNumeric() bool {
	switch v.Kind {
	case KindNumber:
		return true
	case KindText:
		_, err := strconv.ParseFloat(v.Text, 64)
		return err == nil
	default:
		return false
	}
}

// Equal reports deep equality of two values.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindAbsent:
		return true
	case KindNumber:
		return v.Num == o.Num
	case KindText:
		return v.Text == o.Text
	case KindRange:
		return boundEqual(v.Lo, o.Lo) && boundEqual(v.Hi, o.Hi)
	case KindList:
		if len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(o.List[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func boundEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Contains reports whether a concrete scalar value satisfies this value
// considered as a test: ranges check interval membership (inclusive lower,
// exclusive upper), lists check element membership, scalars check equality.
func (v Value) Contains(o Value) bool {
	switch v.Kind {
	case KindRange:
		if o.Kind != KindNumber {
			return false
		}
		if v.Lo != nil && o.Num < *v.Lo {
			return false
		}
		if v.Hi != nil && o.Num >= *v.Hi {
			return false
		}
		return true
	case KindList:
		for _, m := range v.List {
			if m.Equal(o) {
				return true
			}
		}
		return false
	default:
		return v.Equal(o)
	}
}

// String renders a canonical textual form of the value. Integral numbers
// render without a decimal part; ranges as "(lo, hi)" with "*" for an
// unbounded side; lists as "(a, b, ...)".
func (v Value) String() string {
	switch v.Kind {
	case KindAbsent:
		return "absent"
	case KindNumber:
		return FormatNumber(v.Num)
	case KindText:
		return v.Text
	case KindRange:
		return fmt.Sprintf("(%s, %s)", formatBound(v.Lo), formatBound(v.Hi))
	case KindList:
		parts := make([]string, len(v.List))
		for i, m := range v.List {
			parts[i] = m.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	}
	return ""
}

// Clone returns a deep copy of the value.
func (v Value) Clone() Value {
	c := v
	if v.Lo != nil {
		lo := *v.Lo
		c.Lo = &lo
	}
	if v.Hi != nil {
		hi := *v.Hi
		c.Hi = &hi
	}
	if v.List != nil {
		c.List = make([]Value, len(v.List))
		for i, m := range v.List {
			c.List[i] = m.Clone()
		}
	}
	return c
}

// FormatNumber renders a float, omitting the decimal part when integral.
func FormatNumber(f float64) string {
	if f == math.Trunc(f) && !math.IsInf(f, 0) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatBound(b *float64) string {
	if b == nil {
		return "*"
	}
	return FormatNumber(*b)
}
