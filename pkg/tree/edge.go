package tree

// EdgeType classifies the test an edge performs on its feature.
type EdgeType int

const (
	// Range tests a numeric interval.
	Range EdgeType = iota
	// Membership tests inclusion in a discrete value set.
	Membership
	// Assignment tests equality with a single value.
	Assignment
	// Association is a free-form key/value clause with no comparison.
	Association
)

// String returns the wire name of the edge type.
func (t EdgeType) String() string {
	switch t {
	case Range:
		return "range"
	case Membership:
		return "membership"
	case Assignment:
		return "assignment"
	case Association:
		return "association"
	}
	return "unknown"
}

// ParseEdgeType converts a wire name into an EdgeType.
func ParseEdgeType(s string) (EdgeType, bool) {
	switch s {
	case "range":
		return Range, true
	case "membership":
		return Membership, true
	case "assignment":
		return Assignment, true
	case "association":
		return Association, true
	}
	return Range, false
}

// JoinKind selects the quantifier joining the components of a compound test.
type JoinKind int

const (
	// JoinNone marks a simple, single-component edge.
	JoinNone JoinKind = iota
	// JoinAny requires at least one component to match (default quantifier).
	JoinAny
	// JoinEvery requires all components to match.
	JoinEvery
)

// Component is one dimension of a multi-dimensional compound test: a
// (feature, type, value) triple with its own negation flag.
type Component struct {
	Feature string
	Type    EdgeType
	Value   Value
	Negated bool
}

// Edge connects a parent decision node to one of its children and carries
// the test routing an input down that child.
type Edge struct {
	ID     EdgeID
	Parent NodeID
	Child  NodeID

	Type    EdgeType
	Value   Value
	Negated bool

	// Join and Compound are set for multi-valued compound tests; Value and
	// Type are ignored when Compound is non-empty.
	Join     JoinKind
	Compound []Component

	gone bool
}

// Matches reports whether a concrete value satisfies the edge's test,
// honoring negation. Compound edges go through MatchesCompound instead.
func (e *Edge) Matches(v Value) bool {
	ok := e.Value.Contains(v)
	if e.Negated {
		ok = !ok
	}
	return ok
}

// MatchesCompound evaluates a compound edge against a feature lookup.
func (e *Edge) MatchesCompound(lookup func(feature string) (Value, bool)) bool {
	if len(e.Compound) == 0 {
		return false
	}
	all := true
	any := false
	for _, comp := range e.Compound {
		v, present := lookup(comp.Feature)
		ok := present && comp.Value.Contains(v)
		if comp.Negated {
			ok = !ok
		}
		all = all && ok
		any = any || ok
	}
	if e.Join == JoinEvery {
		return all
	}
	return any
}

// Clone returns a deep copy of the edge (keeping ids).
func (e *Edge) Clone() Edge {
	c := *e
	c.Value = e.Value.Clone()
	if e.Compound != nil {
		c.Compound = make([]Component, len(e.Compound))
		for i, comp := range e.Compound {
			comp.Value = comp.Value.Clone()
			c.Compound[i] = comp
		}
	}
	return c
}
