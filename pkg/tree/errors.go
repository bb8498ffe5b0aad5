package tree

import "fmt"

// ValidationError reports a feature value that cannot be cast to its
// declared type. It is fatal: the input graph is malformed.
type ValidationError struct {
	Feature string
	Value   Value
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for feature %q (value %s): %s", e.Feature, e.Value, e.Reason)
}

// StructuralError reports a graph that violates the tree invariants, or a
// slice operation left without a valid default to fall back on. Fatal.
type StructuralError struct {
	Node   NodeID
	Reason string
}

func (e *StructuralError) Error() string {
	if e.Node == None {
		return fmt.Sprintf("structural error: %s", e.Reason)
	}
	return fmt.Sprintf("structural error at node %d: %s", e.Node, e.Reason)
}

// ConfigError reports a nonsensical configuration combination, such as a
// range test under an "any" quantifier or a range with no bounds. Fatal.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s", e.Reason)
}
