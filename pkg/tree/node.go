package tree

// NodeID identifies a node within a Tree's arena. IDs are stable for the
// lifetime of the tree; removed nodes leave a tombstone behind.
type NodeID int

// EdgeID identifies an edge within a Tree's arena.
type EdgeID int

// None is the null node id (no parent, no match).
const None NodeID = -1

// Kind discriminates node roles.
type Kind int

const (
	// KindDecision routes to children based on a feature test.
	KindDecision Kind = iota
	// KindLeaf terminates routing with an output statement.
	KindLeaf
)

// Compute holds the parameters of a smart leaf's compute expression.
// Unset pointer fields render as the placeholder token.
type Compute struct {
	// Value is an explicit bid overriding the compute expression.
	Value *float64

	InputField string
	Multiplier *float64
	Offset     *float64
	Min        *float64
	Max        *float64
}

// Annotation is the mutable decoration record populated progressively by
// the compiler passes. It never affects routing semantics, only layout.
type Annotation struct {
	// Indent is the tab depth assigned by the indentation pass and widened
	// by the switch synthesizer.
	Indent int
	// Cond is the conditional keyword assigned by the orderer: "if",
	// "elif" or "else".
	Cond string
	// SwitchHeader is the resolved feature reference of a synthesized
	// switch header, empty for non-qualifying nodes.
	SwitchHeader string
}

// Node is a single vertex of the decision graph.
type Node struct {
	ID   NodeID
	Kind Kind

	// DefaultLeaf marks the catch-all leaf taken when no sibling matches.
	DefaultLeaf bool
	// DefaultNode marks a non-leaf default branch.
	DefaultNode bool
	// Smart marks a leaf whose output is a compute expression or a bid
	// with extended rendering rather than a bare constant.
	Smart bool

	// State is the conjunction of all ancestor edge tests.
	State *State

	// SplitFeature is the raw single-feature split marker as delivered by
	// the graph builder. The split normalizer expands it into Split.
	SplitFeature string
	// Split maps each non-default child to the feature its edge tests.
	Split map[NodeID]string

	// Output and HasOutput carry a plain leaf's bid.
	Output    float64
	HasOutput bool

	// LeafName optionally names a smart leaf in the emitted text.
	LeafName string
	// Compute carries a smart leaf's expression parameters.
	Compute *Compute

	// Parent is None for the root. Out lists outgoing edges; after the
	// orderer ran, Out is in deterministic emission order.
	Parent NodeID
	Out    []EdgeID

	// Ann is populated by the passes.
	Ann Annotation

	gone bool
}

// IsLeaf reports whether the node terminates routing.
func (n *Node) IsLeaf() bool {
	return n.Kind == KindLeaf
}

// IsDefault reports whether the node is a default branch (leaf or not).
func (n *Node) IsDefault() bool {
	return n.DefaultLeaf || n.DefaultNode
}

// SplitFeatures returns the distinct features the node splits on, in
// first-seen child order.
func (n *Node) SplitFeatures(t *Tree) []string {
	seen := make(map[string]bool)
	var out []string
	for _, eid := range n.Out {
		e := t.Edge(eid)
		if e == nil {
			continue
		}
		c := t.Node(e.Child)
		if c == nil || c.IsDefault() {
			continue
		}
		f, ok := n.Split[e.Child]
		if !ok {
			f = n.SplitFeature
		}
		if f != "" && !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}
