package tree

// Builder provides a fluent API for assembling a decision tree, mirroring
// the shape the external graph builder is expected to deliver. It is also
// the backbone of the test fixtures.
type Builder struct {
	tree *Tree
}

// NewBuilder returns an empty tree builder.
func NewBuilder() *Builder {
	return &Builder{tree: New()}
}

// NodeBuilder configures a single node.
type NodeBuilder struct {
	b  *Builder
	id NodeID
}

// Decision adds a decision node splitting on the given feature.
func (b *Builder) Decision(split string) *NodeBuilder {
	id := b.tree.AddNode(Node{Kind: KindDecision, SplitFeature: split})
	return &NodeBuilder{b: b, id: id}
}

// Leaf adds a plain leaf with a constant bid.
func (b *Builder) Leaf(output float64) *NodeBuilder {
	id := b.tree.AddNode(Node{Kind: KindLeaf, Output: output, HasOutput: true})
	return &NodeBuilder{b: b, id: id}
}

// DefaultLeaf adds a catch-all leaf with a constant bid.
func (b *Builder) DefaultLeaf(output float64) *NodeBuilder {
	id := b.tree.AddNode(Node{Kind: KindLeaf, DefaultLeaf: true, Output: output, HasOutput: true})
	return &NodeBuilder{b: b, id: id}
}

// DefaultNode adds a non-leaf default branch splitting on the given feature.
func (b *Builder) DefaultNode(split string) *NodeBuilder {
	id := b.tree.AddNode(Node{Kind: KindDecision, DefaultNode: true, SplitFeature: split})
	return &NodeBuilder{b: b, id: id}
}

// SmartLeaf adds a leaf carrying a compute expression.
func (b *Builder) SmartLeaf(c Compute) *NodeBuilder {
	cc := c
	id := b.tree.AddNode(Node{Kind: KindLeaf, Smart: true, Compute: &cc})
	return &NodeBuilder{b: b, id: id}
}

// ID returns the arena id of the node under construction.
func (n *NodeBuilder) ID() NodeID {
	return n.id
}

// With records a state entry (feature test inherited from ancestors).
func (n *NodeBuilder) With(feature string, v Value) *NodeBuilder {
	n.b.tree.Node(n.id).State.Set(feature, v)
	return n
}

// Name sets the emitted leaf name of a smart leaf.
func (n *NodeBuilder) Name(name string) *NodeBuilder {
	n.b.tree.Node(n.id).LeafName = name
	return n
}

// EdgeBuilder configures the edge attaching a child to its parent.
type EdgeBuilder struct {
	b  *Builder
	id EdgeID
}

// Connect attaches child under parent with a typed test value.
func (b *Builder) Connect(parent, child *NodeBuilder, typ EdgeType, v Value) *EdgeBuilder {
	id := b.tree.Connect(parent.id, child.id, Edge{Type: typ, Value: v})
	return &EdgeBuilder{b: b, id: id}
}

// ConnectDefault attaches a default branch under parent (no test value).
func (b *Builder) ConnectDefault(parent, child *NodeBuilder) *EdgeBuilder {
	id := b.tree.Connect(parent.id, child.id, Edge{Type: Assignment, Value: Absent()})
	return &EdgeBuilder{b: b, id: id}
}

// Negate marks the edge test as negated.
func (e *EdgeBuilder) Negate() *EdgeBuilder {
	e.b.tree.Edge(e.id).Negated = true
	return e
}

// Join sets the quantifier for a compound edge.
func (e *EdgeBuilder) Join(j JoinKind) *EdgeBuilder {
	e.b.tree.Edge(e.id).Join = j
	return e
}

// Component appends one dimension of a multi-dimensional compound test.
func (e *EdgeBuilder) Component(feature string, typ EdgeType, v Value) *EdgeBuilder {
	edge := e.b.tree.Edge(e.id)
	edge.Compound = append(edge.Compound, Component{Feature: feature, Type: typ, Value: v})
	return e
}

// Build returns the assembled tree after checking structural invariants.
func (b *Builder) Build() (*Tree, error) {
	if err := b.tree.Check(); err != nil {
		return nil, err
	}
	return b.tree, nil
}

// Tree returns the tree without invariant checking, for assembling
// deliberately irregular fixtures.
func (b *Builder) Tree() *Tree {
	return b.tree
}
