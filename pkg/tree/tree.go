package tree

// Tree is an arena-backed rooted decision graph. Nodes and edges live in
// indexed slices; relationships are integer ids, never pointers. Removal
// tombstones entries so ids stay stable across graph surgery.
//
// A Tree is exclusively owned by one conversion at a time. The compiler
// passes mutate it in place and it is discarded once text is produced.
type Tree struct {
	nodes []Node
	edges []Edge
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{}
}

// AddNode copies n into the arena and returns its id. The node's State is
// initialized when nil.
func (t *Tree) AddNode(n Node) NodeID {
	id := NodeID(len(t.nodes))
	n.ID = id
	n.Parent = None
	if n.State == nil {
		n.State = NewState()
	}
	t.nodes = append(t.nodes, n)
	return id
}

// Connect attaches child under parent with the given edge payload and
// returns the edge id. The child must not already have a parent.
func (t *Tree) Connect(parent, child NodeID, e Edge) EdgeID {
	id := EdgeID(len(t.edges))
	e.ID = id
	e.Parent = parent
	e.Child = child
	t.edges = append(t.edges, e)

	p := t.Node(parent)
	p.Out = append(p.Out, id)
	t.Node(child).Parent = parent
	return id
}

// Node returns the live node with the given id, or nil.
func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	n := &t.nodes[id]
	if n.gone {
		return nil
	}
	return n
}

// Edge returns the live edge with the given id, or nil.
func (t *Tree) Edge(id EdgeID) *Edge {
	if id < 0 || int(id) >= len(t.edges) {
		return nil
	}
	e := &t.edges[id]
	if e.gone {
		return nil
	}
	return e
}

// EdgeBetween returns the live edge from parent to child, or nil.
func (t *Tree) EdgeBetween(parent, child NodeID) *Edge {
	p := t.Node(parent)
	if p == nil {
		return nil
	}
	for _, eid := range p.Out {
		if e := t.Edge(eid); e != nil && e.Child == child {
			return e
		}
	}
	return nil
}

// NodeIDs returns the ids of all live nodes in ascending order.
func (t *Tree) NodeIDs() []NodeID {
	var out []NodeID
	for i := range t.nodes {
		if !t.nodes[i].gone {
			out = append(out, NodeID(i))
		}
	}
	return out
}

// Len returns the number of live nodes.
func (t *Tree) Len() int {
	count := 0
	for i := range t.nodes {
		if !t.nodes[i].gone {
			count++
		}
	}
	return count
}

// Root returns the unique live node without a parent.
func (t *Tree) Root() (NodeID, error) {
	root := None
	for i := range t.nodes {
		n := &t.nodes[i]
		if n.gone || n.Parent != None {
			continue
		}
		if root != None {
			return None, &StructuralError{Node: n.ID, Reason: "more than one root"}
		}
		root = n.ID
	}
	if root == None {
		return None, &StructuralError{Node: None, Reason: "no root"}
	}
	return root, nil
}

// Children returns the live children of a node in Out order.
func (t *Tree) Children(id NodeID) []NodeID {
	n := t.Node(id)
	if n == nil {
		return nil
	}
	var out []NodeID
	for _, eid := range n.Out {
		if e := t.Edge(eid); e != nil {
			if c := t.Node(e.Child); c != nil {
				out = append(out, c.ID)
			}
		}
	}
	return out
}

// DefaultChild returns the node's default branch child, or None.
func (t *Tree) DefaultChild(id NodeID) NodeID {
	for _, c := range t.Children(id) {
		if t.Node(c).IsDefault() {
			return c
		}
	}
	return None
}

// RemoveEdge tombstones an edge and unlinks it from its parent's Out list.
// The child keeps its Parent pointer only if another edge still provides it.
func (t *Tree) RemoveEdge(id EdgeID) {
	e := t.Edge(id)
	if e == nil {
		return
	}
	e.gone = true
	if p := t.Node(e.Parent); p != nil {
		for i, eid := range p.Out {
			if eid == id {
				p.Out = append(p.Out[:i], p.Out[i+1:]...)
				break
			}
		}
	}
	if c := t.Node(e.Child); c != nil && c.Parent == e.Parent {
		c.Parent = None
	}
}

// RemoveNode tombstones a single node and its incoming edge. Children are
// left in place (detached); use RemoveSubtree for recursive deletion.
func (t *Tree) RemoveNode(id NodeID) {
	n := t.Node(id)
	if n == nil {
		return
	}
	// RemoveEdge clears n.Parent, so resolve it first.
	if parent := n.Parent; parent != None {
		if e := t.EdgeBetween(parent, id); e != nil {
			t.RemoveEdge(e.ID)
		}
		if p := t.Node(parent); p != nil {
			delete(p.Split, id)
		}
	}
	for _, eid := range append([]EdgeID(nil), n.Out...) {
		if e := t.Edge(eid); e != nil {
			e.gone = true
			if c := t.Node(e.Child); c != nil && c.Parent == id {
				c.Parent = None
			}
		}
	}
	n.Out = nil
	n.gone = true
}

// RemoveSubtree deletes a node and every descendant, breadth-first over an
// explicit queue (never iterating a container being mutated).
func (t *Tree) RemoveSubtree(id NodeID) {
	queue := []NodeID{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		n := t.Node(cur)
		if n == nil {
			continue
		}
		queue = append(queue, t.Children(cur)...)
		t.RemoveNode(cur)
	}
}

// Reattach moves the edge leading into child so that it hangs off
// newParent instead, preserving the edge payload.
func (t *Tree) Reattach(child, newParent NodeID) {
	c := t.Node(child)
	if c == nil {
		return
	}
	e := t.EdgeBetween(c.Parent, child)
	if e == nil {
		return
	}
	if old := t.Node(e.Parent); old != nil {
		for i, eid := range old.Out {
			if eid == e.ID {
				old.Out = append(old.Out[:i], old.Out[i+1:]...)
				break
			}
		}
		delete(old.Split, child)
	}
	e.Parent = newParent
	c.Parent = newParent
	np := t.Node(newParent)
	np.Out = append(np.Out, e.ID)
}

// Walk visits every live node reachable from the root in breadth-first
// order.
func (t *Tree) Walk(fn func(id NodeID)) error {
	root, err := t.Root()
	if err != nil {
		return err
	}
	queue := []NodeID{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		fn(cur)
		queue = append(queue, t.Children(cur)...)
	}
	return nil
}

// Clone returns an independent deep copy of the tree, tombstones included,
// so node and edge ids carry over unchanged.
func (t *Tree) Clone() *Tree {
	c := &Tree{
		nodes: make([]Node, len(t.nodes)),
		edges: make([]Edge, len(t.edges)),
	}
	for i := range t.nodes {
		n := t.nodes[i]
		if n.State != nil {
			n.State = n.State.Clone()
		}
		if n.Split != nil {
			split := make(map[NodeID]string, len(n.Split))
			for k, v := range n.Split {
				split[k] = v
			}
			n.Split = split
		}
		if n.Out != nil {
			n.Out = append([]EdgeID(nil), n.Out...)
		}
		if n.Compute != nil {
			cc := *n.Compute
			n.Compute = &cc
		}
		c.nodes[i] = n
	}
	for i := range t.edges {
		c.edges[i] = t.edges[i].Clone()
	}
	return c
}

// Check verifies the structural invariants: a unique root, single
// parentage, and for every decision node at least one non-default child
// plus exactly one default branch.
func (t *Tree) Check() error {
	root, err := t.Root()
	if err != nil {
		return err
	}
	seen := make(map[NodeID]bool)
	queue := []NodeID{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if seen[cur] {
			return &StructuralError{Node: cur, Reason: "node reachable through more than one parent"}
		}
		seen[cur] = true

		n := t.Node(cur)
		if n.IsLeaf() {
			continue
		}
		children := t.Children(cur)
		defaults := 0
		for _, c := range children {
			if t.Node(c).IsDefault() {
				defaults++
			}
		}
		if len(children)-defaults < 1 {
			return &StructuralError{Node: cur, Reason: "decision node has no conditional branch"}
		}
		if defaults != 1 {
			return &StructuralError{Node: cur, Reason: "decision node must have exactly one default branch"}
		}
		queue = append(queue, children...)
	}
	for _, id := range t.NodeIDs() {
		if !seen[id] {
			return &StructuralError{Node: id, Reason: "node unreachable from root"}
		}
	}
	return nil
}
