package passes

import "github.com/mathemads/bonsai/pkg/tree"

// Indent assigns tab depth breadth-first from the root: each child sits
// one level below its parent. The switch synthesizer widens the result
// later for subtrees dominated by a switch header.
func Indent(t *tree.Tree) error {
	root, err := t.Root()
	if err != nil {
		return err
	}
	t.Node(root).Ann.Indent = 0

	queue := []tree.NodeID{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		depth := t.Node(cur).Ann.Indent
		for _, c := range t.Children(cur) {
			t.Node(c).Ann.Indent = depth + 1
			queue = append(queue, c)
		}
	}
	return nil
}
