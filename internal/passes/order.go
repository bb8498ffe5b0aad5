package passes

import (
	"sort"

	"github.com/mathemads/bonsai/pkg/config"
	"github.com/mathemads/bonsai/pkg/features"
	"github.com/mathemads/bonsai/pkg/tree"
)

// Order sorts every decision node's out-edges into deterministic emission
// order and assigns the conditional keyword to each child: first sibling
// "if", last "else", interior "elif". Default branches always sort last;
// the remaining order comes from a lexicographic comparison vector
// flattened over each child's full state, ranking features and values by
// the configured priorities. Final tiebreak is the node id, so identical
// input always yields identical order.
func Order(t *tree.Tree, cfg *config.Config) error {
	o := &orderer{
		tree:       t,
		featRank:   cfg.FeatureRanking(),
		valueRanks: make(map[string]*features.Ranking),
		cfg:        cfg,
	}
	return t.Walk(o.orderNode)
}

type orderer struct {
	tree       *tree.Tree
	featRank   *features.Ranking
	valueRanks map[string]*features.Ranking
	cfg        *config.Config
}

func (o *orderer) valueRank(feature, rendered string) int {
	r, ok := o.valueRanks[feature]
	if !ok {
		r = o.cfg.ValueRanking(feature)
		o.valueRanks[feature] = r
	}
	return r.Rank(rendered)
}

// key builds the comparison vector for one child:
// [defaultLeaf, defaultNode, (featureRank, valueRank)...] over the child's
// state entries sorted by feature rank.
func (o *orderer) key(id tree.NodeID) []int {
	n := o.tree.Node(id)
	vec := []int{b2i(n.DefaultLeaf), b2i(n.DefaultNode)}

	feats := n.State.Features()
	ranks := make(map[string]int, len(feats))
	for _, f := range feats {
		ranks[f] = o.featRank.Rank(f)
	}
	sort.SliceStable(feats, func(i, j int) bool {
		if ranks[feats[i]] != ranks[feats[j]] {
			return ranks[feats[i]] < ranks[feats[j]]
		}
		return feats[i] < feats[j]
	})
	for _, f := range feats {
		v, _ := n.State.Get(f)
		vec = append(vec, ranks[f], o.valueRank(f, v.String()))
	}
	return vec
}

func (o *orderer) orderNode(id tree.NodeID) {
	n := o.tree.Node(id)
	if n.IsLeaf() || len(n.Out) == 0 {
		return
	}

	live := make([]tree.EdgeID, 0, len(n.Out))
	keys := make(map[tree.EdgeID][]int, len(n.Out))
	for _, eid := range n.Out {
		e := o.tree.Edge(eid)
		if e == nil || o.tree.Node(e.Child) == nil {
			continue
		}
		live = append(live, eid)
		keys[eid] = o.key(e.Child)
	}

	sort.SliceStable(live, func(i, j int) bool {
		a, b := keys[live[i]], keys[live[j]]
		if c := compareVec(a, b); c != 0 {
			return c < 0
		}
		return o.tree.Edge(live[i]).Child < o.tree.Edge(live[j]).Child
	})
	n.Out = live

	for i, eid := range live {
		c := o.tree.Node(o.tree.Edge(eid).Child)
		switch {
		case i == 0:
			c.Ann.Cond = "if"
		case i == len(live)-1:
			c.Ann.Cond = "else"
		default:
			c.Ann.Cond = "elif"
		}
	}
}

func compareVec(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
