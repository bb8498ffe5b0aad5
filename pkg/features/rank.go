package features

// Ranking is an explicit ordered priority map. Configured names receive
// ranks in list order, with names grouped in the same entry sharing one
// rank. Unseen names fall back to highest existing rank + 1, assigned in
// first-lookup order and remembered, so identical lookup sequences always
// produce identical ranks.
type Ranking struct {
	rank map[string]int
	next int
}

// NewRanking builds a ranking from priority groups.
func NewRanking(groups [][]string) *Ranking {
	r := &Ranking{rank: make(map[string]int)}
	for _, group := range groups {
		assigned := false
		for _, name := range group {
			if _, ok := r.rank[name]; ok {
				continue
			}
			r.rank[name] = r.next
			assigned = true
		}
		if assigned {
			r.next++
		}
	}
	return r
}

// NewValueRanking builds a ranking from a flat priority list, one rank per
// entry.
func NewValueRanking(values []string) *Ranking {
	groups := make([][]string, len(values))
	for i, v := range values {
		groups[i] = []string{v}
	}
	return NewRanking(groups)
}

// Rank returns the priority of a name, lower meaning earlier. Unlisted
// names rank after all listed ones, in first-seen order.
func (r *Ranking) Rank(name string) int {
	if rank, ok := r.rank[name]; ok {
		return rank
	}
	rank := r.next
	r.rank[name] = rank
	r.next++
	return rank
}
