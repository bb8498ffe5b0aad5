package tree

// State is an insertion-ordered mapping from feature name to the value the
// feature must hold to reach a node (the conjunction of all ancestor edge
// tests). Ordering is preserved so that sibling comparison and compound
// feature resolution are deterministic.
type State struct {
	keys []string
	vals map[string]Value
}

// NewState returns an empty state.
func NewState() *State {
	return &State{vals: make(map[string]Value)}
}

// Set stores a value for a feature, keeping the feature's first insertion
// position when it already exists.
func (s *State) Set(feature string, v Value) {
	if _, ok := s.vals[feature]; !ok {
		s.keys = append(s.keys, feature)
	}
	s.vals[feature] = v
}

// Get returns the value for a feature and whether it is present.
func (s *State) Get(feature string) (Value, bool) {
	v, ok := s.vals[feature]
	return v, ok
}

// Delete removes a feature from the state. No-op when absent.
func (s *State) Delete(feature string) {
	if _, ok := s.vals[feature]; !ok {
		return
	}
	delete(s.vals, feature)
	for i, k := range s.keys {
		if k == feature {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
}

// Features returns the feature names in insertion order.
func (s *State) Features() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Len returns the number of entries.
func (s *State) Len() int {
	return len(s.keys)
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	c := NewState()
	for _, k := range s.keys {
		c.Set(k, s.vals[k].Clone())
	}
	return c
}
