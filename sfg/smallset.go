package sfg

// inlineCap is the small-set inline capacity; the Design Notes call out
// "measured allocation rate" on the common low-fan-out case as the metric
// that matters, so NodeSet avoids allocating until a neighbor set grows
// past this many entries.
const inlineCap = 8

// NodeSet is an inline-buffered set of *Node specialized for the common
// case of a handful of neighbors per (state, node) pair (spec.md Design
// Notes, "Shared small sets of neighbors"). Up to inlineCap entries live in
// a fixed array with no heap allocation beyond the NodeSet itself; growth
// past that spills into an overflow map.
type NodeSet struct {
	inline   [inlineCap]*Node
	n        int
	overflow map[*Node]struct{}
}

// Add inserts node into the set, returning true if it was not already
// present.
func (s *NodeSet) Add(node *Node) bool {
	if s.Contains(node) {
		return false
	}
	if s.overflow == nil && s.n < inlineCap {
		s.inline[s.n] = node
		s.n++
		return true
	}
	if s.overflow == nil {
		s.overflow = make(map[*Node]struct{}, inlineCap*2)
	}
	s.overflow[node] = struct{}{}
	return true
}

// Remove deletes node from the set, returning true if it was present.
func (s *NodeSet) Remove(node *Node) bool {
	for i := 0; i < s.n; i++ {
		if s.inline[i] == node {
			s.n--
			s.inline[i] = s.inline[s.n]
			s.inline[s.n] = nil
			return true
		}
	}
	if s.overflow != nil {
		if _, ok := s.overflow[node]; ok {
			delete(s.overflow, node)
			return true
		}
	}
	return false
}

// Contains reports whether node is a member of the set.
func (s *NodeSet) Contains(node *Node) bool {
	for i := 0; i < s.n; i++ {
		if s.inline[i] == node {
			return true
		}
	}
	if s.overflow != nil {
		_, ok := s.overflow[node]
		return ok
	}
	return false
}

// Len returns the number of members in the set.
func (s *NodeSet) Len() int {
	return s.n + len(s.overflow)
}

// Each calls fn once per member, in no particular order. fn must not
// mutate the set.
func (s *NodeSet) Each(fn func(*Node)) {
	for i := 0; i < s.n; i++ {
		fn(s.inline[i])
	}
	for node := range s.overflow {
		fn(node)
	}
}

// Slice returns the set's members as a slice, in no particular order.
func (s *NodeSet) Slice() []*Node {
	out := make([]*Node, 0, s.Len())
	s.Each(func(n *Node) { out = append(out, n) })
	return out
}
