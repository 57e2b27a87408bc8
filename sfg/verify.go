package sfg

import "fmt"

// Verify asserts invariants 1-5 from spec.md §3 (edge state membership,
// edge symmetry, the initial node, identifier permutations, acyclicity),
// returning a wrapped ErrInvariantViolation describing the first one it
// finds broken. The latest-owner and latest-readers bookkeeping
// (invariant 6) is not checked. Per
// spec.md §7 this reports a programming error: callers should treat a
// non-nil return as fatal, never retry or recover from it.
func (g *Graph) Verify() error {
	if err := g.verifyEdgeConsistency(); err != nil {
		return err
	}
	if err := g.verifyEdgeStateMembership(); err != nil {
		return err
	}
	if err := g.verifyInitialNode(); err != nil {
		return err
	}
	if err := g.verifyIDPermutations(); err != nil {
		return err
	}
	if err := g.verifyAcyclic(); err != nil {
		return err
	}
	return nil
}

// verifyEdgeStateMembership checks invariant 1: for every stored edge
// A-(s)->B, s is in A's output states and either B's input states (flow) or
// B's output states (dependency).
func (g *Graph) verifyEdgeStateMembership() error {
	for _, a := range g.nodes {
		for _, s := range a.OutEdges.States() {
			if a.Meta != nil && !a.Meta.OutputStates.Contains(s) && !a.IsInitialNode {
				return fmt.Errorf("%w: node %d has outbound edge on %v not in its output states",
					ErrInvariantViolation, a.NodeID, s)
			}
			var bad error
			a.OutEdges.Get(s).Each(func(b *Node) {
				if bad != nil {
					return
				}
				flow := b.Meta != nil && b.Meta.InputStates.Contains(s)
				dep := b.Meta != nil && b.Meta.OutputStates.Contains(s)
				if !flow && !dep {
					bad = fmt.Errorf("%w: edge %d-(%v)->%d is neither flow nor dependency",
						ErrInvariantViolation, a.NodeID, s, b.NodeID)
				}
			})
			if bad != nil {
				return bad
			}
		}
	}
	return nil
}

// verifyEdgeConsistency checks invariant 2: input_edges and output_edges
// agree symmetrically.
func (g *Graph) verifyEdgeConsistency() error {
	for _, a := range g.nodes {
		for _, s := range a.OutEdges.States() {
			var bad error
			a.OutEdges.Get(s).Each(func(b *Node) {
				if bad != nil {
					return
				}
				in := b.InEdges.Get(s)
				if in == nil || !in.Contains(a) {
					bad = fmt.Errorf("%w: node %d has %d as outbound neighbor under %v, asymmetric inbound",
						ErrInvariantViolation, a.NodeID, b.NodeID, s)
				}
			})
			if bad != nil {
				return bad
			}
		}
	}
	return nil
}

// verifyInitialNode checks invariant 3: exactly one initial node.
func (g *Graph) verifyInitialNode() error {
	count := 0
	for _, n := range g.nodes {
		if n.IsInitialNode {
			count++
		}
	}
	if count != 1 {
		return fmt.Errorf("%w: expected exactly one initial node, found %d", ErrInvariantViolation, count)
	}
	return nil
}

// verifyIDPermutations checks invariant 4.
func (g *Graph) verifyIDPermutations() error {
	seen := make(map[int]bool, len(g.nodes))
	for _, n := range g.nodes {
		if n.NodeID < 0 || n.NodeID >= len(g.nodes) {
			return fmt.Errorf("%w: node_id %d out of range [0,%d)", ErrInvariantViolation, n.NodeID, len(g.nodes))
		}
		if seen[n.NodeID] {
			return fmt.Errorf("%w: duplicate node_id %d", ErrInvariantViolation, n.NodeID)
		}
		seen[n.NodeID] = true
	}

	seenPending := make(map[int]bool, len(g.pending))
	for _, n := range g.pending {
		if n.PendingID < 0 || n.PendingID >= len(g.pending) {
			return fmt.Errorf("%w: pending_node_id %d out of range [0,%d)", ErrInvariantViolation, n.PendingID, len(g.pending))
		}
		if seenPending[n.PendingID] {
			return fmt.Errorf("%w: duplicate pending_node_id %d", ErrInvariantViolation, n.PendingID)
		}
		seenPending[n.PendingID] = true
	}
	return nil
}

// verifyAcyclic checks invariant 5 via Kahn's algorithm over the whole
// master node list (not just the pending suffix).
func (g *Graph) verifyAcyclic() error {
	indegree := make(map[*Node]int, len(g.nodes))
	for _, n := range g.nodes {
		count := 0
		for _, s := range n.InEdges.States() {
			count += n.InEdges.Get(s).Len()
		}
		indegree[n] = count
	}

	queue := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		if indegree[n] == 0 {
			queue = append(queue, n)
		}
	}

	visited := 0
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		visited++
		for _, s := range n.OutEdges.States() {
			n.OutEdges.Get(s).Each(func(succ *Node) {
				indegree[succ]--
				if indegree[succ] == 0 {
					queue = append(queue, succ)
				}
			})
		}
	}

	if visited != len(g.nodes) {
		return fmt.Errorf("%w: graph is not acyclic", ErrInvariantViolation)
	}
	return nil
}
