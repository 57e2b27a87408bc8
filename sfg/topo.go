package sfg

import "context"

// TopoSortNodes runs Kahn's algorithm over the pending nodes (spec.md
// §4.3), using InEdges sizes as in-degree and breaking ties by ascending
// original PendingID for determinism. The initial node is not part of the
// pending set and implicitly precedes every pending node. On success,
// g.pending is reordered topologically and reidNodes/reidPendingNodes
// refresh identifiers. Returns ErrCycleDetected if Kahn's algorithm cannot
// order every pending node.
func (g *Graph) TopoSortNodes(ctx context.Context) error {
	_, end := g.startPassSpan(ctx, "topo_sort_nodes")
	var err error
	defer func() { end(err) }()

	pendingSet := make(map[*Node]struct{}, len(g.pending))
	for _, n := range g.pending {
		pendingSet[n] = struct{}{}
	}

	indegree := make(map[*Node]int, len(g.pending))
	for _, n := range g.pending {
		count := 0
		for _, s := range n.InEdges.States() {
			n.InEdges.Get(s).Each(func(pred *Node) {
				if _, ok := pendingSet[pred]; ok {
					count++
				}
			})
		}
		indegree[n] = count
	}

	ready := make([]*Node, 0, len(g.pending))
	for _, n := range g.pending {
		if indegree[n] == 0 {
			ready = append(ready, n)
		}
	}

	ordered := make([]*Node, 0, len(g.pending))
	for len(ready) > 0 {
		// Deterministic tie-break: ascending original PendingID. Nodes are
		// appended to ready in edge-set order, so each step takes the
		// lowest PendingID currently in ready.
		next := popLowestPendingID(ready)
		ready = removeNode(ready, next)
		ordered = append(ordered, next)

		for _, s := range next.OutEdges.States() {
			next.OutEdges.Get(s).Each(func(succ *Node) {
				if _, ok := pendingSet[succ]; !ok {
					return
				}
				indegree[succ]--
				if indegree[succ] == 0 {
					ready = append(ready, succ)
				}
			})
		}
	}

	if len(ordered) != len(g.pending) {
		err = ErrCycleDetected
		return err
	}

	g.pending = ordered
	g.reidNodes()
	g.reidPendingNodes()
	return nil
}

func popLowestPendingID(ready []*Node) *Node {
	best := ready[0]
	for _, n := range ready[1:] {
		if n.PendingID < best.PendingID {
			best = n
		}
	}
	return best
}

func removeNode(nodes []*Node, target *Node) []*Node {
	for i, n := range nodes {
		if n == target {
			return append(nodes[:i], nodes[i+1:]...)
		}
	}
	return nodes
}
