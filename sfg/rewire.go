package sfg

// disconnectAll removes n from the inbound/outbound sets of every neighbor
// and clears n's own edge maps (spec.md §4.9).
func disconnectAll(n *Node) {
	for _, s := range n.OutEdges.States() {
		n.OutEdges.Get(s).Each(func(succ *Node) {
			succ.InEdges.Get(s).Remove(n)
		})
	}
	for _, s := range n.InEdges.States() {
		n.InEdges.Get(s).Each(func(pred *Node) {
			pred.OutEdges.Get(s).Remove(n)
		})
	}
	n.OutEdges = newEdgeMap()
	n.InEdges = newEdgeMap()
}

// disconnectWith removes the symmetric edge on every state between n and m
// (spec.md §4.9).
func disconnectWith(n, m *Node) {
	for _, s := range n.OutEdges.States() {
		if set := n.OutEdges.Get(s); set != nil && set.Remove(m) {
			if in := m.InEdges.Get(s); in != nil {
				in.Remove(n)
			}
		}
	}
	for _, s := range n.InEdges.States() {
		if set := n.InEdges.Get(s); set != nil && set.Remove(m) {
			if out := m.OutEdges.Get(s); out != nil {
				out.Remove(n)
			}
		}
	}
}

// replaceReference substitutes b for a wherever a appears as an outbound
// neighbor of some node, under every state; if onlyOutputEdges is false the
// symmetric substitution is also done for inbound edges (spec.md §4.9).
// a's own neighbor sets on each substituted side are emptied.
func replaceReference(a, b *Node, onlyOutputEdges bool) {
	for _, s := range a.InEdges.States() {
		a.InEdges.Get(s).Each(func(pred *Node) {
			if out := pred.OutEdges.Get(s); out != nil && out.Remove(a) {
				out.Add(b)
				b.InEdges.getOrCreate(s).Add(pred)
			}
		})
		*a.InEdges.Get(s) = NodeSet{}
	}
	if onlyOutputEdges {
		return
	}
	for _, s := range a.OutEdges.States() {
		a.OutEdges.Get(s).Each(func(succ *Node) {
			if in := succ.InEdges.Get(s); in != nil && in.Remove(a) {
				in.Add(b)
				b.OutEdges.getOrCreate(s).Add(succ)
			}
		})
		*a.OutEdges.Get(s) = NodeSet{}
	}
}

// deleteNodes removes the given nodes from the graph's master and pending
// lists in one pass, disconnecting each first, then refreshes identifiers
// (spec.md §4.9: "delete_nodes(indices)").
func (g *Graph) deleteNodes(victims []*Node) {
	if len(victims) == 0 {
		return
	}
	dead := make(map[*Node]struct{}, len(victims))
	for _, v := range victims {
		dead[v] = struct{}{}
		disconnectAll(v)
	}

	nodes := g.nodes[:0:0]
	for _, n := range g.nodes {
		if _, ok := dead[n]; !ok {
			nodes = append(nodes, n)
		}
	}
	g.nodes = nodes

	pending := g.pending[:0:0]
	for _, n := range g.pending {
		if _, ok := dead[n]; !ok {
			pending = append(pending, n)
		}
	}
	g.pending = pending

	g.reidNodes()
	g.reidPendingNodes()
}
