package sfg

import "context"

// Closure holds the transitive-closure bitsets produced by
// ComputeTransitiveClosure over a pending range [begin, end) (spec.md
// §4.2). HasPathFrom[i] has bit j set iff pending[begin+j] -> * ->
// pending[begin+i]; HasPathTo[i] has bit j set iff pending[begin+i] -> * ->
// pending[begin+j]. Both are indexed relative to begin, i.e. local index i
// corresponds to pending[begin+i].
type Closure struct {
	begin, end  int
	HasPathFrom []*bitset
	HasPathTo   []*bitset
}

// Len returns end-begin, the number of nodes the closure covers.
func (c *Closure) Len() int { return c.end - c.begin }

// localIndex converts a node's PendingID into an index into HasPathFrom /
// HasPathTo, or -1 if n falls outside [begin, end).
func (c *Closure) localIndex(n *Node) int {
	if n.PendingID < c.begin || n.PendingID >= c.end {
		return -1
	}
	return n.PendingID - c.begin
}

// HasPath reports whether there is a directed path from a to b within the
// range this closure covers.
func (c *Closure) HasPath(a, b *Node) bool {
	ai, bi := c.localIndex(a), c.localIndex(b)
	if ai < 0 || bi < 0 {
		return false
	}
	return c.HasPathTo[ai].test(bi)
}

// ComputeTransitiveClosure computes reachability within the induced
// subgraph over pending[begin:end] (spec.md §4.2). Nodes in that range must
// already be in topological order (true after TopoSortNodes). Complexity is
// O(N * E / W) thanks to word-parallel bitset unions, where N = end-begin.
func (g *Graph) ComputeTransitiveClosure(ctx context.Context, begin, end int) *Closure {
	start := now()
	_, spanEnd := g.startPassSpan(ctx, "compute_transitive_closure")
	defer spanEnd(nil)

	n := end - begin
	c := &Closure{
		begin:       begin,
		end:         end,
		HasPathFrom: make([]*bitset, n),
		HasPathTo:   make([]*bitset, n),
	}
	for i := 0; i < n; i++ {
		c.HasPathFrom[i] = newBitset(n)
		c.HasPathTo[i] = newBitset(n)
	}

	// Forward pass: has_path_from[i] gathers every predecessor within range,
	// transitively, by OR-ing each direct predecessor's own forward set.
	for i := 0; i < n; i++ {
		node := g.pending[begin+i]
		c.HasPathFrom[i].set(i)
		for _, s := range node.InEdges.States() {
			node.InEdges.Get(s).Each(func(pred *Node) {
				pj := pred.PendingID - begin
				if pj < 0 || pj >= n || pj == i {
					return
				}
				c.HasPathFrom[i].or(c.HasPathFrom[pj])
			})
		}
	}

	// Backward pass: has_path_to[i] gathers every successor within range,
	// transitively, symmetric to the forward pass.
	for i := n - 1; i >= 0; i-- {
		node := g.pending[begin+i]
		c.HasPathTo[i].set(i)
		for _, s := range node.OutEdges.States() {
			node.OutEdges.Get(s).Each(func(succ *Node) {
				sj := succ.PendingID - begin
				if sj < 0 || sj >= n || sj == i {
					return
				}
				c.HasPathTo[i].or(c.HasPathTo[sj])
			})
		}
	}

	if g.cfg.metrics != nil {
		g.cfg.metrics.RecordClosureDuration(g.id, float64(now().Sub(start).Microseconds())/1000)
	}
	return c
}
