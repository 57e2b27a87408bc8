package sfg

import "context"

// DemoteActivation replaces an implicit activate-then-write task body with
// a plain write wherever a dominating predecessor already guarantees full
// activation of the cells the task touches (spec.md §4.6). Returns whether
// any task was demoted.
func (g *Graph) DemoteActivation(ctx context.Context) (bool, error) {
	if err := g.TopoSortNodes(ctx); err != nil {
		return false, err
	}
	start := now()
	_, end := g.startPassSpan(ctx, "demote_activation")
	defer end(nil)

	demoted := 0
	for _, t := range g.pending {
		if !t.Meta.ActivationCandidate || t.Meta.SparseRoot == nil {
			continue
		}
		region := t.Meta.SparseRoot
		activator := g.findActivator(t, region)
		if activator == nil {
			continue
		}
		if err := g.applyDemotion(t, region); err != nil {
			continue
		}
		demoted++
	}

	if g.cfg.metrics != nil {
		g.cfg.metrics.RecordPassDuration(g.id, "demote", float64(now().Sub(start).Microseconds())/1000)
	}
	g.emit(-1, "demote_activation", map[string]interface{}{"demoted": demoted})
	return demoted > 0, nil
}

// findActivator looks for a pending predecessor of t that dominates it in
// the pending subgraph, is known to fully activate region, and has no
// intervening task deactivating region on every path between it and t.
func (g *Graph) findActivator(t *Node, region *Resource) *Node {
	for _, p := range g.pending {
		if p == t {
			continue
		}
		if !hasResource(p.Meta.Activates, region) {
			continue
		}
		if !g.dominates(p, t) {
			continue
		}
		if g.hasInterveningDeactivation(p, t, region) {
			continue
		}
		return p
	}
	return nil
}

// dominates reports whether every path from the initial node to t passes
// through p: equivalently, t becomes unreachable from the initial node once
// p is excluded from traversal.
func (g *Graph) dominates(p, t *Node) bool {
	if p == t {
		return false
	}
	visited := map[*Node]bool{p: true, g.initial: true}
	queue := []*Node{g.initial}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n == t {
			return false
		}
		for _, s := range n.OutEdges.States() {
			n.OutEdges.Get(s).Each(func(succ *Node) {
				if !visited[succ] {
					visited[succ] = true
					queue = append(queue, succ)
				}
			})
		}
	}
	return true
}

// hasInterveningDeactivation reports whether any pending node strictly
// between p and t (p -> * -> q -> * -> t) writes a negative mask into
// region or an ancestor of it.
func (g *Graph) hasInterveningDeactivation(p, t *Node, region *Resource) bool {
	for _, q := range g.pending {
		if q == p || q == t {
			continue
		}
		covers := false
		for _, r := range q.Meta.Deactivates {
			if resourceInvalidates(r, region) {
				covers = true
				break
			}
		}
		if !covers {
			continue
		}
		if g.reachable(p, q) && g.reachable(q, t) {
			return true
		}
	}
	return false
}

// reachable reports whether there is a directed path from a to b following
// outbound edges.
func (g *Graph) reachable(a, b *Node) bool {
	if a == b {
		return true
	}
	visited := map[*Node]bool{a: true}
	queue := []*Node{a}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		found := false
		for _, s := range n.OutEdges.States() {
			n.OutEdges.Get(s).Each(func(succ *Node) {
				if succ == b {
					found = true
				}
				if !visited[succ] {
					visited[succ] = true
					queue = append(queue, succ)
				}
			})
		}
		if found {
			return true
		}
	}
	return false
}

func hasResource(set []*Resource, target *Resource) bool {
	for _, r := range set {
		if r == target {
			return true
		}
	}
	return false
}

// applyDemotion rewrites t's body via the IR bank and swaps in the demoted
// metadata (distinct fingerprint, ActivationCandidate cleared).
func (g *Graph) applyDemotion(t *Node, region *Resource) error {
	rewritten, err := g.bank.RewriteForDemotion(t.Rec, Region{SparseNodes: []*Resource{region}})
	if err != nil {
		return err
	}
	newMeta := *t.Meta
	newMeta.Fingerprint = rewritten.Fingerprint
	newMeta.ActivationCandidate = false
	t.Rec = rewritten
	t.Meta = &newMeta
	return nil
}
