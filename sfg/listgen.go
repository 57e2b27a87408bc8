package sfg

import "context"

// OptimizeListgen deduplicates list-regeneration tasks (spec.md §4.5): for
// each pending listgen task T targeting sparse node S, if an earlier
// pending listgen task T' for S exists with no intervening node
// invalidating S's list, T is deleted and its outbound edges redirect to
// T'. Returns whether any deletion occurred.
func (g *Graph) OptimizeListgen(ctx context.Context) (bool, error) {
	start := now()
	_, end := g.startPassSpan(ctx, "optimize_listgen")
	defer end(nil)

	fresh := make(map[*Resource]*Node)
	var victims []*Node

	for _, n := range g.pending {
		if n.Meta.ListWrites != nil {
			target := n.Meta.ListWrites
			if prev, ok := fresh[target]; ok {
				for _, s := range n.OutEdges.States() {
					n.OutEdges.Get(s).Each(func(succ *Node) {
						if succ != prev {
							insertEdge(prev, succ, s)
						}
					})
				}
				victims = append(victims, n)
				continue
			}
			fresh[target] = n
		}
		for _, invalidated := range n.Meta.InvalidatesLists {
			for s := range fresh {
				if resourceInvalidates(invalidated, s) {
					delete(fresh, s)
				}
			}
		}
	}

	if len(victims) > 0 {
		g.deleteNodes(victims)
	}

	if g.cfg.metrics != nil {
		g.cfg.metrics.RecordPassDuration(g.id, "listgen", float64(now().Sub(start).Microseconds())/1000)
		g.cfg.metrics.IncrementPassDeletions(g.id, "listgen", len(victims))
		g.cfg.metrics.IncrementListgenDedup(g.id, "optimize", len(victims))
	}
	g.emit(-1, "optimize_listgen", map[string]interface{}{"deleted": len(victims)})
	return len(victims) > 0, nil
}

// resourceInvalidates reports whether invalidating r also invalidates
// target, i.e. target is r itself or a descendant of r in the sparse-node
// hierarchy (spec.md §4.1: "falsify it for all descendants").
func resourceInvalidates(r, target *Resource) bool {
	if r == target {
		return true
	}
	for _, child := range r.Children {
		if resourceInvalidates(child, target) {
			return true
		}
	}
	return false
}
