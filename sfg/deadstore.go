package sfg

import "context"

// OptimizeDeadStore drops output states with no reachable reader and no
// exported liveness, then deletes any node left with neither outputs nor
// side effects (spec.md §4.7). Returns whether anything changed.
func (g *Graph) OptimizeDeadStore(ctx context.Context) (bool, error) {
	if err := g.TopoSortNodes(ctx); err != nil {
		return false, err
	}
	start := now()
	_, end := g.startPassSpan(ctx, "optimize_dead_store")
	defer end(nil)

	changed := false
	var victims []*Node

	for _, n := range g.pending {
		if n.Meta == nil || n.Meta.HasSideEffects {
			continue
		}
		dropped := g.dropDeadOutputs(n)
		if dropped > 0 {
			changed = true
		}
		if len(n.Meta.OutputStates) == 0 && !n.Meta.HasSideEffects {
			g.rewireAroundDeadNode(n)
			victims = append(victims, n)
		}
	}

	if len(victims) > 0 {
		g.deleteNodes(victims)
		changed = true
	}

	if g.cfg.metrics != nil {
		g.cfg.metrics.RecordPassDuration(g.id, "deadstore", float64(now().Sub(start).Microseconds())/1000)
		g.cfg.metrics.IncrementPassDeletions(g.id, "deadstore", len(victims))
	}
	g.emit(-1, "optimize_dead_store", map[string]interface{}{"nodes_deleted": len(victims)})
	return changed, nil
}

// dropDeadOutputs removes every output state of n that has no reachable
// reader before the next writer and is not among the graph's exported live
// states. Returns the number of states dropped.
//
// TaskMeta is shared by every node launched from the same body fingerprint
// (spec.md §4.1.1), so this never writes through n.Meta directly: the first
// state it drops triggers a copy-on-write, exactly the pattern applyDemotion
// uses, leaving every sibling node's metadata untouched.
func (g *Graph) dropDeadOutputs(n *Node) int {
	dropped := 0
	var copied bool
	for _, s := range n.Meta.OutputStates.Slice() {
		if g.cfg.liveStates != nil && g.cfg.liveStates.Contains(s) {
			continue
		}
		if g.hasReachableReader(n, s) {
			continue
		}
		if !copied {
			newMeta := *n.Meta
			n.Meta = &newMeta
			copied = true
		}
		n.Meta.OutputStates = n.Meta.OutputStates.Sub(NewStateSet(s))
		if succs := n.OutEdges.Get(s); succs != nil {
			for _, succ := range succs.Slice() {
				succ.InEdges.Get(s).Remove(n)
			}
		}
		n.OutEdges.removeState(s)
		dropped++
	}
	return dropped
}

// hasReachableReader reports whether some node reachable from n via
// outbound edges reads s before any node overwrites s as an output.
func (g *Graph) hasReachableReader(n *Node, s AsyncState) bool {
	succs := n.OutEdges.Get(s)
	if succs == nil {
		return false
	}
	found := false
	succs.Each(func(m *Node) {
		if found {
			return
		}
		if m.Meta != nil && m.Meta.InputStates.Contains(s) {
			found = true
			return
		}
		if m.Meta != nil && m.Meta.OutputStates.Contains(s) {
			return
		}
		if g.hasReachableReader(m, s) {
			found = true
		}
	})
	return found
}

// rewireAroundDeadNode splices n out of the graph on each state it still
// carries edges for, connecting every predecessor under that state directly
// to every former successor under the same state, preserving the ordering
// of the states that remain live (spec.md §4.7: "rewire its inbound
// dependency edges directly to each former successor").
func (g *Graph) rewireAroundDeadNode(n *Node) {
	for _, s := range n.InEdges.States() {
		preds := n.InEdges.Get(s)
		succs := n.OutEdges.Get(s)
		if succs == nil {
			continue
		}
		preds.Each(func(p *Node) {
			succs.Each(func(c *Node) {
				insertEdge(p, c, s)
			})
		})
	}
}
