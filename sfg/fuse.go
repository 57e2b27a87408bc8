package sfg

import (
	"context"
	"fmt"
)

// FuseRange scans pairs of pending nodes in [begin, end) in topological
// order and fuses compatible adjacent pairs, batching fuses that do not
// conflict: a node may be the target of at most one fuse per call (spec.md
// §4.4). Returns the number of nodes deleted by fusion.
func (g *Graph) FuseRange(ctx context.Context, begin, end int) (int, error) {
	if err := g.TopoSortNodes(ctx); err != nil {
		return 0, err
	}
	start := now()
	_, spanEnd := g.startPassSpan(ctx, "fuse_range")
	var err error
	defer func() { spanEnd(err) }()

	if end > len(g.pending) {
		end = len(g.pending)
	}
	if begin < 0 || begin >= end {
		return 0, nil
	}

	closure := g.ComputeTransitiveClosure(ctx, begin, end)

	consumed := make(map[*Node]bool, end-begin)
	var victims []*Node

	for ai := begin; ai < end; ai++ {
		a := g.pending[ai]
		if consumed[a] {
			continue
		}
		for bi := ai + 1; bi < end; bi++ {
			b := g.pending[bi]
			if consumed[b] {
				continue
			}
			if !g.canFuse(a, b, closure) {
				continue
			}
			merged, ok := g.bank.FuseBodies(a.Rec, b.Rec)
			if !ok {
				continue
			}
			g.applyFuse(a, b, merged)
			consumed[a] = true
			consumed[b] = true
			victims = append(victims, a)
			break
		}
	}

	if len(victims) > 0 {
		g.deleteNodes(victims)
	}

	if g.cfg.metrics != nil {
		g.cfg.metrics.RecordPassDuration(g.id, "fuse", float64(now().Sub(start).Microseconds())/1000)
		g.cfg.metrics.IncrementPassDeletions(g.id, "fuse", len(victims))
	}
	g.emit(-1, "fuse_range", map[string]interface{}{"deleted": len(victims)})
	return len(victims), nil
}

// Fuse iterates FuseRange over the entire pending suffix — optionally in
// windows bounded by WithFusionWindow to cap the transitive-closure
// bitset's memory — until a pass produces no deletions. Returns whether any
// fusion occurred (spec.md §4.4: "fuse()").
func (g *Graph) Fuse(ctx context.Context) (bool, error) {
	any := false
	for {
		window := len(g.pending)
		if g.cfg.fusionWindow > 0 && g.cfg.fusionWindow < window {
			window = g.cfg.fusionWindow
		}

		total := 0
		for begin := 0; begin < len(g.pending); begin += window {
			end := begin + window
			if end > len(g.pending) {
				end = len(g.pending)
			}
			deleted, err := g.FuseRange(ctx, begin, end)
			if err != nil {
				return any, err
			}
			total += deleted
			if deleted > 0 {
				// Node indices shifted; restart the windowed scan from the
				// beginning of the (now shorter) pending suffix.
				break
			}
		}
		if total == 0 {
			break
		}
		any = true
	}
	return any, nil
}

// FuseNodes attempts to fuse two specific pending nodes named by the
// caller, e.g. in response to a profiler's fusion hint. Unlike Fuse and
// FuseRange's best-effort scan, which silently skip a candidate pair that
// fails a safety condition, a rejection here is reported to the caller:
// FuseNodes returns ErrFusionRejected wrapped with the failing reason. It
// returns ErrUnknownNode if either node does not belong to this graph, or
// ErrNotPending if either has already been extracted (or is the initial
// node). On success, a is merged into b and deleted; b is left holding the
// fused body.
func (g *Graph) FuseNodes(ctx context.Context, a, b *Node) error {
	if !g.owns(a) || !g.owns(b) {
		return ErrUnknownNode
	}
	if !a.IsPending() || !b.IsPending() {
		return ErrNotPending
	}
	if a.PendingID > b.PendingID {
		a, b = b, a
	}

	if err := g.TopoSortNodes(ctx); err != nil {
		return err
	}
	start := now()
	_, spanEnd := g.startPassSpan(ctx, "fuse_nodes")
	var err error
	defer func() { spanEnd(err) }()

	closure := g.ComputeTransitiveClosure(ctx, 0, len(g.pending))
	if !g.canFuse(a, b, closure) {
		err = fmt.Errorf("%w: %s and %s do not satisfy fusion safety conditions", ErrFusionRejected, a.Meta.Name, b.Meta.Name)
		return err
	}
	merged, ok := g.bank.FuseBodies(a.Rec, b.Rec)
	if !ok {
		err = fmt.Errorf("%w: bank rejected merging %s and %s", ErrFusionRejected, a.Meta.Name, b.Meta.Name)
		return err
	}
	g.applyFuse(a, b, merged)
	g.deleteNodes([]*Node{a})

	if g.cfg.metrics != nil {
		g.cfg.metrics.RecordPassDuration(g.id, "fuse", float64(now().Sub(start).Microseconds())/1000)
		g.cfg.metrics.IncrementPassDeletions(g.id, "fuse", 1)
	}
	g.emit(-1, "fuse_nodes", map[string]interface{}{"deleted": 1})
	return nil
}

// canFuse checks fusion safety conditions 1-4 (spec.md §4.4), then
// condition 5 (IR-level joinability) via bank.AreFusible; the caller
// attempts bank.FuseBodies only after it returns true.
func (g *Graph) canFuse(a, b *Node, closure *Closure) bool {
	if a.IsInitialNode || b.IsInitialNode || !a.IsPending() || !b.IsPending() {
		return false
	}
	if !sameLaunchShape(a.Meta, b.Meta) || !sameLaunchInvariants(a.Meta, b.Meta) {
		return false
	}
	ai, bi := closure.localIndex(a), closure.localIndex(b)
	if ai < 0 || bi < 0 {
		return false
	}
	// a and b are isolated iff the only node both reachable from a and able
	// to reach b is the pair itself: no third pending node sits between
	// them on any path.
	overlap := closure.HasPathTo[ai].and(closure.HasPathFrom[bi])
	isolated := overlap.count() == 2 && overlap.test(ai) && overlap.test(bi)
	if !isolated {
		return false
	}
	return g.bank.AreFusible(a.Meta, b.Meta)
}

// applyFuse merges a into b: b's metadata becomes the union described by
// spec.md §4.4 ("Procedure"), b inherits a's inbound edges, a's other
// outbound edges transfer to b, and a is left for the caller to delete via
// deleteNodes.
func (g *Graph) applyFuse(a, b *Node, merged LaunchRecord) {
	mergedMeta := &TaskMeta{
		Name:                 b.Meta.Name,
		Fingerprint:          merged.Fingerprint,
		InputStates:          a.Meta.InputStates.Union(b.Meta.InputStates.Sub(a.Meta.OutputStates)),
		OutputStates:         a.Meta.OutputStates.Union(b.Meta.OutputStates),
		Shape:                b.Meta.Shape,
		Begin:                b.Meta.Begin,
		End:                  b.Meta.End,
		SparseRoot:           b.Meta.SparseRoot,
		Backend:              b.Meta.Backend,
		BlockDim:             b.Meta.BlockDim,
		ListWrites:           b.Meta.ListWrites,
		InvalidatesLists:     append(append([]*Resource{}, a.Meta.InvalidatesLists...), b.Meta.InvalidatesLists...),
		ActivationCandidate:  b.Meta.ActivationCandidate,
		Activates:            append(append([]*Resource{}, a.Meta.Activates...), b.Meta.Activates...),
		Deactivates:          append(append([]*Resource{}, a.Meta.Deactivates...), b.Meta.Deactivates...),
		HasSideEffects:       a.Meta.HasSideEffects || b.Meta.HasSideEffects,
	}

	for _, s := range a.InEdges.States() {
		a.InEdges.Get(s).Each(func(pred *Node) {
			if pred != b {
				insertEdge(pred, b, s)
			}
		})
	}
	for _, s := range a.OutEdges.States() {
		a.OutEdges.Get(s).Each(func(succ *Node) {
			if succ != b {
				insertEdge(b, succ, s)
			}
		})
	}

	b.Rec = merged
	b.Meta = mergedMeta
}
