package sfg

import "context"

// ExtractToExecute runs TopoSortNodes, collects the launch records of every
// pending node in order, marks them executed (PendingID becomes -1, and
// they are no longer pending candidates for further optimization), and
// returns the record vector (spec.md §4.8).
func (g *Graph) ExtractToExecute(ctx context.Context) ([]LaunchRecord, error) {
	if err := g.TopoSortNodes(ctx); err != nil {
		return nil, err
	}

	_, end := g.startPassSpan(ctx, "extract_to_execute")
	defer end(nil)

	records := make([]LaunchRecord, len(g.pending))
	for i, n := range g.pending {
		records[i] = n.Rec
	}

	g.markPendingTasksAsExecuted()
	g.recordMetrics()
	g.emit(-1, "extract_to_execute", map[string]interface{}{"count": len(records)})
	return records, nil
}

// markPendingTasksAsExecuted empties the pending suffix; every formerly
// pending node's PendingID becomes -1 (spec.md §4.8).
func (g *Graph) markPendingTasksAsExecuted() {
	for _, n := range g.pending {
		n.PendingID = -1
	}
	g.pending = g.pending[:0]
}
