package sfg_test

import (
	"fmt"
	"testing"

	"github.com/dshills/sfg"
)

// buildChainGraph constructs n sequential element-wise writers of the same
// state, the shape that stresses TopoSortNodes the way a long pending
// suffix does in production (spec.md §9: "a performance probe only").
func buildChainGraph(b *testing.B, n int) *sfg.Graph {
	b.Helper()
	bank := sfg.NewMemoryBank()
	g, err := sfg.New(bank)
	if err != nil {
		b.Fatalf("New: %v", err)
	}
	sigma := sfg.NewState(sfg.NewResource("sigma"), sfg.StateValue)

	var recs []sfg.LaunchRecord
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("task%d", i)
		meta := &sfg.TaskMeta{
			Name:         name,
			Fingerprint:  name,
			OutputStates: sfg.NewStateSet(sigma),
		}
		bank.Intern(meta)
		recs = append(recs, sfg.LaunchRecord{Fingerprint: name, Payload: name})
	}
	if err := g.InsertTasks(b.Context(), recs); err != nil {
		b.Fatalf("InsertTasks: %v", err)
	}
	return g
}

// BenchmarkTopoSortNodes_LargeChain times re-sorting a long pending suffix
// (spec.md §9's "rebuild_graph"-equivalent performance probe; the SFG core
// has no separate Graph.Rebuild, so TopoSortNodes stands in for it).
func BenchmarkTopoSortNodes_LargeChain(b *testing.B) {
	const nodeCount = 200
	g := buildChainGraph(b, nodeCount)
	ctx := b.Context()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := g.TopoSortNodes(ctx); err != nil {
			b.Fatalf("TopoSortNodes: %v", err)
		}
	}
	b.StopTimer()

	opsPerSec := float64(b.N) / b.Elapsed().Seconds()
	b.ReportMetric(opsPerSec, "sorts/sec")
	b.ReportMetric(float64(nodeCount), "nodes")
}

// BenchmarkComputeTransitiveClosure_LargeChain times the bitset-parallel
// reachability pass over the same chain shape.
func BenchmarkComputeTransitiveClosure_LargeChain(b *testing.B) {
	const nodeCount = 200
	g := buildChainGraph(b, nodeCount)
	ctx := b.Context()
	if err := g.TopoSortNodes(ctx); err != nil {
		b.Fatalf("TopoSortNodes: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.ComputeTransitiveClosure(ctx, 0, g.NumPendingTasks())
	}
}
