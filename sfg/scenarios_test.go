package sfg_test

import (
	"testing"

	"github.com/dshills/sfg"
)

// testBank returns a MemoryBank configured so fusion always succeeds at the
// IR level; the scenarios below exercise the SFG's own safety conditions
// (launch shape, reachability isolation), not bank-level rejection.
func testBank() *sfg.MemoryBank {
	b := sfg.NewMemoryBank()
	b.SetMergeBodies(func(a, c any) (any, bool) { return "merged", true })
	b.SetFusibilityCheck(func(a, c *sfg.TaskMeta) bool { return true })
	return b
}

func rec(bank *sfg.MemoryBank, name string, meta *sfg.TaskMeta) sfg.LaunchRecord {
	meta.Name = name
	meta.Fingerprint = name
	bank.Intern(meta)
	return sfg.LaunchRecord{Fingerprint: name, Payload: name}
}

// S1: fuse two element-wise writers of the same state.
func TestScenario_S1_FuseElementWiseWriters(t *testing.T) {
	ctx := t.Context()
	bank := testBank()
	sigma1 := sfg.NewState(sfg.NewResource("sigma1"), sfg.StateValue)

	a := rec(bank, "A", &sfg.TaskMeta{
		OutputStates: sfg.NewStateSet(sigma1),
		Shape:        sfg.ShapeElementWise, Begin: 0, End: 10,
	})
	b := rec(bank, "B", &sfg.TaskMeta{
		OutputStates: sfg.NewStateSet(sigma1),
		Shape:        sfg.ShapeElementWise, Begin: 0, End: 10,
	})

	g, err := sfg.New(bank)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := g.InsertTasks(ctx, []sfg.LaunchRecord{a, b}); err != nil {
		t.Fatalf("InsertTasks: %v", err)
	}

	fused, err := g.Fuse(ctx)
	if err != nil {
		t.Fatalf("Fuse: %v", err)
	}
	if !fused {
		t.Fatalf("expected Fuse to report a change")
	}
	if got := len(g.Pending()); got != 1 {
		t.Fatalf("expected 1 pending node after fuse, got %d", got)
	}
	if !g.Pending()[0].Meta.OutputStates.Contains(sigma1) {
		t.Fatalf("fused node lost output state sigma1")
	}

	records, err := g.ExtractToExecute(ctx)
	if err != nil {
		t.Fatalf("ExtractToExecute: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 emitted record, got %d", len(records))
	}
}

// S2: a reader of sigma1 sitting between two writers blocks fusion of the
// writers (and of either writer with the reader).
func TestScenario_S2_BlockFusionAcrossReader(t *testing.T) {
	ctx := t.Context()
	bank := testBank()
	sigma1 := sfg.NewState(sfg.NewResource("sigma1"), sfg.StateValue)
	sigma2 := sfg.NewState(sfg.NewResource("sigma2"), sfg.StateValue)

	a := rec(bank, "A", &sfg.TaskMeta{
		OutputStates: sfg.NewStateSet(sigma1),
		Shape:        sfg.ShapeElementWise, Begin: 0, End: 10,
	})
	r := rec(bank, "R", &sfg.TaskMeta{
		InputStates:  sfg.NewStateSet(sigma1),
		OutputStates: sfg.NewStateSet(sigma2),
		Shape:        sfg.ShapeRangeFor, Begin: 0, End: 5,
	})
	b := rec(bank, "B", &sfg.TaskMeta{
		OutputStates: sfg.NewStateSet(sigma1),
		Shape:        sfg.ShapeElementWise, Begin: 0, End: 10,
	})

	g, err := sfg.New(bank)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := g.InsertTasks(ctx, []sfg.LaunchRecord{a, r, b}); err != nil {
		t.Fatalf("InsertTasks: %v", err)
	}

	fused, err := g.Fuse(ctx)
	if err != nil {
		t.Fatalf("Fuse: %v", err)
	}
	if fused {
		t.Fatalf("expected Fuse to report no change, fusion should be blocked")
	}

	records, err := g.ExtractToExecute(ctx)
	if err != nil {
		t.Fatalf("ExtractToExecute: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 emitted records, got %d", len(records))
	}
	got := []string{records[0].Fingerprint, records[1].Fingerprint, records[2].Fingerprint}
	want := []string{"A", "R", "B"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("emit order = %v, want %v", got, want)
		}
	}
}

// S3: with redundant-listgen filtering disabled at insertion time, a
// second consecutive list-regen task for the same sparse node is merged
// away by optimize_listgen.
func TestScenario_S3_ListgenDedup(t *testing.T) {
	ctx := t.Context()
	bank := testBank()
	target := sfg.NewResource("sparseNode")
	listState := sfg.NewState(target, sfg.StateList)

	t1 := rec(bank, "T1", &sfg.TaskMeta{
		OutputStates: sfg.NewStateSet(listState),
		ListWrites:   target,
	})
	t2 := rec(bank, "T2", &sfg.TaskMeta{
		OutputStates: sfg.NewStateSet(listState),
		ListWrites:   target,
	})

	g, err := sfg.New(bank, sfg.WithListgenFilter(false))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := g.InsertTasks(ctx, []sfg.LaunchRecord{t1, t2}); err != nil {
		t.Fatalf("InsertTasks: %v", err)
	}
	if got := len(g.Pending()); got != 2 {
		t.Fatalf("expected both listgen tasks inserted with filter disabled, got %d pending", got)
	}

	deleted, err := g.OptimizeListgen(ctx)
	if err != nil {
		t.Fatalf("OptimizeListgen: %v", err)
	}
	if !deleted {
		t.Fatalf("expected OptimizeListgen to report a deletion")
	}
	if got := len(g.Pending()); got != 1 {
		t.Fatalf("expected 1 pending node after listgen dedup, got %d", got)
	}
}

// S4: a write with no readers and no exported liveness is dead-store
// eliminated entirely.
func TestScenario_S4_DeadStore(t *testing.T) {
	ctx := t.Context()
	bank := testBank()
	sigma1 := sfg.NewState(sfg.NewResource("sigma1"), sfg.StateValue)

	a := rec(bank, "A", &sfg.TaskMeta{OutputStates: sfg.NewStateSet(sigma1)})
	b := rec(bank, "B", &sfg.TaskMeta{OutputStates: sfg.NewStateSet(sigma1)})

	g, err := sfg.New(bank)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := g.InsertTasks(ctx, []sfg.LaunchRecord{a, b}); err != nil {
		t.Fatalf("InsertTasks: %v", err)
	}

	changed, err := g.OptimizeDeadStore(ctx)
	if err != nil {
		t.Fatalf("OptimizeDeadStore: %v", err)
	}
	if !changed {
		t.Fatalf("expected OptimizeDeadStore to report a change")
	}
	if got := len(g.Pending()); got != 0 {
		t.Fatalf("expected both dead-store nodes deleted, %d remain", got)
	}
}

// S5: two readers of the same state both gain a dependency edge to the
// next writer, and both gain a flow edge from the prior writer.
func TestScenario_S5_WriteAfterReadDependency(t *testing.T) {
	ctx := t.Context()
	bank := testBank()
	sigma1 := sfg.NewState(sfg.NewResource("sigma1"), sfg.StateValue)

	a := rec(bank, "A", &sfg.TaskMeta{OutputStates: sfg.NewStateSet(sigma1)})
	r1 := rec(bank, "R1", &sfg.TaskMeta{InputStates: sfg.NewStateSet(sigma1)})
	r2 := rec(bank, "R2", &sfg.TaskMeta{InputStates: sfg.NewStateSet(sigma1)})
	w := rec(bank, "W", &sfg.TaskMeta{OutputStates: sfg.NewStateSet(sigma1)})

	g, err := sfg.New(bank)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := g.InsertTasks(ctx, []sfg.LaunchRecord{a, r1, r2, w}); err != nil {
		t.Fatalf("InsertTasks: %v", err)
	}

	nodes := g.Pending()
	nodeA, nodeR1, nodeR2, nodeW := nodes[0], nodes[1], nodes[2], nodes[3]

	if !nodeA.OutEdges.Get(sigma1).Contains(nodeR1) {
		t.Fatalf("missing flow edge A->R1")
	}
	if !nodeA.OutEdges.Get(sigma1).Contains(nodeR2) {
		t.Fatalf("missing flow edge A->R2")
	}
	if !nodeR1.OutEdges.Get(sigma1).Contains(nodeW) {
		t.Fatalf("missing dependency edge R1->W")
	}
	if !nodeR2.OutEdges.Get(sigma1).Contains(nodeW) {
		t.Fatalf("missing dependency edge R2->W")
	}

	records, err := g.ExtractToExecute(ctx)
	if err != nil {
		t.Fatalf("ExtractToExecute: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}
	if records[0].Fingerprint != "A" || records[3].Fingerprint != "W" {
		t.Fatalf("expected order A,(R1,R2),W, got %v", records)
	}
	middle := map[string]bool{records[1].Fingerprint: true, records[2].Fingerprint: true}
	if !middle["R1"] || !middle["R2"] {
		t.Fatalf("expected R1 and R2 in the middle positions, got %v", records)
	}
}

// S6: a linear chain's transitive closure reaches every downstream (and
// upstream) node.
func TestScenario_S6_TransitiveClosureChain(t *testing.T) {
	ctx := t.Context()
	bank := testBank()
	s1 := sfg.NewState(sfg.NewResource("s1"), sfg.StateValue)
	s2 := sfg.NewState(sfg.NewResource("s2"), sfg.StateValue)
	s3 := sfg.NewState(sfg.NewResource("s3"), sfg.StateValue)

	a := rec(bank, "A", &sfg.TaskMeta{OutputStates: sfg.NewStateSet(s1)})
	b := rec(bank, "B", &sfg.TaskMeta{InputStates: sfg.NewStateSet(s1), OutputStates: sfg.NewStateSet(s2)})
	c := rec(bank, "C", &sfg.TaskMeta{InputStates: sfg.NewStateSet(s2), OutputStates: sfg.NewStateSet(s3)})
	d := rec(bank, "D", &sfg.TaskMeta{InputStates: sfg.NewStateSet(s3)})

	g, err := sfg.New(bank)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := g.InsertTasks(ctx, []sfg.LaunchRecord{a, b, c, d}); err != nil {
		t.Fatalf("InsertTasks: %v", err)
	}

	closure := g.ComputeTransitiveClosure(ctx, 0, g.NumPendingTasks())
	nodes := g.Pending()
	nodeA, nodeB, nodeC, nodeD := nodes[0], nodes[1], nodes[2], nodes[3]

	if !closure.HasPath(nodeA, nodeB) || !closure.HasPath(nodeA, nodeC) || !closure.HasPath(nodeA, nodeD) {
		t.Fatalf("expected A to reach B, C, D")
	}
	if !closure.HasPath(nodeB, nodeC) || !closure.HasPath(nodeB, nodeD) {
		t.Fatalf("expected B to reach C, D")
	}
	if !closure.HasPath(nodeC, nodeD) {
		t.Fatalf("expected C to reach D")
	}
	if closure.HasPath(nodeD, nodeA) {
		t.Fatalf("did not expect D to reach A")
	}
}
