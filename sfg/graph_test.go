package sfg

import "testing"

func insert(t *testing.T, g *Graph, bank *MemoryBank, name string, meta *TaskMeta) LaunchRecord {
	t.Helper()
	meta.Name = name
	meta.Fingerprint = name
	bank.Intern(meta)
	rec := LaunchRecord{Fingerprint: name, Payload: name}
	if err := g.InsertTasks(t.Context(), []LaunchRecord{rec}); err != nil {
		t.Fatalf("InsertTasks(%s): %v", name, err)
	}
	return rec
}

func TestNew_RejectsNilBank(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected an error constructing a Graph with a nil bank")
	}
}

func TestNew_HasSingleInitialNode(t *testing.T) {
	g, err := New(NewMemoryBank())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !g.Initial().IsInitialNode {
		t.Fatal("Initial() did not return the sentinel node")
	}
	if len(g.Nodes()) != 1 {
		t.Fatalf("expected 1 node (the initial sentinel), got %d", len(g.Nodes()))
	}
	if g.NumPendingTasks() != 0 {
		t.Fatalf("expected 0 pending tasks on a fresh graph, got %d", g.NumPendingTasks())
	}
}

// A task reading a never-written state implicitly depends on the initial
// node (spec.md §4.1: unwritten states are owned by the sentinel).
func TestInsertOne_FirstReaderDependsOnInitialNode(t *testing.T) {
	bank := NewMemoryBank()
	g, err := New(bank)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sigma := NewState(NewResource("sigma1"), StateValue)
	insert(t, g, bank, "R", &TaskMeta{InputStates: NewStateSet(sigma)})

	r := g.Pending()[0]
	if !g.Initial().OutEdges.Get(sigma).Contains(r) {
		t.Fatal("expected the initial node to own an outbound edge to the first reader")
	}
}

// insertOne wires a dependency edge from every existing reader of a state
// to the writer that overwrites it (write-after-read).
func TestInsertOne_WriteAfterReadWiresAllPriorReaders(t *testing.T) {
	bank := NewMemoryBank()
	g, err := New(bank)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sigma := NewState(NewResource("sigma1"), StateValue)
	insert(t, g, bank, "A", &TaskMeta{OutputStates: NewStateSet(sigma)})
	insert(t, g, bank, "R1", &TaskMeta{InputStates: NewStateSet(sigma)})
	insert(t, g, bank, "R2", &TaskMeta{InputStates: NewStateSet(sigma)})
	insert(t, g, bank, "W", &TaskMeta{OutputStates: NewStateSet(sigma)})

	nodes := g.Pending()
	r1, r2, w := nodes[1], nodes[2], nodes[3]
	if !r1.OutEdges.Get(sigma).Contains(w) {
		t.Fatal("expected R1 to gain a dependency edge to W")
	}
	if !r2.OutEdges.Get(sigma).Contains(w) {
		t.Fatal("expected R2 to gain a dependency edge to W")
	}
}

// Marking a sparse node's list dirty clears listUpToDate for that node and
// every descendant of it.
func TestMarkListDirty_PropagatesToChildren(t *testing.T) {
	bank := NewMemoryBank()
	g, err := New(bank)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	parent := NewResource("parent")
	child := NewResource("child")
	parent.Children = []*Resource{child}

	g.listUpToDate[parent] = true
	g.listUpToDate[child] = true

	g.markListDirty(parent)

	if g.listUpToDate[parent] {
		t.Error("expected parent to be marked dirty")
	}
	if g.listUpToDate[child] {
		t.Error("expected child to be marked dirty transitively")
	}
}

// With the insert-time listgen filter enabled (the default), a second
// list-regen task targeting an already-fresh sparse node is dropped before
// it ever becomes a pending node.
func TestInsertTasks_ListgenFilterDropsRedundantRegen(t *testing.T) {
	bank := NewMemoryBank()
	g, err := New(bank)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sparse := NewResource("sparseNode")
	list := NewState(sparse, StateList)

	insert(t, g, bank, "T1", &TaskMeta{OutputStates: NewStateSet(list), ListWrites: sparse})
	if got := g.NumPendingTasks(); got != 1 {
		t.Fatalf("expected 1 pending task after T1, got %d", got)
	}

	meta := &TaskMeta{OutputStates: NewStateSet(list), ListWrites: sparse, Name: "T2", Fingerprint: "T2"}
	bank.Intern(meta)
	if err := g.InsertTasks(t.Context(), []LaunchRecord{{Fingerprint: "T2", Payload: "T2"}}); err != nil {
		t.Fatalf("InsertTasks(T2): %v", err)
	}
	if got := g.NumPendingTasks(); got != 1 {
		t.Fatalf("expected T2 to be dropped as a redundant regen, %d pending remain", got)
	}
}

func TestReidPendingNodes_NonPendingGetsNegativeOne(t *testing.T) {
	bank := NewMemoryBank()
	g, err := New(bank)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sigma := NewState(NewResource("sigma1"), StateValue)
	insert(t, g, bank, "A", &TaskMeta{OutputStates: NewStateSet(sigma)})

	if _, err := g.ExtractToExecute(t.Context()); err != nil {
		t.Fatalf("ExtractToExecute: %v", err)
	}
	if g.Nodes()[1].PendingID != -1 {
		t.Fatalf("expected executed node's PendingID to be -1, got %d", g.Nodes()[1].PendingID)
	}
}
