package sfg

import "testing"

// disconnectAll severs every inbound and outbound edge a node carries,
// leaving its own edge maps empty.
func TestDisconnectAll_SeversEveryNeighbor(t *testing.T) {
	bank := NewMemoryBank()
	g, err := New(bank)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sigma := NewState(NewResource("sigma1"), StateValue)
	insert(t, g, bank, "A", &TaskMeta{OutputStates: NewStateSet(sigma)})
	insert(t, g, bank, "B", &TaskMeta{InputStates: NewStateSet(sigma)})

	a, b := g.Pending()[0], g.Pending()[1]
	disconnectAll(a)

	if a.OutEdges.Len() != 0 || a.InEdges.Len() != 0 {
		t.Fatal("expected A's own edge maps to be emptied")
	}
	if b.InEdges.Get(sigma).Contains(a) {
		t.Fatal("expected B to no longer reference A as a predecessor")
	}
}

// disconnectWith removes only the symmetric edge between two specific
// nodes, leaving either node's edges to other neighbors intact.
func TestDisconnectWith_RemovesOnlyTheSharedEdge(t *testing.T) {
	bank := NewMemoryBank()
	g, err := New(bank)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sigma := NewState(NewResource("sigma1"), StateValue)
	insert(t, g, bank, "A", &TaskMeta{OutputStates: NewStateSet(sigma)})
	insert(t, g, bank, "B", &TaskMeta{InputStates: NewStateSet(sigma)})
	insert(t, g, bank, "C", &TaskMeta{InputStates: NewStateSet(sigma)})

	a, b, c := g.Pending()[0], g.Pending()[1], g.Pending()[2]
	disconnectWith(a, b)

	if a.OutEdges.Get(sigma).Contains(b) || b.InEdges.Get(sigma).Contains(a) {
		t.Fatal("expected the A-B edge to be removed")
	}
	if !a.OutEdges.Get(sigma).Contains(c) || !c.InEdges.Get(sigma).Contains(a) {
		t.Fatal("expected the A-C edge to survive")
	}
}

// replaceReference with onlyOutputEdges=false substitutes b for a on both
// sides: every predecessor that pointed to a now points to b, and vice
// versa.
func TestReplaceReference_SubstitutesOnBothSides(t *testing.T) {
	bank := NewMemoryBank()
	g, err := New(bank)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sigma := NewState(NewResource("sigma1"), StateValue)
	insert(t, g, bank, "A", &TaskMeta{OutputStates: NewStateSet(sigma)})
	insert(t, g, bank, "W", &TaskMeta{OutputStates: NewStateSet(sigma)})
	insert(t, g, bank, "R", &TaskMeta{InputStates: NewStateSet(sigma)})
	insert(t, g, bank, "Stand-in", &TaskMeta{})

	nodes := g.Pending()
	a, w, r, standIn := nodes[0], nodes[1], nodes[2], nodes[3]

	replaceReference(w, standIn, false)

	if w.InEdges.Get(sigma).Contains(a) || !standIn.InEdges.Get(sigma).Contains(a) {
		t.Fatal("expected A's outbound edge to be retargeted onto the stand-in")
	}
	if w.OutEdges.Get(sigma).Contains(r) || !standIn.OutEdges.Get(sigma).Contains(r) {
		t.Fatal("expected R's inbound edge to be retargeted onto the stand-in")
	}
	if !a.OutEdges.Get(sigma).Contains(standIn) {
		t.Fatal("expected A's neighbor set to now contain the stand-in")
	}
	if !r.InEdges.Get(sigma).Contains(standIn) {
		t.Fatal("expected R's neighbor set to now contain the stand-in")
	}
}

// deleteNodes removes the victims from both the master and pending lists
// and refreshes identifiers so the remaining nodes are contiguous.
func TestDeleteNodes_RemovesFromBothListsAndReindexes(t *testing.T) {
	bank := NewMemoryBank()
	g, err := New(bank)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	insert(t, g, bank, "A", &TaskMeta{OutputStates: NewStateSet(NewState(NewResource("a"), StateValue))})
	insert(t, g, bank, "B", &TaskMeta{OutputStates: NewStateSet(NewState(NewResource("b"), StateValue))})
	insert(t, g, bank, "C", &TaskMeta{OutputStates: NewStateSet(NewState(NewResource("c"), StateValue))})

	victim := g.Pending()[1]
	g.deleteNodes([]*Node{victim})

	if len(g.Pending()) != 2 {
		t.Fatalf("expected 2 pending nodes to remain, got %d", len(g.Pending()))
	}
	for i, n := range g.Pending() {
		if n.PendingID != i {
			t.Fatalf("expected contiguous PendingIDs after deletion, node %d has PendingID %d", i, n.PendingID)
		}
	}
}
