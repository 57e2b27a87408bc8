package sfg

// EdgeColor distinguishes the two semantics an A->B arc can carry
// (spec.md §3, "Edge semantics"). Both colors share the same adjacency
// storage (Node.InEdges / Node.OutEdges); color is recomputed on demand
// from metadata rather than stored, per the spec.
type EdgeColor int

const (
	// EdgeDependency: A must execute before B. Emitted on write-after-write
	// and write-after-read hazards.
	EdgeDependency EdgeColor = iota
	// EdgeFlow: a dependency edge where B also reads the state A produced
	// (read-after-write).
	EdgeFlow
)

// edgeColor classifies the arc from -> to under state s. It is a flow edge
// iff s is among to's input states; otherwise it is a plain dependency
// edge.
func edgeColor(to *Node, s AsyncState) EdgeColor {
	if to.IsFlowEdge(s) {
		return EdgeFlow
	}
	return EdgeDependency
}

// insertEdge is the builder's primitive (spec.md §4.1: "insert_edge(from,
// to, s) ... idempotent per (from, to, s) tuple"). It records from->to in
// from.OutEdges[s] and to<-from in to.InEdges[s]; the per-state neighbor
// set deduplicates repeat calls. Returns true if this call added a new
// edge that was not already present.
func insertEdge(from, to *Node, s AsyncState) bool {
	if from == to {
		return false
	}
	addedOut := from.OutEdges.getOrCreate(s).Add(to)
	addedIn := to.InEdges.getOrCreate(s).Add(from)
	return addedOut || addedIn
}
