package sfg

// LaunchRecord is the opaque payload the SFG hands to the execution engine
// (spec.md §3, §6). The SFG never inspects Payload; it only ever reads
// Fingerprint (the content address used to fetch TaskMeta from the IR
// bank) and, for demotion rewrites, asks the IR bank to replace Payload
// wholesale via Fingerprint.
type LaunchRecord struct {
	// Fingerprint content-addresses the task body.
	Fingerprint string
	// Payload is transparent to the SFG; the execution engine interprets it.
	Payload any
}

// EdgeMap is an ordered association from AsyncState to the set of neighbor
// nodes reached via that state (spec.md §3: "stored as a small vector of
// (state, small-set<node>) pairs"). Two identical EdgeMaps live on every
// Node: one for inbound edges, one for outbound.
type EdgeMap struct {
	order   []AsyncState
	byState map[AsyncState]*NodeSet
}

func newEdgeMap() *EdgeMap {
	return &EdgeMap{byState: make(map[AsyncState]*NodeSet)}
}

// Get returns the neighbor set for state, or nil if there is none.
func (m *EdgeMap) Get(state AsyncState) *NodeSet {
	return m.byState[state]
}

// getOrCreate returns the neighbor set for state, creating an empty one
// (and recording it in insertion order) if absent.
func (m *EdgeMap) getOrCreate(state AsyncState) *NodeSet {
	set, ok := m.byState[state]
	if !ok {
		set = &NodeSet{}
		m.byState[state] = set
		m.order = append(m.order, state)
	}
	return set
}

// removeState drops the entire (state, neighbors) entry.
func (m *EdgeMap) removeState(state AsyncState) {
	if _, ok := m.byState[state]; !ok {
		return
	}
	delete(m.byState, state)
	for i, st := range m.order {
		if st == state {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// States returns the states carrying at least one edge, in insertion order.
func (m *EdgeMap) States() []AsyncState {
	out := make([]AsyncState, len(m.order))
	copy(out, m.order)
	return out
}

// Len reports the number of distinct states carrying an edge.
func (m *EdgeMap) Len() int { return len(m.order) }

// Node is a single task launch: a launch record, its metadata, stable
// identifiers, and typed inbound/outbound edge containers (spec.md §3).
type Node struct {
	Rec  LaunchRecord
	Meta *TaskMeta

	// IsInitialNode marks the single sentinel node created at graph
	// construction; it owns every state's initial value and is never
	// deleted or fused.
	IsInitialNode bool

	// NodeID is this node's position within the master node list;
	// refreshed in bulk by reidNodes after any structural mutation.
	NodeID int

	// PendingID is this node's position within the pending suffix, or -1
	// if the node has been executed (handed to extract_to_execute) or is
	// the initial node. Refreshed in bulk by reidPendingNodes.
	PendingID int

	InEdges  *EdgeMap
	OutEdges *EdgeMap
}

func newNode(rec LaunchRecord, meta *TaskMeta) *Node {
	return &Node{
		Rec:       rec,
		Meta:      meta,
		PendingID: -1,
		InEdges:   newEdgeMap(),
		OutEdges:  newEdgeMap(),
	}
}

// IsPending reports whether this node is still awaiting extraction.
func (n *Node) IsPending() bool { return n.PendingID >= 0 }

// IsFlowEdge reports whether the edge this node receives under state s is a
// flow edge: a dependency edge where this node also reads s (spec.md §3,
// "Edge semantics" — read-after-write, detected by membership of s in the
// receiving node's input_states).
func (n *Node) IsFlowEdge(s AsyncState) bool {
	return n.Meta != nil && n.Meta.InputStates.Contains(s)
}
