package sfg

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/sfg/emit"
)

// Graph is the State Flow Graph builder (spec.md §2-§4): it turns a stream
// of task launches into a DAG of typed edges over a shared state
// namespace, then rewrites that DAG with fusion, listgen-dedup, activation
// demotion, and dead-store elimination before handing an ordered sequence
// of launch records to an execution engine.
//
// A Graph is single-threaded (spec.md §5): one logical owner mutates it;
// every public method runs to completion on the calling goroutine except
// for calls into the IR bank, which is expected to be internally
// thread-safe.
type Graph struct {
	cfg  *config
	bank Bank
	id   string

	initial *Node
	nodes   []*Node // master list; index == NodeID after reidNodes
	pending []*Node // pending suffix; index == PendingID after reidPendingNodes

	latestStateOwner   map[AsyncState]*Node
	latestStateReaders map[AsyncState]*NodeSet
	listUpToDate       map[*Resource]bool
	launchIDs          map[string]int64

	seq int
}

// New constructs an empty Graph backed by bank, with a single sentinel
// initial node owning every state's initial value (spec.md §3,
// "Lifecycles").
func New(bank Bank, opts ...Option) (*Graph, error) {
	if bank == nil {
		return nil, fmt.Errorf("sfg: bank must not be nil")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("sfg: applying option: %w", err)
		}
	}
	if cfg.bank != nil {
		bank = cfg.bank
	}

	initial := newNode(LaunchRecord{}, &TaskMeta{Name: "__initial__"})
	initial.IsInitialNode = true

	g := &Graph{
		cfg:                cfg,
		bank:               bank,
		id:                 uuid.NewString(),
		initial:            initial,
		nodes:              []*Node{initial},
		latestStateOwner:   make(map[AsyncState]*Node),
		latestStateReaders: make(map[AsyncState]*NodeSet),
		listUpToDate:       make(map[*Resource]bool),
		launchIDs:          make(map[string]int64),
	}
	return g, nil
}

// ID returns the graph's unique identifier, used to correlate emitted
// events, metrics, and trace spans.
func (g *Graph) ID() string { return g.id }

// Initial returns the sentinel initial node.
func (g *Graph) Initial() *Node { return g.initial }

// Nodes returns the master node list (includes the initial node and every
// executed node; extraction does not remove nodes from it).
func (g *Graph) Nodes() []*Node { return g.nodes }

// Pending returns the pending suffix in current PendingID order.
func (g *Graph) Pending() []*Node { return g.pending }

// NumPendingTasks reports the number of nodes awaiting extraction
// (spec.md §4.1: "num_pending_tasks()").
func (g *Graph) NumPendingTasks() int { return len(g.pending) }

// owns reports whether n is a live member of this graph's master node list.
func (g *Graph) owns(n *Node) bool {
	return n != nil && n.NodeID >= 0 && n.NodeID < len(g.nodes) && g.nodes[n.NodeID] == n
}

func (g *Graph) emit(nodeID int, msg string, meta map[string]interface{}) {
	g.cfg.emitter.Emit(emit.Event{
		GraphID: g.id,
		Seq:     g.seq,
		NodeID:  nodeID,
		Msg:     msg,
		Meta:    meta,
	})
	g.seq++
}

func (g *Graph) recordMetrics() {
	if g.cfg.metrics == nil {
		return
	}
	g.cfg.metrics.UpdateNodes(g.id, len(g.nodes))
	g.cfg.metrics.UpdatePendingNodes(g.id, len(g.pending))
}

// InsertTasks ingests records in submission order, building nodes and
// edges per the graph-builder protocol (spec.md §4.1). If the graph was
// constructed with WithListgenFilter(true) (the default), list-regeneration
// records targeting an already-fresh sparse node are dropped: no node is
// created for them.
func (g *Graph) InsertTasks(ctx context.Context, records []LaunchRecord) error {
	_, end := g.startPassSpan(ctx, "insert_tasks")
	var err error
	defer func() { end(err) }()

	dropped := 0
	for _, rec := range records {
		var created bool
		created, err = g.insertOne(rec)
		if err != nil {
			return fmt.Errorf("sfg: insert_tasks: %w", err)
		}
		if !created {
			dropped++
		}
	}
	if g.cfg.metrics != nil && dropped > 0 {
		g.cfg.metrics.IncrementListgenDedup(g.id, "insert", dropped)
	}
	g.recordMetrics()
	g.emit(-1, "insert_tasks", map[string]interface{}{
		"submitted": len(records),
		"dropped":   dropped,
	})
	return nil
}

func (g *Graph) insertOne(rec LaunchRecord) (bool, error) {
	meta, err := g.bank.GetOrInternMeta(rec.Fingerprint)
	if err != nil {
		return false, err
	}

	if g.cfg.listgenFilter && meta.ListWrites != nil && g.listUpToDate[meta.ListWrites] {
		return false, nil
	}

	node := newNode(rec, meta)
	node.PendingID = len(g.pending)

	for _, s := range meta.InputStates.Slice() {
		owner := g.latestStateOwner[s]
		if owner == nil {
			owner = g.initial
		}
		insertEdge(owner, node, s)
		g.readersFor(s).Add(node)
	}

	for _, s := range meta.OutputStates.Slice() {
		if readers := g.latestStateReaders[s]; readers != nil {
			readers.Each(func(r *Node) { insertEdge(r, node, s) })
		}
		if !meta.InputStates.Contains(s) {
			owner := g.latestStateOwner[s]
			if owner == nil {
				owner = g.initial
			}
			insertEdge(owner, node, s)
		}
		g.latestStateOwner[s] = node
		delete(g.latestStateReaders, s)
	}

	if meta.ListWrites != nil {
		g.listUpToDate[meta.ListWrites] = true
	}
	for _, invalidated := range meta.InvalidatesLists {
		g.markListDirty(invalidated)
	}

	g.launchIDs[meta.Name]++

	node.NodeID = len(g.nodes)
	g.nodes = append(g.nodes, node)
	g.pending = append(g.pending, node)
	return true, nil
}

func (g *Graph) readersFor(s AsyncState) *NodeSet {
	set, ok := g.latestStateReaders[s]
	if !ok {
		set = &NodeSet{}
		g.latestStateReaders[s] = set
	}
	return set
}

// markListDirty recursively clears listUpToDate for r and every descendant
// (spec.md §4.1: "mark_list_as_dirty(snode)").
func (g *Graph) markListDirty(r *Resource) {
	g.listUpToDate[r] = false
	for _, child := range r.Children {
		g.markListDirty(child)
	}
}

// reidNodes refreshes NodeID so that values form a permutation of
// [0, len(g.nodes)) (spec.md §3, invariant 4).
func (g *Graph) reidNodes() {
	for i, n := range g.nodes {
		n.NodeID = i
	}
}

// reidPendingNodes refreshes PendingID so that pending nodes' values form a
// permutation of [0, len(g.pending)); non-pending nodes (executed or
// initial) get -1 (spec.md §3, invariant 4).
func (g *Graph) reidPendingNodes() {
	for _, n := range g.nodes {
		n.PendingID = -1
	}
	for i, n := range g.pending {
		n.PendingID = i
	}
}

// now is a seam so tests can avoid real wall-clock timing noise in
// pass-duration metrics; production code always uses time.Now.
var now = time.Now
