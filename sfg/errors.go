package sfg

import "errors"

// ErrInvariantViolation is reported by Verify when one of the invariants in
// spec.md §3 does not hold. Per spec.md §7 this is a programming error:
// never recovered from, always a descriptive abort.
var ErrInvariantViolation = errors.New("sfg: invariant violation")

// ErrUnknownNode is returned by operations given a *Node that is not a
// member of the graph that owns them, e.g. FuseNodes called with a node
// from a different Graph.
var ErrUnknownNode = errors.New("sfg: node does not belong to this graph")

// ErrNotPending is returned by operations that require a pending node
// (PendingID >= 0) when given an executed or initial node, e.g. FuseNodes
// called with a node that has already been extracted.
var ErrNotPending = errors.New("sfg: node is not pending")

// ErrCycleDetected is returned by topo_sort_nodes if Kahn's algorithm
// cannot order every pending node, meaning invariant 5 (acyclicity) does
// not hold.
var ErrCycleDetected = errors.New("sfg: cycle detected among pending nodes")

// ErrFusionRejected is returned by FuseNodes when a caller-chosen pair fails
// any of fusion's safety conditions (spec.md §4.4). The best-effort scans
// Fuse/FuseRange never return it: they silently skip a candidate pair
// instead (spec.md §7, "Fusion/demote rejection: not an error"), since they
// choose their own candidates and a skip is expected steady-state behavior.
// FuseNodes is different: the caller named a specific pair, so a rejection
// is reported back rather than swallowed.
var ErrFusionRejected = errors.New("sfg: fusion rejected")
