// Package emit provides event emission and observability for SFG graph
// construction and optimization.
package emit

// Event represents an observability event emitted during graph
// construction or an optimization pass.
//
// Events provide insight into SFG behavior:
//   - insert_tasks progress (nodes created, listgen tasks dropped)
//   - optimization pass start/end (fuse, listgen, demote, dead store)
//   - extraction (topo sort, launch records handed to the execution engine)
//
// Events are emitted to an Emitter, which can log them, turn them into
// OpenTelemetry spans, or buffer them for test assertions.
type Event struct {
	// GraphID identifies the SFG instance that emitted this event.
	GraphID string

	// Seq is the sequential operation number on this graph (0-based).
	Seq int

	// NodeID is the node this event concerns, or -1 for graph-level events
	// (a whole pass, insert_tasks, extract_to_execute).
	NodeID int

	// Msg is a human-readable description of the event, e.g. "fuse",
	// "optimize_listgen", "insert_tasks", "extract_to_execute".
	Msg string

	// Meta contains additional structured data specific to this event.
	// Common keys:
	//   - "deleted": number of nodes an optimization pass deleted
	Meta map[string]interface{}
}
