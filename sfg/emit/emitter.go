// Package emit provides event emission and observability for SFG graph
// construction and optimization.
package emit

import "context"

// Emitter receives and processes observability events from graph
// construction and optimization passes.
//
// Emitters enable pluggable observability backends: logging, distributed
// tracing (OpenTelemetry), metrics, or in-memory buffering for tests.
//
// Implementations should be:
//   - Non-blocking: never slow down graph mutation.
//   - Resilient: handle failures gracefully (never panic).
//
// The SFG itself is single-threaded (spec.md §5), so Emit is always called
// from the one goroutine that owns the graph; implementations do not need
// to be safe for concurrent Emit calls from multiple graphs unless the
// caller shares one Emitter across graphs on different goroutines.
type Emitter interface {
	// Emit sends an observability event to the configured backend. Emit
	// must not block graph mutation and must not panic.
	Emit(event Event)

	// EmitBatch sends multiple events in a single operation, preserving
	// order. Returns error only on catastrophic failures; individual event
	// failures should be logged internally, not returned.
	EmitBatch(ctx context.Context, events []Event) error

	// Flush ensures all buffered events are sent to the backend. Safe to
	// call multiple times.
	Flush(ctx context.Context) error
}
