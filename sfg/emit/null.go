package emit

import "context"

// NullEmitter implements Emitter by discarding all events.
//
// Use cases: production deployments where event emission overhead is
// unwanted, or tests that don't care about observability.
type NullEmitter struct{}

// NewNullEmitter creates a NullEmitter. Safe for concurrent use, zero
// overhead.
func NewNullEmitter() *NullEmitter { return &NullEmitter{} }

// Emit discards the event.
func (n *NullEmitter) Emit(event Event) {}

// EmitBatch discards every event.
func (n *NullEmitter) EmitBatch(_ context.Context, events []Event) error { return nil }

// Flush is a no-op.
func (n *NullEmitter) Flush(_ context.Context) error { return nil }
