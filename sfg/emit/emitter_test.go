package emit

import (
	"context"
	"testing"
)

type recordingEmitter struct {
	emitted []Event
	batched []Event
	flushed int
}

func (r *recordingEmitter) Emit(e Event) { r.emitted = append(r.emitted, e) }

func (r *recordingEmitter) EmitBatch(_ context.Context, events []Event) error {
	r.batched = append(r.batched, events...)
	return nil
}

func (r *recordingEmitter) Flush(_ context.Context) error {
	r.flushed++
	return nil
}

func TestEmitter_InterfaceContract(t *testing.T) {
	var _ Emitter = &recordingEmitter{}
	var _ Emitter = NewNullEmitter()
	var _ Emitter = NewLogEmitter(nil, false)
	var _ Emitter = NewBufferedEmitter()
}

func TestEmitter_EmitRecordsEvent(t *testing.T) {
	r := &recordingEmitter{}
	r.Emit(Event{GraphID: "g1", Msg: "fuse"})
	if len(r.emitted) != 1 {
		t.Fatalf("got %d emitted events, want 1", len(r.emitted))
	}
	if r.emitted[0].Msg != "fuse" {
		t.Errorf("Msg = %q, want fuse", r.emitted[0].Msg)
	}
}

func TestEmitter_EmitBatchPreservesOrder(t *testing.T) {
	r := &recordingEmitter{}
	events := []Event{
		{GraphID: "g1", Seq: 1, Msg: "a"},
		{GraphID: "g1", Seq: 2, Msg: "b"},
	}
	if err := r.EmitBatch(context.Background(), events); err != nil {
		t.Fatalf("EmitBatch: %v", err)
	}
	if len(r.batched) != 2 || r.batched[0].Msg != "a" || r.batched[1].Msg != "b" {
		t.Errorf("batched = %+v, want ordered [a b]", r.batched)
	}
}

func TestEmitter_FlushIsIdempotent(t *testing.T) {
	r := &recordingEmitter{}
	ctx := context.Background()
	if err := r.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := r.Flush(ctx); err != nil {
		t.Fatalf("second Flush: %v", err)
	}
	if r.flushed != 2 {
		t.Errorf("flushed = %d, want 2", r.flushed)
	}
}
