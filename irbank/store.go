// Package irbank provides durable backends for the IR bank's content-
// addressed body cache: persisting interned task bodies, fused-pair
// results, and demotion rewrites across process restarts so multiple
// compiler instances can share work (spec.md §5: "thread-safe interning of
// metadata and bodies").
//
// sfg.MemoryBank already implements sfg.Bank entirely in-process; the
// Cache interface here is a narrower, storage-only collaborator that a
// durable sfg.Bank implementation composes with MemoryBank's in-memory
// indices to avoid recomputing fusion/demotion work new processes have
// already paid for.
package irbank

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested fingerprint has no cached entry.
var ErrNotFound = errors.New("irbank: not found")

// Cache persists the outcomes of IR-bank operations keyed by content
// fingerprint, so that a fused or demoted body computed once can be reused
// by any process sharing the backing store.
type Cache interface {
	// GetBody retrieves the serialized payload for a fingerprint previously
	// stored via PutBody. Returns ErrNotFound if absent.
	GetBody(ctx context.Context, fingerprint string) ([]byte, error)

	// PutBody stores the serialized payload for a fingerprint. Safe to call
	// more than once for the same fingerprint (last write wins).
	PutBody(ctx context.Context, fingerprint string, payload []byte) error

	// GetFused retrieves a previously computed fusion result for the
	// ordered pair (a, b). Returns ErrNotFound if absent.
	GetFused(ctx context.Context, a, b string) (fingerprint string, err error)

	// PutFused records that fusing a and b produced the body at fingerprint.
	PutFused(ctx context.Context, a, b, fingerprint string) error

	// GetDemotion retrieves a previously computed demotion rewrite for
	// (fingerprint, regionKey). Returns ErrNotFound if absent.
	GetDemotion(ctx context.Context, fingerprint, regionKey string) (string, error)

	// PutDemotion records that demoting fingerprint under regionKey
	// produced the body at rewritten.
	PutDemotion(ctx context.Context, fingerprint, regionKey, rewritten string) error

	// Close releases any resources (connections, file handles) the cache
	// holds.
	Close() error
}
