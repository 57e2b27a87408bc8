package sfg

import (
	"context"
	"sort"
	"strings"

	"github.com/dshills/sfg/irbank"
)

// DurableBank wraps a Bank with an irbank.Cache so that fusion and demotion
// decisions survive process restarts and are shared across compiler
// instances pointed at the same cache (spec.md §5: other compiler threads
// intern bodies concurrently). Payloads stay in memory — LaunchRecord's
// Payload is opaque to the SFG by design (spec.md §3) — only the
// fingerprint-level decisions (which pairs fuse, to what, and how a body
// demotes under a region) are persisted.
type DurableBank struct {
	inner Bank
	cache irbank.Cache
}

// NewDurableBank wraps inner with cache.
func NewDurableBank(inner Bank, cache irbank.Cache) *DurableBank {
	return &DurableBank{inner: inner, cache: cache}
}

// GetOrInternMeta implements Bank by delegating to inner; metadata itself
// is not cached durably since TaskMeta's Resource pointers are only
// meaningful within a single process.
func (d *DurableBank) GetOrInternMeta(fingerprint string) (*TaskMeta, error) {
	return d.inner.GetOrInternMeta(fingerprint)
}

// AreFusible implements Bank, short-circuiting to a cached prior fusion
// outcome before falling back to inner's fusibility predicate.
func (d *DurableBank) AreFusible(a, c *TaskMeta) bool {
	if _, err := d.cache.GetFused(context.Background(), a.Fingerprint, c.Fingerprint); err == nil {
		return true
	}
	return d.inner.AreFusible(a, c)
}

// FuseBodies implements Bank, recording the resulting fingerprint on
// success so a later process can skip recomputation of this pairing.
func (d *DurableBank) FuseBodies(a, c LaunchRecord) (LaunchRecord, bool) {
	merged, ok := d.inner.FuseBodies(a, c)
	if ok {
		_ = d.cache.PutFused(context.Background(), a.Fingerprint, c.Fingerprint, merged.Fingerprint)
	}
	return merged, ok
}

// RewriteForDemotion implements Bank, consulting the cache for a prior
// rewrite of the same (fingerprint, region) pair before asking inner to
// recompute it.
func (d *DurableBank) RewriteForDemotion(body LaunchRecord, region Region) (LaunchRecord, error) {
	key := regionKey(region)
	if cached, err := d.cache.GetDemotion(context.Background(), body.Fingerprint, key); err == nil {
		return LaunchRecord{Fingerprint: cached, Payload: body.Payload}, nil
	}
	rewritten, err := d.inner.RewriteForDemotion(body, region)
	if err != nil {
		return LaunchRecord{}, err
	}
	_ = d.cache.PutDemotion(context.Background(), body.Fingerprint, key, rewritten.Fingerprint)
	return rewritten, nil
}

// regionKey deterministically names a Region by its sparse nodes' names,
// sorted since Resource identity (pointer) does not survive a process
// restart but its Name does.
func regionKey(r Region) string {
	names := make([]string, len(r.SparseNodes))
	for i, n := range r.SparseNodes {
		names[i] = n.Name
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}
