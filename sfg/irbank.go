package sfg

import "fmt"

// Region names the scope a demotion rewrite applies to: the set of sparse
// nodes whose activation step is being stripped from a task body
// (spec.md §4.6, §6: RewriteForDemotion(body, region)).
type Region struct {
	SparseNodes []*Resource
}

// Bank is the SFG's view of the IR bank (spec.md §6, "IR Bank
// (consumed)"): a deduplicating store for intermediate-representation
// trees and task metadata, accessed through exactly the four operations
// below. The SFG treats Bank implementations as shared, thread-safe
// references — the bank itself guards its own interior mutability
// (spec.md §5) since other compiler threads intern bodies concurrently.
type Bank interface {
	// GetOrInternMeta resolves a body fingerprint to its TaskMeta,
	// interning a fresh entry on first sight. Bodies are content
	// addressed: identical IR shares metadata (spec.md §4.1.1).
	GetOrInternMeta(fingerprint string) (*TaskMeta, error)

	// FuseBodies merges two task bodies into one that executes a's then
	// b's IR, returning the merged body and false if the bank rejects the
	// merge (not an error — spec.md §7: "Fusion/demote rejection: not an
	// error").
	FuseBodies(a, b LaunchRecord) (merged LaunchRecord, ok bool)

	// AreFusible reports whether two task bodies are joinable at the IR
	// level (spec.md §4.4 safety condition 5), independent of the
	// launch-shape checks the SFG itself performs.
	AreFusible(a, b *TaskMeta) bool

	// RewriteForDemotion returns a body with the activate-then-write
	// sequence replaced by a plain write over region, for demote_activation
	// (spec.md §4.6).
	RewriteForDemotion(body LaunchRecord, region Region) (LaunchRecord, error)
}

// ErrBankMiss is returned by MemoryBank.GetOrInternMeta when asked to
// resolve a fingerprint nobody has ever interned metadata for; callers are
// expected to intern before first use (spec.md §7: the SFG operates on
// well-formed input).
var ErrBankMiss = fmt.Errorf("irbank: fingerprint not interned")

// MemoryBank is the default, in-process Bank: a single map keyed by
// content-addressed fingerprint. It requires callers to pre-register
// TaskMeta for a fingerprint via Intern before the graph builder can
// resolve it — there is no IR to derive metadata from in this reference
// implementation, since IR trees themselves are out of the SFG's scope
// (spec.md §1).
type MemoryBank struct {
	metas  map[string]*TaskMeta
	merge  func(a, b any) (any, bool)
	fusOK  func(a, b *TaskMeta) bool
	rewrit func(body any, region Region) (any, error)
}

// NewMemoryBank constructs an empty in-process bank. Until SetMergeBodies,
// SetFusibilityCheck, or SetDemotionRewrite install a function, FuseBodies always
// rejects, AreFusible accepts every pair, and RewriteForDemotion returns
// the body unchanged.
func NewMemoryBank() *MemoryBank {
	return &MemoryBank{metas: make(map[string]*TaskMeta)}
}

// Intern registers meta under its own Fingerprint, the step a real IR
// bank performs lazily the first time a body is compiled.
func (b *MemoryBank) Intern(meta *TaskMeta) {
	b.metas[meta.Fingerprint] = meta
}

// GetOrInternMeta implements Bank.
func (b *MemoryBank) GetOrInternMeta(fingerprint string) (*TaskMeta, error) {
	meta, ok := b.metas[fingerprint]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBankMiss, fingerprint)
	}
	return meta, nil
}

// SetMergeBodies installs the payload-level merge function FuseBodies
// delegates to.
func (b *MemoryBank) SetMergeBodies(fn func(a, b any) (any, bool)) { b.merge = fn }

// SetFusibilityCheck installs the predicate AreFusible delegates to.
func (b *MemoryBank) SetFusibilityCheck(fn func(a, b *TaskMeta) bool) { b.fusOK = fn }

// SetDemotionRewrite installs the function RewriteForDemotion delegates to.
func (b *MemoryBank) SetDemotionRewrite(fn func(body any, region Region) (any, error)) {
	b.rewrit = fn
}

// FuseBodies implements Bank.
func (b *MemoryBank) FuseBodies(a, c LaunchRecord) (LaunchRecord, bool) {
	if b.merge == nil {
		return LaunchRecord{}, false
	}
	payload, ok := b.merge(a.Payload, c.Payload)
	if !ok {
		return LaunchRecord{}, false
	}
	return LaunchRecord{Fingerprint: fuseFingerprint(a.Fingerprint, c.Fingerprint), Payload: payload}, true
}

// AreFusible implements Bank.
func (b *MemoryBank) AreFusible(a, c *TaskMeta) bool {
	if b.fusOK != nil {
		return b.fusOK(a, c)
	}
	return true
}

// RewriteForDemotion implements Bank.
func (b *MemoryBank) RewriteForDemotion(body LaunchRecord, region Region) (LaunchRecord, error) {
	if b.rewrit == nil {
		return body, nil
	}
	payload, err := b.rewrit(body.Payload, region)
	if err != nil {
		return LaunchRecord{}, err
	}
	return LaunchRecord{Fingerprint: body.Fingerprint + "#demoted", Payload: payload}, nil
}
