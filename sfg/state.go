// Package sfg implements the State Flow Graph: a dependency graph and
// optimizer for an asynchronous compute-task pipeline. See SPEC_FULL.md.
package sfg

import "fmt"

// StateKind tags the flavor of resource an AsyncState refers to.
type StateKind int

const (
	// StateValue is a scalar or dense data array.
	StateValue StateKind = iota
	// StateList is a sparse structure's active-cell list.
	StateList
	// StateMask is an activation/deactivation mask buffer.
	StateMask
)

func (k StateKind) String() string {
	switch k {
	case StateValue:
		return "value"
	case StateList:
		return "list"
	case StateMask:
		return "mask"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Resource is an identity-typed handle for a mutable resource (a data array,
// a sparse structure, a mask buffer) that tasks read and write. Two
// Resources are never equal unless they are the same pointer: identity, not
// name, is what the graph compares.
//
// Children records the sparse-structure hierarchy used by mark_list_as_dirty
// (§4.1): invalidating S's list also invalidates every descendant's list.
type Resource struct {
	Name     string
	Children []*Resource
}

// NewResource allocates a fresh, identity-comparable resource handle.
func NewResource(name string) *Resource {
	return &Resource{Name: name}
}

// AsyncState is an opaque, identity-comparable handle for a mutable resource
// plus the kind of access it denotes. AsyncState is comparable (usable as a
// map key) because both fields are comparable: pointer identity on
// Resource, an int tag on Kind.
type AsyncState struct {
	Resource *Resource
	Kind     StateKind
}

// NewState builds an AsyncState over the given resource and kind.
func NewState(r *Resource, kind StateKind) AsyncState {
	return AsyncState{Resource: r, Kind: kind}
}

func (s AsyncState) String() string {
	name := "<nil>"
	if s.Resource != nil {
		name = s.Resource.Name
	}
	return fmt.Sprintf("%s:%s", name, s.Kind)
}

// StateSet is an unordered set of AsyncState, the representation used by
// TaskMeta.InputStates / OutputStates (spec.md §3).
type StateSet map[AsyncState]struct{}

// NewStateSet builds a StateSet from the given states.
func NewStateSet(states ...AsyncState) StateSet {
	s := make(StateSet, len(states))
	for _, st := range states {
		s[st] = struct{}{}
	}
	return s
}

// Add inserts a state into the set.
func (s StateSet) Add(st AsyncState) { s[st] = struct{}{} }

// Contains reports whether st is a member of the set.
func (s StateSet) Contains(st AsyncState) bool {
	_, ok := s[st]
	return ok
}

// Union returns a new StateSet containing every member of s and other.
func (s StateSet) Union(other StateSet) StateSet {
	out := make(StateSet, len(s)+len(other))
	for st := range s {
		out[st] = struct{}{}
	}
	for st := range other {
		out[st] = struct{}{}
	}
	return out
}

// Sub returns a new StateSet containing the members of s not in other.
func (s StateSet) Sub(other StateSet) StateSet {
	out := make(StateSet, len(s))
	for st := range s {
		if !other.Contains(st) {
			out[st] = struct{}{}
		}
	}
	return out
}

// Slice returns the set's members in nondeterministic order; callers that
// need determinism sort the result themselves (states carry no natural
// order beyond pointer identity).
func (s StateSet) Slice() []AsyncState {
	out := make([]AsyncState, 0, len(s))
	for st := range s {
		out = append(out, st)
	}
	return out
}
