// Package jitfold implements a standalone constant-folding IR rewriter.
//
// It is orthogonal machinery (spec.md §9): a local peephole pass over a
// small expression IR, backed by a cache of "JIT-compiled" evaluator
// kernels keyed by operand shape. Nothing in sfg.Graph calls this
// package; it exists because the scheme is documented in enough detail
// to build as a standalone piece.
package jitfold

import "fmt"

// Type tags the runtime representation of a Value.
type Type int

const (
	TypeInt Type = iota
	TypeFloat
	TypeBool
)

func (t Type) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Value is a typed constant operand or result.
type Value struct {
	Type  Type
	Int   int64
	Float float64
	Bool  bool
}

// Int64 constructs an integer Value.
func Int64(v int64) Value { return Value{Type: TypeInt, Int: v} }

// Float64 constructs a float Value.
func Float64(v float64) Value { return Value{Type: TypeFloat, Float: v} }

// Boolean constructs a bool Value.
func Boolean(v bool) Value { return Value{Type: TypeBool, Bool: v} }

func (v Value) String() string {
	switch v.Type {
	case TypeInt:
		return fmt.Sprintf("%d", v.Int)
	case TypeFloat:
		return fmt.Sprintf("%g", v.Float)
	case TypeBool:
		return fmt.Sprintf("%t", v.Bool)
	default:
		return "?"
	}
}
