package jitfold

import (
	"fmt"
	"sync"
)

// kernelKey identifies one evaluator kernel shape. The source tags cache
// entries by thread id; per spec.md §9 that partitioning is not
// reproducible in Go (goroutines have no stable OS-thread identity), and
// the spec's own fallback — validate a shared cache behind a lock before
// replicating the per-thread scheme — is adopted directly, so no
// thread/goroutine component appears here.
type kernelKey struct {
	op       Op
	retType  Type
	lhsType  Type
	rhsType  Type
	isBinary bool
}

// kernel evaluates one operator over already-typed constant operands.
// For a unary kernel only args[0] is meaningful.
type kernel func(args ...Value) (Value, error)

// Cache is a shared, lock-guarded store of compiled evaluator kernels,
// keyed by operator shape so that repeated folds of the same
// (op, types) combination skip recompiling the kernel closure.
type Cache struct {
	mu      sync.Mutex
	kernels map[kernelKey]kernel
}

// NewCache constructs an empty kernel cache.
func NewCache() *Cache {
	return &Cache{kernels: make(map[kernelKey]kernel)}
}

// getOrBuild returns the cached kernel for key, building and storing one
// on first request.
func (c *Cache) getOrBuild(key kernelKey) (kernel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if k, ok := c.kernels[key]; ok {
		return k, nil
	}
	k, err := buildKernel(key)
	if err != nil {
		return nil, err
	}
	c.kernels[key] = k
	return k, nil
}

// Size reports the number of distinct kernel shapes compiled so far, for
// tests and diagnostics.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.kernels)
}

func buildKernel(key kernelKey) (kernel, error) {
	if key.isBinary {
		return buildBinaryKernel(key)
	}
	return buildUnaryKernel(key)
}

func buildUnaryKernel(key kernelKey) (kernel, error) {
	switch key.op {
	case OpNeg:
		switch key.lhsType {
		case TypeInt:
			return func(args ...Value) (Value, error) { return Int64(-args[0].Int), nil }, nil
		case TypeFloat:
			return func(args ...Value) (Value, error) { return Float64(-args[0].Float), nil }, nil
		}
	case OpNot:
		if key.lhsType == TypeBool {
			return func(args ...Value) (Value, error) { return Boolean(!args[0].Bool), nil }, nil
		}
	}
	return nil, fmt.Errorf("jitfold: no unary kernel for op %v on %v", key.op, key.lhsType)
}

func buildBinaryKernel(key kernelKey) (kernel, error) {
	numeric := key.lhsType == key.rhsType && (key.lhsType == TypeInt || key.lhsType == TypeFloat)
	switch key.op {
	case OpAdd, OpSub, OpMul, OpDiv:
		if !numeric {
			break
		}
		if key.lhsType == TypeInt {
			return intArith(key.op), nil
		}
		return floatArith(key.op), nil
	case OpEq:
		return func(args ...Value) (Value, error) {
			return Boolean(valuesEqual(args[0], args[1])), nil
		}, nil
	case OpLt:
		if !numeric {
			break
		}
		if key.lhsType == TypeInt {
			return func(args ...Value) (Value, error) { return Boolean(args[0].Int < args[1].Int), nil }, nil
		}
		return func(args ...Value) (Value, error) { return Boolean(args[0].Float < args[1].Float), nil }, nil
	}
	return nil, fmt.Errorf("jitfold: no binary kernel for op %v on (%v, %v)", key.op, key.lhsType, key.rhsType)
}

func intArith(op Op) kernel {
	return func(args ...Value) (Value, error) {
		a, b := args[0].Int, args[1].Int
		switch op {
		case OpAdd:
			return Int64(a + b), nil
		case OpSub:
			return Int64(a - b), nil
		case OpMul:
			return Int64(a * b), nil
		case OpDiv:
			if b == 0 {
				return Value{}, fmt.Errorf("jitfold: integer division by zero")
			}
			return Int64(a / b), nil
		}
		return Value{}, fmt.Errorf("jitfold: unreachable op %v", op)
	}
}

func floatArith(op Op) kernel {
	return func(args ...Value) (Value, error) {
		a, b := args[0].Float, args[1].Float
		switch op {
		case OpAdd:
			return Float64(a + b), nil
		case OpSub:
			return Float64(a - b), nil
		case OpMul:
			return Float64(a * b), nil
		case OpDiv:
			return Float64(a / b), nil
		}
		return Value{}, fmt.Errorf("jitfold: unreachable op %v", op)
	}
}

func valuesEqual(a, b Value) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case TypeInt:
		return a.Int == b.Int
	case TypeFloat:
		return a.Float == b.Float
	case TypeBool:
		return a.Bool == b.Bool
	default:
		return false
	}
}
