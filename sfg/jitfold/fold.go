package jitfold

// Fold rewrites e bottom-up, replacing any subexpression whose operands
// are all constant with a single constant leaf holding the computed
// result. Non-constant leaves (variables) and subtrees that still
// contain one after recursion are returned unchanged. Fold never
// mutates e; it returns a new tree sharing unchanged subtrees.
func Fold(cache *Cache, e *Expr) (*Expr, error) {
	if e == nil || e.IsConst || e.IsLeaf {
		return e, nil
	}

	l, err := Fold(cache, e.L)
	if err != nil {
		return nil, err
	}
	if e.Op.isUnary() {
		if !l.isConstant() {
			return Unary(e.Op, l), nil
		}
		v, err := evalUnary(cache, e.Op, l.Const)
		if err != nil {
			return nil, err
		}
		return ConstExpr(v), nil
	}

	r, err := Fold(cache, e.R)
	if err != nil {
		return nil, err
	}
	if !l.isConstant() || !r.isConstant() {
		return Binary(e.Op, l, r), nil
	}
	v, err := evalBinary(cache, e.Op, l.Const, r.Const)
	if err != nil {
		return nil, err
	}
	return ConstExpr(v), nil
}

func evalUnary(cache *Cache, op Op, x Value) (Value, error) {
	k, err := cache.getOrBuild(kernelKey{op: op, retType: unaryResultType(op, x.Type), lhsType: x.Type})
	if err != nil {
		return Value{}, err
	}
	return k(x)
}

func evalBinary(cache *Cache, op Op, l, r Value) (Value, error) {
	key := kernelKey{op: op, retType: binaryResultType(op, l.Type), lhsType: l.Type, rhsType: r.Type, isBinary: true}
	k, err := cache.getOrBuild(key)
	if err != nil {
		return Value{}, err
	}
	return k(l, r)
}

func unaryResultType(op Op, operand Type) Type {
	if op == OpNot {
		return TypeBool
	}
	return operand
}

func binaryResultType(op Op, operand Type) Type {
	if op == OpEq || op == OpLt {
		return TypeBool
	}
	return operand
}
