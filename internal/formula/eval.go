package formula

import "math"

// Eval evaluates the compiled expression against ctx. A missing variable,
// zero divisor, or type mismatch returns an *EvaluationError; quantities are
// never silently defaulted.
func (e *Expression) Eval(ctx *Context) (Value, error) {
	if ctx == nil {
		ctx = NewContext()
	}
	return e.root.eval(e.src, ctx)
}

// EvalNumber evaluates the expression and requires a numeric result.
func (e *Expression) EvalNumber(ctx *Context) (float64, error) {
	v, err := e.Eval(ctx)
	if err != nil {
		return 0, err
	}
	n, ok := v.AsNumber()
	if !ok {
		return 0, evalErr(e.src, ErrTypeMismatch, "expected numeric result, got %s", v)
	}
	return n, nil
}

func (n *numberNode) eval(string, *Context) (Value, error) {
	return Number(n.value), nil
}

func (n *variableNode) eval(expr string, ctx *Context) (Value, error) {
	if n.attribute != "" {
		v, ok := ctx.resolveAttr(n.name, n.attribute)
		if !ok {
			return Value{}, evalErr(expr, ErrUnresolvedVariable, "[%s.%s]", n.name, n.attribute)
		}
		return v, nil
	}
	v, ok := ctx.resolve(n.name)
	if !ok {
		return Value{}, evalErr(expr, ErrUnresolvedVariable, "[%s]", n.name)
	}
	return v, nil
}

func (n *unaryNode) eval(expr string, ctx *Context) (Value, error) {
	v, err := n.child.eval(expr, ctx)
	if err != nil {
		return Value{}, err
	}
	num, ok := v.AsNumber()
	if !ok {
		return Value{}, evalErr(expr, ErrTypeMismatch, "cannot negate %s", v)
	}
	return Number(-num), nil
}

func (n *binaryNode) eval(expr string, ctx *Context) (Value, error) {
	left, err := n.left.eval(expr, ctx)
	if err != nil {
		return Value{}, err
	}
	right, err := n.right.eval(expr, ctx)
	if err != nil {
		return Value{}, err
	}

	// Equality is the only operator defined for booleans.
	if n.op == tokEQ || n.op == tokNE {
		if left.Kind() != right.Kind() {
			return Value{}, evalErr(expr, ErrTypeMismatch, "cannot compare %s with %s", left, right)
		}
		if left.Kind() == KindBool {
			lb, _ := left.AsBool()
			rb, _ := right.AsBool()
			if n.op == tokEQ {
				return Bool(lb == rb), nil
			}
			return Bool(lb != rb), nil
		}
	}

	l, lok := left.AsNumber()
	r, rok := right.AsNumber()
	if !lok || !rok {
		return Value{}, evalErr(expr, ErrTypeMismatch, "non-numeric operand (%s, %s)", left, right)
	}

	switch n.op {
	case tokPlus:
		return Number(l + r), nil
	case tokMinus:
		return Number(l - r), nil
	case tokStar:
		return Number(l * r), nil
	case tokSlash:
		if r == 0 {
			return Value{}, evalErr(expr, ErrDivisionByZero, "divisor evaluated to zero")
		}
		return Number(l / r), nil
	case tokLT:
		return Bool(l < r), nil
	case tokGT:
		return Bool(l > r), nil
	case tokLE:
		return Bool(l <= r), nil
	case tokGE:
		return Bool(l >= r), nil
	case tokEQ:
		return Bool(l == r), nil
	case tokNE:
		return Bool(l != r), nil
	}
	return Value{}, evalErr(expr, ErrSyntax, "unknown operator")
}

func (n *callNode) eval(expr string, ctx *Context) (Value, error) {
	// Arguments are evaluated eagerly, left to right. Functions are
	// side-effect-free so short-circuiting is not required.
	args := make([]Value, len(n.args))
	for i, argNode := range n.args {
		v, err := argNode.eval(expr, ctx)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}

	switch n.fn {
	case "ROUNDUP":
		num, ok := args[0].AsNumber()
		if !ok {
			return Value{}, evalErr(expr, ErrTypeMismatch, "ROUNDUP of %s", args[0])
		}
		return Number(math.Ceil(num)), nil
	case "MAX":
		best, ok := args[0].AsNumber()
		if !ok {
			return Value{}, evalErr(expr, ErrTypeMismatch, "MAX of %s", args[0])
		}
		for _, a := range args[1:] {
			num, ok := a.AsNumber()
			if !ok {
				return Value{}, evalErr(expr, ErrTypeMismatch, "MAX of %s", a)
			}
			if num > best {
				best = num
			}
		}
		return Number(best), nil
	case "AND":
		result := true
		for _, a := range args {
			b, ok := a.AsBool()
			if !ok {
				return Value{}, evalErr(expr, ErrTypeMismatch, "AND of %s", a)
			}
			result = result && b
		}
		return Bool(result), nil
	case "OR":
		result := false
		for _, a := range args {
			b, ok := a.AsBool()
			if !ok {
				return Value{}, evalErr(expr, ErrTypeMismatch, "OR of %s", a)
			}
			result = result || b
		}
		return Bool(result), nil
	case "IF":
		cond, ok := args[0].AsBool()
		if !ok {
			return Value{}, evalErr(expr, ErrTypeMismatch, "IF condition must be boolean, got %s", args[0])
		}
		if cond {
			return args[1], nil
		}
		return args[2], nil
	}
	return Value{}, evalErr(expr, ErrUnknownFunction, "%s", n.fn)
}
