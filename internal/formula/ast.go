package formula

// node is a parsed expression tree. Trees are immutable after parsing and safe
// for concurrent evaluation.
type node interface {
	eval(expr string, ctx *Context) (Value, error)
}

type numberNode struct {
	value float64
}

type variableNode struct {
	name string
	// attribute is set for dotted references like [picket.width_inches].
	attribute string
}

type binaryNode struct {
	op    tokenKind
	left  node
	right node
}

// unaryNode is built only for the prefix minus; eval negates its child.
type unaryNode struct {
	child node
}

type callNode struct {
	fn   string
	args []node
}
