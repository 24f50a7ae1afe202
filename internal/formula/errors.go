package formula

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax indicates the expression string could not be parsed.
	ErrSyntax = errors.New("syntax error")
	// ErrUnresolvedVariable indicates a variable reference with no binding.
	ErrUnresolvedVariable = errors.New("unresolved variable")
	// ErrDivisionByZero indicates a division whose divisor evaluated to zero.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrTypeMismatch indicates an operand of the wrong kind.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrUnknownFunction indicates a call to a function the grammar does not define.
	ErrUnknownFunction = errors.New("unknown function")
	// ErrArity indicates a function call with the wrong number of arguments.
	ErrArity = errors.New("wrong argument count")
)

// EvaluationError reports a failure while parsing or evaluating a formula.
// Evaluation always fails closed: a bad reference or a zero divisor surfaces
// here instead of corrupting a quantity.
type EvaluationError struct {
	Expr   string
	Detail string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("formula %q: %v", e.Expr, e.Err)
	}
	return fmt.Sprintf("formula %q: %v: %s", e.Expr, e.Err, e.Detail)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

func evalErr(expr string, err error, format string, args ...any) *EvaluationError {
	return &EvaluationError{Expr: expr, Err: err, Detail: fmt.Sprintf(format, args...)}
}
