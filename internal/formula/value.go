package formula

import "strconv"

// Kind discriminates evaluated value types. The grammar only produces numbers
// and booleans; strings never appear in stored formulas.
type Kind int

const (
	KindNumber Kind = iota
	KindBool
)

// Value is the result of evaluating an expression or sub-expression.
type Value struct {
	kind Kind
	num  float64
	b    bool
}

// Number wraps a float64 as a Value.
func Number(v float64) Value {
	return Value{kind: KindNumber, num: v}
}

// Bool wraps a bool as a Value.
func Bool(v bool) Value {
	return Value{kind: KindBool, b: v}
}

// Kind returns the value kind.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNumber reports whether the value is numeric.
func (v Value) IsNumber() bool {
	return v.kind == KindNumber
}

// AsNumber returns the numeric value; ok is false for booleans.
func (v Value) AsNumber() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// AsBool returns the boolean value; ok is false for numbers.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

func (v Value) String() string {
	if v.kind == KindBool {
		return strconv.FormatBool(v.b)
	}
	return strconv.FormatFloat(v.num, 'f', -1, 64)
}
