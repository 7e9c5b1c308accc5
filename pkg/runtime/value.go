// Package runtime holds the dynamically-typed value model and the
// channel registry that gives Conker its concurrency semantics.
package runtime

import "fmt"

// Kind identifies the runtime value category. Conker values are a small,
// closed tagged union: there is no user-extensible type system.
type Kind int

const (
	KindInteger Kind = iota
	KindNull
	KindBoolean
	KindChannelRef
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindChannelRef:
		return "channel"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour of every runtime value. All variants are
// value-semantic and safe to copy freely.
type Value interface {
	Kind() Kind
	String() string
}

//-----------------------------------------------------------------------------
// Integer
//-----------------------------------------------------------------------------

type Integer struct {
	Val int64
}

func (Integer) Kind() Kind { return KindInteger }

func (v Integer) String() string { return fmt.Sprintf("%d", v.Val) }

//-----------------------------------------------------------------------------
// Null
//-----------------------------------------------------------------------------

type Null struct{}

func (Null) Kind() Kind { return KindNull }

func (Null) String() string { return "null" }

//-----------------------------------------------------------------------------
// Boolean
//-----------------------------------------------------------------------------

type Boolean struct {
	Val bool
}

func (Boolean) Kind() Kind { return KindBoolean }

func (v Boolean) String() string {
	if v.Val {
		return "true"
	}
	return "false"
}

//-----------------------------------------------------------------------------
// ChannelRef
//-----------------------------------------------------------------------------

// ChannelID is a compact opaque handle into the registry. Equality on the
// handle is equality on the channel identity.
type ChannelID int64

// ChannelRef is a first-class value naming a channel identity. It carries
// no direction: once allocated, a channel identity can be used as the
// target of a Send or Receive by any task that holds the reference.
type ChannelRef struct {
	ID ChannelID
}

func (ChannelRef) Kind() Kind { return KindChannelRef }

func (v ChannelRef) String() string { return fmt.Sprintf("<channel #%d>", v.ID) }

//-----------------------------------------------------------------------------
// Operations
//-----------------------------------------------------------------------------

// TypeError reports an operation attempted on incompatible value variants.
type TypeError struct {
	Op  string
	Got []Kind
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("type error: %s not defined for %v", e.Op, e.Got)
}

// ArithmeticError reports a failed arithmetic operation, notably division
// by zero.
type ArithmeticError struct {
	Reason string
}

func (e *ArithmeticError) Error() string { return "arithmetic error: " + e.Reason }

func bothInteger(op string, a, b Value) (int64, int64, error) {
	ai, aok := a.(Integer)
	bi, bok := b.(Integer)
	if !aok || !bok {
		return 0, 0, &TypeError{Op: op, Got: []Kind{a.Kind(), b.Kind()}}
	}
	return ai.Val, bi.Val, nil
}

// Add, Sub and Mul implement Conker's integer arithmetic. Division uses
// Go's native truncating semantics (round toward zero); the source
// language leaves the choice between truncation and floor unspecified,
// and truncation is what Go and most C-family runtimes do natively.
func Add(a, b Value) (Value, error) {
	x, y, err := bothInteger("+", a, b)
	if err != nil {
		return nil, err
	}
	return Integer{Val: x + y}, nil
}

func Sub(a, b Value) (Value, error) {
	x, y, err := bothInteger("-", a, b)
	if err != nil {
		return nil, err
	}
	return Integer{Val: x - y}, nil
}

func Mul(a, b Value) (Value, error) {
	x, y, err := bothInteger("*", a, b)
	if err != nil {
		return nil, err
	}
	return Integer{Val: x * y}, nil
}

func Div(a, b Value) (Value, error) {
	x, y, err := bothInteger("/", a, b)
	if err != nil {
		return nil, err
	}
	if y == 0 {
		return nil, &ArithmeticError{Reason: "division by zero"}
	}
	return Integer{Val: x / y}, nil
}

// Compare implements the ordering operators. Only Integer operands are
// ordered; everything else is a TypeError.
func Compare(op string, a, b Value) (Value, error) {
	x, y, err := bothInteger(op, a, b)
	if err != nil {
		return nil, err
	}
	var result bool
	switch op {
	case "<":
		result = x < y
	case ">":
		result = x > y
	case "<=":
		result = x <= y
	case ">=":
		result = x >= y
	default:
		return nil, &TypeError{Op: op, Got: []Kind{a.Kind(), b.Kind()}}
	}
	return Boolean{Val: result}, nil
}

// Equals is structural for Integer/Boolean/Null and identity-based (by
// ChannelID) for ChannelRef. Values of different variants are never
// equal, except that Null equals Null.
func Equals(a, b Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Integer:
		return av.Val == b.(Integer).Val
	case Boolean:
		return av.Val == b.(Boolean).Val
	case Null:
		return true
	case ChannelRef:
		return av.ID == b.(ChannelRef).ID
	default:
		return false
	}
}

// IsTruthy implements Conker's truthiness rule: Null is false, Boolean is
// itself, Integer is "nonzero", and ChannelRef is always true.
func IsTruthy(v Value) bool {
	switch val := v.(type) {
	case Null:
		return false
	case Boolean:
		return val.Val
	case Integer:
		return val.Val != 0
	case ChannelRef:
		return true
	default:
		return false
	}
}
