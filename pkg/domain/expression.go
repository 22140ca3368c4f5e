package domain

import "fmt"

// Expression produces a Value from a state snapshot.
// Implementations must not mutate the snapshot they are given.
type Expression interface {
	Evaluate(State) (Value, error)
}

// Constant ignores the snapshot.
type Constant struct {
	Value Value
}

func (c Constant) Evaluate(State) (Value, error) { return c.Value, nil }

func (c Constant) String() string { return c.Value.String() }

// Const is shorthand for a Constant built from a Go literal.
// It panics if v has no Value representation.
func Const(v any) Constant {
	val, err := FromAny(v)
	if err != nil {
		panic(err)
	}
	return Constant{Value: val}
}

// StateRef reads a key from the snapshot, yielding nil when absent.
type StateRef struct {
	Key string
}

func (r StateRef) Evaluate(s State) (Value, error) { return s.Get(r.Key), nil }

func (r StateRef) String() string { return "$" + r.Key }

// StateOperation combines the current value of Key with Operand without
// writing the result back.
type StateOperation struct {
	Key       string
	Operation Operation
	Operand   Expression
}

func (o StateOperation) Evaluate(s State) (Value, error) {
	operand, err := evaluate(o.Operand, s)
	if err != nil {
		return Nil(), err
	}
	v, err := o.Operation.Operate(s.Get(o.Key), operand)
	if err != nil {
		return Nil(), withKey(err, o.Key)
	}
	return v, nil
}

func (o StateOperation) String() string {
	return fmt.Sprintf("($%s %s %v)", o.Key, o.Operation.Symbol(), o.Operand)
}

// ProducerFunc adapts an external zero-argument callback into an Expression.
// The snapshot is ignored; side effects belong to the callback owner.
type ProducerFunc func() (Value, error)

func (f ProducerFunc) Evaluate(State) (Value, error) { return f() }

func (f ProducerFunc) String() string { return "producer()" }

// evaluate treats a nil expression as the nil constant.
func evaluate(e Expression, s State) (Value, error) {
	if e == nil {
		return Nil(), nil
	}
	return e.Evaluate(s)
}
