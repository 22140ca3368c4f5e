package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Operation is the arithmetic applied by an Effect or a StateOperation.
type Operation uint8

const (
	SetTo Operation = iota
	IncreaseBy
	DecreaseBy
	MultiplyBy
	DivideBy
	ModuloBy
	ExponentiateBy
)

var operationNames = [...]string{"SetTo", "IncreaseBy", "DecreaseBy", "MultiplyBy", "DivideBy", "ModuloBy", "ExponentiateBy"}

var operationSymbols = map[string]Operation{
	"=":  SetTo,
	"+=": IncreaseBy,
	"-=": DecreaseBy,
	"*=": MultiplyBy,
	"/=": DivideBy,
	"%=": ModuloBy,
	"^=": ExponentiateBy,
}

func (o Operation) String() string {
	if int(o) < len(operationNames) {
		return operationNames[o]
	}
	return fmt.Sprintf("Operation(%d)", uint8(o))
}

// Valid reports whether o is one of the declared operations.
func (o Operation) Valid() bool { return int(o) < len(operationNames) }

// Symbol returns the assignment operator used in documents and diagrams.
func (o Operation) Symbol() string {
	for sym, op := range operationSymbols {
		if op == o {
			return sym
		}
	}
	return "?="
}

// ParseOperation accepts an operation name (case-insensitive) or its assignment symbol.
func ParseOperation(s string) (Operation, error) {
	s = strings.TrimSpace(s)
	if op, ok := operationSymbols[s]; ok {
		return op, nil
	}
	for i, name := range operationNames {
		if strings.EqualFold(name, s) {
			return Operation(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOperation, s)
}

// Operate applies o to the current value a with operand b.
// Mixing int and float promotes to float. ExponentiateBy always yields a float.
func (o Operation) Operate(a, b Value) (Value, error) {
	switch o {
	case SetTo:
		return b, nil
	case IncreaseBy:
		return o.add(a, b)
	case DecreaseBy:
		return o.sub(a, b)
	case MultiplyBy:
		return o.mul(a, b)
	case DivideBy:
		return o.div(a, b)
	case ModuloBy:
		return o.mod(a, b)
	case ExponentiateBy:
		if a.IsNumeric() && b.IsNumeric() {
			return Float(math.Pow(a.float(), b.float())), nil
		}
	default:
		return Nil(), evalError(o, a, b, ErrUnknownOperation)
	}
	return Nil(), evalError(o, a, b, ErrKindMismatch)
}

func (o Operation) add(a, b Value) (Value, error) {
	switch {
	case a.kind == KindInt && b.kind == KindInt:
		return Int(a.i + b.i), nil
	case a.IsNumeric() && b.IsNumeric():
		return Float(a.float() + b.float()), nil
	case a.kind == KindDuration && b.kind == KindDuration:
		return Duration(time.Duration(a.i + b.i)), nil
	case a.kind == KindText && b.kind == KindText:
		return Text(a.s + b.s), nil
	}
	return Nil(), evalError(o, a, b, ErrKindMismatch)
}

func (o Operation) sub(a, b Value) (Value, error) {
	switch {
	case a.kind == KindInt && b.kind == KindInt:
		return Int(a.i - b.i), nil
	case a.IsNumeric() && b.IsNumeric():
		return Float(a.float() - b.float()), nil
	case a.kind == KindDuration && b.kind == KindDuration:
		return Duration(time.Duration(a.i - b.i)), nil
	}
	return Nil(), evalError(o, a, b, ErrKindMismatch)
}

func (o Operation) mul(a, b Value) (Value, error) {
	switch {
	case a.kind == KindInt && b.kind == KindInt:
		return Int(a.i * b.i), nil
	case a.IsNumeric() && b.IsNumeric():
		return Float(a.float() * b.float()), nil
	case a.kind == KindDuration && b.kind == KindInt:
		return Duration(time.Duration(a.i * b.i)), nil
	case a.kind == KindDuration && b.kind == KindFloat:
		return Duration(time.Duration(float64(a.i) * b.f)), nil
	}
	return Nil(), evalError(o, a, b, ErrKindMismatch)
}

func (o Operation) div(a, b Value) (Value, error) {
	if !b.IsNumeric() || !(a.IsNumeric() || a.kind == KindDuration) {
		return Nil(), evalError(o, a, b, ErrKindMismatch)
	}
	if b.float() == 0 {
		return Nil(), evalError(o, a, b, ErrDivisionByZero)
	}
	switch {
	case a.kind == KindInt && b.kind == KindInt:
		return Int(a.i / b.i), nil
	case a.kind == KindDuration && b.kind == KindInt:
		return Duration(time.Duration(a.i / b.i)), nil
	case a.kind == KindDuration:
		return Duration(time.Duration(float64(a.i) / b.f)), nil
	}
	return Float(a.float() / b.float()), nil
}

func (o Operation) mod(a, b Value) (Value, error) {
	switch {
	case a.kind == KindInt && b.kind == KindInt:
		if b.i == 0 {
			return Nil(), evalError(o, a, b, ErrDivisionByZero)
		}
		return Int(a.i % b.i), nil
	case a.IsNumeric() && b.IsNumeric():
		if b.float() == 0 {
			return Nil(), evalError(o, a, b, ErrDivisionByZero)
		}
		return Float(math.Mod(a.float(), b.float())), nil
	case a.kind == KindDuration && b.kind == KindDuration:
		if b.i == 0 {
			return Nil(), evalError(o, a, b, ErrDivisionByZero)
		}
		return Duration(time.Duration(a.i % b.i)), nil
	}
	return Nil(), evalError(o, a, b, ErrKindMismatch)
}
