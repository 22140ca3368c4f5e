package domain

import (
	"cmp"
	"fmt"
	"strings"
)

// Comparison is the comparator of a Condition.
type Comparison uint8

const (
	EqualTo Comparison = iota
	NotEqualTo
	LessThan
	GreaterThan
	LessOrEqual
	GreaterOrEqual
)

var comparisonNames = [...]string{"EqualTo", "NotEqualTo", "LessThan", "GreaterThan", "LessOrEqual", "GreaterOrEqual"}

var comparisonSymbols = [...]string{"==", "!=", "<", ">", "<=", ">="}

func (c Comparison) String() string {
	if int(c) < len(comparisonNames) {
		return comparisonNames[c]
	}
	return fmt.Sprintf("Comparison(%d)", uint8(c))
}

func (c Comparison) Valid() bool { return int(c) < len(comparisonNames) }

func (c Comparison) Symbol() string {
	if int(c) < len(comparisonSymbols) {
		return comparisonSymbols[c]
	}
	return "?"
}

// ParseComparison accepts a comparator name (case-insensitive) or its symbol.
func ParseComparison(s string) (Comparison, error) {
	s = strings.TrimSpace(s)
	for i := range comparisonNames {
		if s == comparisonSymbols[i] || strings.EqualFold(s, comparisonNames[i]) {
			return Comparison(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownComparison, s)
}

// Compare applies c between the current value a and the target b.
//
// Equality is defined for identical kinds, across int and float, and for nil
// (nil equals only nil). Ordering is defined for numeric kinds, durations and text;
// an ordering against nil never holds.
func (c Comparison) Compare(a, b Value) (bool, error) {
	switch c {
	case EqualTo, NotEqualTo:
		eq, err := c.equal(a, b)
		if err != nil {
			return false, err
		}
		return eq == (c == EqualTo), nil
	case LessThan, GreaterThan, LessOrEqual, GreaterOrEqual:
		if a.kind == KindNil || b.kind == KindNil {
			return false, nil
		}
		order, err := c.order(a, b)
		if err != nil {
			return false, err
		}
		switch c {
		case LessThan:
			return order < 0, nil
		case GreaterThan:
			return order > 0, nil
		case LessOrEqual:
			return order <= 0, nil
		}
		return order >= 0, nil
	}
	return false, evalError(c, a, b, ErrUnknownComparison)
}

func (c Comparison) equal(a, b Value) (bool, error) {
	switch {
	case a.kind == KindNil || b.kind == KindNil:
		return a.kind == b.kind, nil
	case a.kind == KindInt && b.kind == KindInt:
		return a.i == b.i, nil
	case a.IsNumeric() && b.IsNumeric():
		return a.float() == b.float(), nil
	case a.kind == b.kind:
		return a == b, nil
	}
	return false, evalError(c, a, b, ErrKindMismatch)
}

func (c Comparison) order(a, b Value) (int, error) {
	switch {
	case a.kind == KindInt && b.kind == KindInt:
		return cmp.Compare(a.i, b.i), nil
	case a.IsNumeric() && b.IsNumeric():
		return cmp.Compare(a.float(), b.float()), nil
	case a.kind == KindDuration && b.kind == KindDuration:
		return cmp.Compare(a.i, b.i), nil
	case a.kind == KindText && b.kind == KindText:
		return strings.Compare(a.s, b.s), nil
	}
	return 0, evalError(c, a, b, ErrKindMismatch)
}
