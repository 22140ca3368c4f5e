package domain

import (
	"fmt"
	"math"
)

// DistanceFunc estimates how far current is from satisfying a condition against target.
type DistanceFunc func(current, target Value) float64

// Condition compares a state entry against a target expression.
type Condition struct {
	Key        string
	Comparison Comparison
	Target     Expression

	// BestEffort makes IsMetOrCloser accept values that moved toward the
	// target even when the comparator itself does not hold. Planning and
	// execution use IsMet and ignore it.
	BestEffort bool
	Distance   DistanceFunc
}

// Require builds a plain condition against a constant target.
func Require(key string, c Comparison, target any) Condition {
	return Condition{Key: key, Comparison: c, Target: Const(target)}
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %s %v", c.Key, c.Comparison.Symbol(), c.Target)
}

// IsMet evaluates the comparator between the snapshot's value for Key and the target.
func (c Condition) IsMet(s State) (bool, error) {
	target, err := evaluate(c.Target, s)
	if err != nil {
		return false, err
	}
	ok, err := c.Comparison.Compare(s.Get(c.Key), target)
	return ok, withKey(err, c.Key)
}

// IsMetOrCloser equals IsMet unless the condition is best-effort, in which
// case it also holds when the value moved toward the target since prev.
// Best-effort evaluation requires numeric values.
func (c Condition) IsMetOrCloser(s, prev State) (bool, error) {
	if !c.BestEffort {
		return c.IsMet(s)
	}
	target, err := evaluate(c.Target, s)
	if err != nil {
		return false, err
	}
	cur, before := s.Get(c.Key), prev.Get(c.Key)
	for _, v := range [...]Value{cur, before, target} {
		if !v.IsNumeric() {
			return false, withKey(evalError(c.Comparison, cur, target, ErrKindMismatch), c.Key)
		}
	}
	v, p, t := cur.float(), before.float(), target.float()

	switch c.Comparison {
	case EqualTo:
		return v == t || math.Abs(v-t) < math.Abs(p-t), nil
	case NotEqualTo:
		return v != t || math.Abs(v-t) > math.Abs(p-t), nil
	case LessThan:
		return v < t || v < p, nil
	case LessOrEqual:
		return v <= t || v < p, nil
	case GreaterThan:
		return v > t || v > p, nil
	case GreaterOrEqual:
		return v >= t || v > p, nil
	}
	return false, evalError(c.Comparison, cur, target, ErrUnknownComparison)
}

// DistanceTo reports the condition's distance function for the snapshot.
// Without one, the distance is 0 when met and 2 otherwise.
func (c Condition) DistanceTo(s State) (float64, error) {
	if c.Distance != nil {
		target, err := evaluate(c.Target, s)
		if err != nil {
			return 0, err
		}
		return c.Distance(s.Get(c.Key), target), nil
	}
	met, err := c.IsMet(s)
	if err != nil {
		return 0, err
	}
	if met {
		return 0, nil
	}
	return 2, nil
}
