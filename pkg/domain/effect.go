package domain

import "fmt"

// Effect predicts or applies a change to one state entry.
type Effect struct {
	Key       string
	Operation Operation
	Operand   Expression
}

// Set builds an Effect with a constant operand.
func Set(key string, op Operation, operand any) Effect {
	return Effect{Key: key, Operation: op, Operand: Const(operand)}
}

func (e Effect) String() string {
	return fmt.Sprintf("%s %s %v", e.Key, e.Operation.Symbol(), e.Operand)
}

// PredictState returns the value Key would hold after the effect, leaving s untouched.
// Only SetTo may target a key that is absent from s.
func (e Effect) PredictState(s State) (Value, error) {
	cur, ok := s[e.Key]
	if !ok && e.Operation != SetTo {
		return Nil(), &EvaluationError{Op: e.Operation.String(), Key: e.Key, Err: ErrMissingState}
	}
	operand, err := evaluate(e.Operand, s)
	if err != nil {
		return Nil(), err
	}
	v, err := e.Operation.Operate(cur, operand)
	if err != nil {
		return Nil(), withKey(err, e.Key)
	}
	return v, nil
}

// UpdateState writes the predicted value into s.
func (e Effect) UpdateState(s State) error {
	v, err := e.PredictState(s)
	if err != nil {
		return err
	}
	s[e.Key] = v
	return nil
}
