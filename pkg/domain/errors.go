package domain

import (
	"errors"
	"fmt"
)

// ErrKindMismatch is returned when an operator or comparator is applied to value kinds it does not support.
var ErrKindMismatch = errors.New("incompatible value kinds")

// ErrDivisionByZero is returned by DivideBy and ModuloBy when the operand is zero.
var ErrDivisionByZero = errors.New("division by zero")

var (
	ErrUnknownOperation  = errors.New("unknown operation")
	ErrUnknownComparison = errors.New("unknown comparison")
)

// ErrUnsupportedValue is returned when host data cannot be represented as a Value.
var ErrUnsupportedValue = errors.New("unsupported value")

// ErrMissingState is returned when an effect targets a state key absent from the snapshot.
var ErrMissingState = errors.New("state not found")

// ErrAgentNotFound is returned when an agent ID cannot be found in the store.
var ErrAgentNotFound = errors.New("agent not found")

// ErrTaskInvalid is reported when a task no longer holds against live state during execution.
var ErrTaskInvalid = errors.New("task is no longer valid")

// ErrTaskFailed is reported when a task's execution capability fails.
var ErrTaskFailed = errors.New("task execution failed")

// EvaluationError describes a failed comparison or arithmetic operation.
type EvaluationError struct {
	Op    string // operator or comparator name
	Key   string // state key being evaluated, if known
	Left  Kind
	Right Kind
	Err   error
}

func (e *EvaluationError) Error() string {
	msg := fmt.Sprintf("%s(%s, %s): %v", e.Op, e.Left, e.Right, e.Err)
	if e.Key != "" {
		return fmt.Sprintf("state %q: %s", e.Key, msg)
	}
	return msg
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

func evalError(op fmt.Stringer, a, b Value, err error) error {
	return &EvaluationError{Op: op.String(), Left: a.kind, Right: b.kind, Err: err}
}

// withKey attaches the state key to an EvaluationError when one is not already set.
func withKey(err error, key string) error {
	var ee *EvaluationError
	if errors.As(err, &ee) && ee.Key == "" {
		ee.Key = key
	}
	return err
}
