package domain

import (
	"context"
	"fmt"
)

// Validity is the answer of a validity override.
type Validity uint8

const (
	// Defer lets the task's requirements decide.
	Defer Validity = iota
	ForceValid
	ForceInvalid
)

func (v Validity) String() string {
	switch v {
	case ForceValid:
		return "force-valid"
	case ForceInvalid:
		return "force-invalid"
	}
	return "defer"
}

// AgentView is the read-only face of an agent exposed to validity overrides.
type AgentView interface {
	Name() string
	Get(key string) Value
}

// OverrideFunc bypasses requirement evaluation when it returns anything but Defer.
type OverrideFunc func(agent AgentView) Validity

// ExecuteFunc performs a primitive task in the world. A nil ExecuteFunc always succeeds.
type ExecuteFunc func(ctx context.Context) error

// Task is a node of a task tree: *Primitive, *Selector or *Sequence.
// Trees are never mutated by the planner and may be shared across agents.
type Task interface {
	Base() *TaskBase
	isTask()
}

// TaskBase holds what every task variant carries.
type TaskBase struct {
	Name         string
	Requirements []Condition
	Override     OverrideFunc
}

func (b *TaskBase) Base() *TaskBase { return b }

func (*TaskBase) isTask() {}

// Primitive is an atomic action with direct effects on state.
type Primitive struct {
	TaskBase
	Effects []Effect
	Execute ExecuteFunc
}

// Selector succeeds through its first feasible child.
type Selector struct {
	TaskBase
	Children []Task
}

// Sequence succeeds only if every child succeeds in declared order.
type Sequence struct {
	TaskBase
	Children []Task
}

// PredictStates folds all effects, in order, over a private copy of s.
func (p *Primitive) PredictStates(s State) (State, error) {
	next := s.Clone()
	for _, e := range p.Effects {
		v, err := e.PredictState(next)
		if err != nil {
			return nil, fmt.Errorf("task %q: %w", p.Name, err)
		}
		next[e.Key] = v
	}
	return next, nil
}

// UpdateStates applies every effect to s in place.
func (p *Primitive) UpdateStates(s State) error {
	for _, e := range p.Effects {
		if err := e.UpdateState(s); err != nil {
			return fmt.Errorf("task %q: %w", p.Name, err)
		}
	}
	return nil
}

// Run invokes the execution capability.
func (p *Primitive) Run(ctx context.Context) error {
	if p.Execute == nil {
		return nil
	}
	return p.Execute(ctx)
}

// TypeOf names the variant of t.
func TypeOf(t Task) string {
	switch t.(type) {
	case *Primitive:
		return "primitive"
	case *Selector:
		return "selector"
	case *Sequence:
		return "sequence"
	}
	return fmt.Sprintf("%T", t)
}

// Children returns the subtasks of a composite task, nil for primitives.
func Children(t Task) []Task {
	switch t := t.(type) {
	case *Selector:
		return t.Children
	case *Sequence:
		return t.Children
	}
	return nil
}

// IsTaskValid checks t against the snapshot s.
// A ForceValid or ForceInvalid override is authoritative; otherwise every
// requirement must hold.
func IsTaskValid(agent AgentView, t Task, s State) (bool, error) {
	b := t.Base()
	if b.Override != nil {
		switch b.Override(agent) {
		case ForceValid:
			return true, nil
		case ForceInvalid:
			return false, nil
		}
	}
	for _, c := range b.Requirements {
		ok, err := c.IsMet(s)
		if err != nil {
			return false, fmt.Errorf("task %q requirement %s: %w", b.Name, c, err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
