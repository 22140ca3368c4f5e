package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/htn/pkg/domain"
)

// Node is anything that can take a place in a task tree: a builder from this
// package or an existing task wrapped with Use.
type Node interface {
	build() (domain.Task, error)
}

type existing struct{ task domain.Task }

func (e existing) build() (domain.Task, error) {
	if e.task == nil {
		return nil, errors.New("nil task")
	}
	return e.task, nil
}

// Use embeds an already built task, for example a subtree shared between trees.
func Use(t domain.Task) Node {
	return existing{task: t}
}

// base collects what all builders share.
type base struct {
	task *domain.TaskBase
	errs []error
}

func (b *base) require(key string, cmp domain.Comparison, target any, bestEffort bool) {
	expr, err := expression(target)
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("requirement %s: %w", key, err))
		return
	}
	b.task.Requirements = append(b.task.Requirements, domain.Condition{
		Key:        key,
		Comparison: cmp,
		Target:     expr,
		BestEffort: bestEffort,
	})
}

func (b *base) err() error {
	if len(b.errs) == 0 {
		return nil
	}
	return fmt.Errorf("task %q: %w", b.task.Name, errors.Join(b.errs...))
}

// expression accepts a domain.Expression or any literal FromAny understands.
func expression(x any) (domain.Expression, error) {
	if e, ok := x.(domain.Expression); ok {
		return e, nil
	}
	v, err := domain.FromAny(x)
	if err != nil {
		return nil, err
	}
	return domain.Constant{Value: v}, nil
}

// Ref refers to the current value of another state entry.
func Ref(key string) domain.Expression {
	return domain.StateRef{Key: key}
}

// Calc evaluates key op operand without changing key.
func Calc(key string, op domain.Operation, operand any) domain.Expression {
	expr, err := expression(operand)
	if err != nil {
		return domain.ProducerFunc(func() (domain.Value, error) { return domain.Nil(), err })
	}
	return domain.StateOperation{Key: key, Operation: op, Operand: expr}
}

// Produce wraps an external callback.
func Produce(fn func() (domain.Value, error)) domain.Expression {
	return domain.ProducerFunc(fn)
}
