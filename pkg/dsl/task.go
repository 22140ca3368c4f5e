package dsl

import (
	"fmt"

	"github.com/aretw0/htn/pkg/domain"
)

// PrimitiveBuilder provides a fluent API for configuring a primitive task.
type PrimitiveBuilder struct {
	base
	prim *domain.Primitive
}

// Primitive starts a new primitive task.
func Primitive(name string) *PrimitiveBuilder {
	p := &domain.Primitive{TaskBase: domain.TaskBase{Name: name}}
	return &PrimitiveBuilder{base: base{task: &p.TaskBase}, prim: p}
}

// Require adds a requirement. target is a literal or a domain.Expression.
func (p *PrimitiveBuilder) Require(key string, cmp domain.Comparison, target any) *PrimitiveBuilder {
	p.require(key, cmp, target, false)
	return p
}

// RequireCloser adds a best-effort requirement. The flag only affects
// domain.Condition.IsMetOrCloser; planning and execution check it like Require.
func (p *PrimitiveBuilder) RequireCloser(key string, cmp domain.Comparison, target any) *PrimitiveBuilder {
	p.require(key, cmp, target, true)
	return p
}

// ValidIf installs a validity override.
func (p *PrimitiveBuilder) ValidIf(fn domain.OverrideFunc) *PrimitiveBuilder {
	p.task.Override = fn
	return p
}

// Effect appends an effect. Effects apply in the order they are added.
func (p *PrimitiveBuilder) Effect(key string, op domain.Operation, operand any) *PrimitiveBuilder {
	expr, err := expression(operand)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("effect %s: %w", key, err))
		return p
	}
	p.prim.Effects = append(p.prim.Effects, domain.Effect{Key: key, Operation: op, Operand: expr})
	return p
}

// Do sets the execution capability.
func (p *PrimitiveBuilder) Do(fn domain.ExecuteFunc) *PrimitiveBuilder {
	p.prim.Execute = fn
	return p
}

func (p *PrimitiveBuilder) build() (domain.Task, error) {
	if err := p.err(); err != nil {
		return nil, err
	}
	return p.prim, nil
}

// Build returns the configured primitive.
func (p *PrimitiveBuilder) Build() (*domain.Primitive, error) {
	if err := p.err(); err != nil {
		return nil, err
	}
	return p.prim, nil
}

// CompositeBuilder configures a Selector or a Sequence.
type CompositeBuilder struct {
	base
	kind     string
	children []Node
}

// Selector starts an OR node over children.
func Selector(name string, children ...Node) *CompositeBuilder {
	return &CompositeBuilder{base: base{task: &domain.TaskBase{Name: name}}, kind: "selector", children: children}
}

// Sequence starts an AND node over children.
func Sequence(name string, children ...Node) *CompositeBuilder {
	return &CompositeBuilder{base: base{task: &domain.TaskBase{Name: name}}, kind: "sequence", children: children}
}

// Add appends children.
func (c *CompositeBuilder) Add(children ...Node) *CompositeBuilder {
	c.children = append(c.children, children...)
	return c
}

func (c *CompositeBuilder) Require(key string, cmp domain.Comparison, target any) *CompositeBuilder {
	c.require(key, cmp, target, false)
	return c
}

// RequireCloser adds a best-effort requirement, checked like Require by the planner.
func (c *CompositeBuilder) RequireCloser(key string, cmp domain.Comparison, target any) *CompositeBuilder {
	c.require(key, cmp, target, true)
	return c
}

func (c *CompositeBuilder) ValidIf(fn domain.OverrideFunc) *CompositeBuilder {
	c.task.Override = fn
	return c
}

func (c *CompositeBuilder) build() (domain.Task, error) {
	if err := c.err(); err != nil {
		return nil, err
	}
	children := make([]domain.Task, 0, len(c.children))
	for i, child := range c.children {
		if child == nil {
			return nil, fmt.Errorf("task %q: child %d is nil", c.task.Name, i)
		}
		t, err := child.build()
		if err != nil {
			return nil, fmt.Errorf("task %q: %w", c.task.Name, err)
		}
		children = append(children, t)
	}

	if c.kind == "selector" {
		return &domain.Selector{TaskBase: *c.task, Children: children}, nil
	}
	return &domain.Sequence{TaskBase: *c.task, Children: children}, nil
}

// Build compiles the subtree into a domain.Task.
func (c *CompositeBuilder) Build() (domain.Task, error) {
	return c.build()
}

// MustBuild is Build for trees known to be valid. It panics on error.
func (c *CompositeBuilder) MustBuild() domain.Task {
	t, err := c.Build()
	if err != nil {
		panic(err)
	}
	return t
}
