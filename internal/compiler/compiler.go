// Package compiler turns declarative task tree documents into domain tasks.
package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/htn/internal/dto"
	"github.com/aretw0/htn/pkg/domain"
	"github.com/aretw0/htn/pkg/schema"
)

// Actions resolves the names used by "do" to execution capabilities.
type Actions interface {
	Lookup(name string) (domain.ExecuteFunc, bool)
}

// Compiler builds task trees from documents.
type Compiler struct {
	actions Actions
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithActions sets the registry consulted for "do" entries. Without it,
// any "do" entry is a compile error.
func WithActions(a Actions) Option {
	return func(c *Compiler) {
		c.actions = a
	}
}

// New creates a compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile returns the root task and initial state described by doc.
// Entries of doc.Tasks referenced more than once compile to a single shared task.
func (c *Compiler) Compile(doc *dto.Document) (domain.Task, domain.State, error) {
	state, err := domain.StateFrom(doc.State)
	if err != nil {
		return nil, nil, fmt.Errorf("state: %w", err)
	}
	if state == nil {
		state = domain.State{}
	}
	sch, err := Schema(doc)
	if err != nil {
		return nil, nil, err
	}
	if err := schema.Validate(sch, state); err != nil {
		return nil, nil, fmt.Errorf("state: %w", err)
	}

	run := &compilation{
		Compiler: c,
		doc:      doc,
		shared:   make(map[string]domain.Task),
		active:   make(map[string]bool),
	}
	root, err := run.task(doc.Root, "root")
	if err != nil {
		return nil, nil, err
	}
	return root, state, nil
}

// Schema parses the state schema declared by doc, nil when there is none.
func Schema(doc *dto.Document) (schema.Schema, error) {
	if len(doc.Schema) == 0 {
		return nil, nil
	}
	sch, err := schema.ParseTypeMap(doc.Schema)
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	return sch, nil
}

type compilation struct {
	*Compiler
	doc    *dto.Document
	shared map[string]domain.Task
	active map[string]bool
}

func (c *compilation) task(m dto.TaskMetadata, path string) (domain.Task, error) {
	if m.Use != "" {
		return c.use(m, path)
	}
	if m.Name == "" {
		return nil, fmt.Errorf("%s: task name is required", path)
	}
	path = path + "/" + m.Name

	base, err := c.base(m, path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(m.Type) {
	case "", "primitive":
		if len(m.Children) > 0 {
			return nil, fmt.Errorf("%s: primitive task cannot have children", path)
		}
		p := &domain.Primitive{TaskBase: base}
		for i, em := range m.Effects {
			e, err := c.effect(em)
			if err != nil {
				return nil, fmt.Errorf("%s: effect %d: %w", path, i, err)
			}
			p.Effects = append(p.Effects, e)
		}
		if m.Do != "" {
			if c.actions == nil {
				return nil, fmt.Errorf("%s: action %q: no action registry", path, m.Do)
			}
			fn, ok := c.actions.Lookup(m.Do)
			if !ok {
				return nil, fmt.Errorf("%s: action %q not registered", path, m.Do)
			}
			p.Execute = fn
		}
		return p, nil

	case "selector", "sequence":
		if len(m.Effects) > 0 || m.Do != "" {
			return nil, fmt.Errorf("%s: only primitive tasks have effects", path)
		}
		children := make([]domain.Task, 0, len(m.Children))
		for _, cm := range m.Children {
			child, err := c.task(cm, path)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		if strings.EqualFold(m.Type, "selector") {
			return &domain.Selector{TaskBase: base, Children: children}, nil
		}
		return &domain.Sequence{TaskBase: base, Children: children}, nil
	}
	return nil, fmt.Errorf("%s: unknown task type %q", path, m.Type)
}

// use resolves a reference to a shared task definition.
func (c *compilation) use(m dto.TaskMetadata, path string) (domain.Task, error) {
	if m.Name != "" || m.Type != "" || len(m.Children) > 0 || len(m.Requires) > 0 || len(m.Effects) > 0 ||
		m.ValidIf != "" || m.Do != "" {
		return nil, fmt.Errorf("%s: use %q cannot be combined with other fields", path, m.Use)
	}
	if t, ok := c.shared[m.Use]; ok {
		return t, nil
	}
	def, ok := c.doc.Tasks[m.Use]
	if !ok {
		return nil, fmt.Errorf("%s: unknown task %q", path, m.Use)
	}
	if c.active[m.Use] {
		return nil, fmt.Errorf("%s: task %q refers to itself", path, m.Use)
	}
	if def.Name == "" {
		def.Name = m.Use
	}

	c.active[m.Use] = true
	t, err := c.task(def, path)
	delete(c.active, m.Use)
	if err != nil {
		return nil, err
	}
	c.shared[m.Use] = t
	return t, nil
}

func (c *compilation) base(m dto.TaskMetadata, path string) (domain.TaskBase, error) {
	base := domain.TaskBase{Name: m.Name}
	var errs []error
	for i, cm := range m.Requires {
		cond, err := condition(cm)
		if err != nil {
			errs = append(errs, fmt.Errorf("requirement %d: %w", i, err))
			continue
		}
		base.Requirements = append(base.Requirements, cond)
	}
	if m.ValidIf != "" {
		g, err := compileGuard(m.ValidIf)
		if err != nil {
			errs = append(errs, err)
		} else {
			base.Override = g.Override
		}
	}
	if err := errors.Join(errs...); err != nil {
		return base, fmt.Errorf("%s: %w", path, err)
	}
	return base, nil
}

func condition(m dto.ConditionMetadata) (domain.Condition, error) {
	if m.Key == "" {
		return domain.Condition{}, errors.New("key is required")
	}
	cmp, err := domain.ParseComparison(m.Cmp)
	if err != nil {
		return domain.Condition{}, err
	}
	target, err := operand(m.Operand)
	if err != nil {
		return domain.Condition{}, err
	}
	return domain.Condition{Key: m.Key, Comparison: cmp, Target: target, BestEffort: m.BestEffort}, nil
}

func (c *compilation) effect(m dto.EffectMetadata) (domain.Effect, error) {
	if m.Key == "" {
		return domain.Effect{}, errors.New("key is required")
	}
	op, err := domain.ParseOperation(m.Op)
	if err != nil {
		return domain.Effect{}, err
	}
	val, err := operand(m.Operand)
	if err != nil {
		return domain.Effect{}, err
	}
	return domain.Effect{Key: m.Key, Operation: op, Operand: val}, nil
}

func operand(m dto.Operand) (domain.Expression, error) {
	set := 0
	if m.Value != nil {
		set++
	}
	if m.Ref != "" {
		set++
	}
	if m.Calc != nil {
		set++
	}
	if set > 1 {
		return nil, errors.New("value, ref and calc are mutually exclusive")
	}

	switch {
	case m.Ref != "":
		return domain.StateRef{Key: m.Ref}, nil
	case m.Calc != nil:
		op, err := domain.ParseOperation(m.Calc.Op)
		if err != nil {
			return nil, fmt.Errorf("calc: %w", err)
		}
		if m.Calc.Calc != nil {
			return nil, errors.New("calc cannot nest")
		}
		inner, err := operand(m.Calc.Operand)
		if err != nil {
			return nil, fmt.Errorf("calc: %w", err)
		}
		return domain.StateOperation{Key: m.Calc.Key, Operation: op, Operand: inner}, nil
	}
	v, err := domain.FromAny(m.Value)
	if err != nil {
		return nil, err
	}
	return domain.Constant{Value: v}, nil
}
