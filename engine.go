package htn

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aretw0/htn/internal/validator"
	"github.com/aretw0/htn/pkg/domain"
	"github.com/aretw0/htn/pkg/ports"
	"github.com/aretw0/htn/pkg/schema"
)

// ErrWatchUnsupported is returned by Engine.Watch when the loader cannot watch.
var ErrWatchUnsupported = errors.New("current loader does not support watching")

// Engine binds a task tree source to the agents planning over it.
// The tree is validated on every load; a tree that fails validation never
// replaces the current one.
type Engine struct {
	loader    ports.TreeLoader
	agentOpts []Option

	mu      sync.RWMutex
	root    domain.Task
	initial domain.State
	schema  schema.Schema
}

// NewEngine loads the tree from loader. opts are applied to every agent the
// engine creates.
func NewEngine(ctx context.Context, loader ports.TreeLoader, opts ...Option) (*Engine, error) {
	if loader == nil {
		return nil, errors.New("loader is required")
	}
	e := &Engine{loader: loader, agentOpts: opts}
	if err := e.Reload(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// Reload fetches the tree again and swaps it in when the tree is valid and
// its initial state satisfies the state schema.
// Agents created earlier keep the tree they were created with.
func (e *Engine) Reload(ctx context.Context) error {
	root, initial, err := e.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load task tree: %w", err)
	}
	if err := validator.Validate(root); err != nil {
		return fmt.Errorf("invalid task tree: %w", err)
	}
	var sch schema.Schema
	if src, ok := e.loader.(ports.SchemaSource); ok {
		sch = src.Schema()
	}
	if err := schema.Validate(sch, initial); err != nil {
		return fmt.Errorf("invalid initial state: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.root, e.initial, e.schema = root, initial, sch
	return nil
}

// Schema returns the state schema of the current tree, nil when none is declared.
func (e *Engine) Schema() schema.Schema {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.schema
}

// CheckState validates s against the current state schema.
func (e *Engine) CheckState(s domain.State) error {
	return schema.Validate(e.Schema(), s)
}

// Tree returns the current root task and a copy of its initial state.
func (e *Engine) Tree() (domain.Task, domain.State) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.root, e.initial.Clone()
}

// NewAgent creates an agent over the current tree. A nil state starts the
// agent from the tree's initial state; any other state must satisfy the
// state schema. opts are applied after the engine's.
func (e *Engine) NewAgent(state domain.State, opts ...Option) (*Agent, error) {
	root, initial := e.Tree()
	if state == nil {
		state = initial
	} else if err := e.CheckState(state); err != nil {
		return nil, err
	}
	all := append(append([]Option{}, e.agentOpts...), opts...)
	return NewAgent(root, state, all...)
}

// FindPlan plans once for a throwaway agent starting from state.
func (e *Engine) FindPlan(ctx context.Context, state domain.State) (*Plan, error) {
	agent, err := e.NewAgent(state)
	if err != nil {
		return nil, err
	}
	return agent.FindPlan(ctx)
}

// Watch reloads the tree whenever the loader reports a change and delivers
// the outcome of each reload on the returned channel. The channel is closed
// when ctx is done or the loader stops watching.
func (e *Engine) Watch(ctx context.Context) (<-chan error, error) {
	w, ok := e.loader.(ports.Watchable)
	if !ok {
		return nil, ErrWatchUnsupported
	}
	changes, err := w.Watch(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan error)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
			}
			err := e.Reload(ctx)
			select {
			case out <- err:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Loader returns the underlying TreeLoader used by the engine.
func (e *Engine) Loader() ports.TreeLoader {
	return e.loader
}
