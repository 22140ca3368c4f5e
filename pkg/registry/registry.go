package registry

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/aretw0/htn/pkg/domain"
)

// Registry maps action names used by declarative task trees to the Go
// functions that perform them.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]domain.ExecuteFunc
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		actions: make(map[string]domain.ExecuteFunc),
	}
}

// Register adds an action to the registry.
// If an action with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn domain.ExecuteFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[name] = fn
}

// Lookup returns the action registered under name.
func (r *Registry) Lookup(name string) (domain.ExecuteFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.actions[name]
	return fn, ok
}

// Names lists registered actions in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Execute looks up an action by name and runs it.
func (r *Registry) Execute(ctx context.Context, name string) error {
	fn, ok := r.Lookup(name)
	if !ok {
		return fmt.Errorf("action not found: %s", name)
	}
	return fn(ctx)
}
