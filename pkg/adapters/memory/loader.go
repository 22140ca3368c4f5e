package memory

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/aretw0/htn/pkg/domain"
	"github.com/aretw0/htn/pkg/schema"
)

// Loader implements ports.TreeLoader, ports.Watchable and ports.SchemaSource
// over an in-memory tree.
type Loader struct {
	mu       sync.RWMutex
	root     domain.Task
	state    domain.State
	schema   schema.Schema
	watchers []chan struct{}
}

// NewLoader creates a loader serving root with a copy of state as initial state.
func NewLoader(root domain.Task, state domain.State) *Loader {
	return &Loader{root: root, state: state.Clone()}
}

// Load returns the current tree and a fresh copy of its initial state.
func (l *Loader) Load(ctx context.Context) (domain.Task, domain.State, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.root == nil {
		return nil, nil, errors.New("no task tree loaded")
	}
	return l.root, l.state.Clone(), nil
}

// Set replaces the served tree and notifies watchers.
func (l *Loader) Set(root domain.Task, state domain.State) {
	l.mu.Lock()
	l.root, l.state = root, state.Clone()
	watchers := slices.Clone(l.watchers)
	l.mu.Unlock()

	for _, w := range watchers {
		select {
		case w <- struct{}{}:
		default: // a reload is already pending
		}
	}
}

// SetSchema declares the state schema served from the next load on.
func (l *Loader) SetSchema(s schema.Schema) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.schema = s
}

// Schema returns the declared state schema.
func (l *Loader) Schema() schema.Schema {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.schema
}

// Watch returns a channel signaled after every Set until ctx is done.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)
	l.mu.Lock()
	l.watchers = append(l.watchers, ch)
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.mu.Lock()
		defer l.mu.Unlock()
		l.watchers = slices.DeleteFunc(l.watchers, func(w chan struct{}) bool { return w == ch })
	}()
	return ch, nil
}
