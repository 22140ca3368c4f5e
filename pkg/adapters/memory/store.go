package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/htn/pkg/domain"
)

// Store implements ports.StateStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.State
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.State),
	}
}

// Save persists a copy of the state in memory.
func (s *Store) Save(ctx context.Context, agentID string, state domain.State) error {
	copied := state.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[agentID] = copied
	return nil
}

// Load retrieves a copy of the state so callers can't mutate the store through it.
func (s *Store) Load(ctx context.Context, agentID string) (domain.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.data[agentID]
	if !ok {
		return nil, domain.ErrAgentNotFound
	}
	return state.Clone(), nil
}

// Delete removes the state.
func (s *Store) Delete(ctx context.Context, agentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, agentID)
	return nil
}

// List returns stored agent IDs in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agents := make([]string, 0, len(s.data))
	for id := range s.data {
		agents = append(agents, id)
	}
	sort.Strings(agents)
	return agents, nil
}
