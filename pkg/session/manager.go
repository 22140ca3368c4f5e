package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/htn"
	"github.com/aretw0/htn/internal/logging"
	"github.com/aretw0/htn/pkg/domain"
	"github.com/aretw0/htn/pkg/ports"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates access to persisted agent state, serializing work per agent ID.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.StateStore

	mu    sync.Mutex            // guards locks
	locks map[string]*lockEntry // active locks by agent ID

	locker  ports.DistributedLocker // optional, for multiple replicas
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets how long a distributed lock survives a crashed holder. Defaults to 30s.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Manager with the given persistence store.
func NewManager(store ports.StateStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: 30 * time.Second,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(agentID) after unlocking.
func (m *Manager) acquire(agentID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[agentID]
	if !exists {
		entry = &lockEntry{}
		m.locks[agentID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(agentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[agentID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, agentID)
	}
}

// Load retrieves stored state for an agent ID.
func (m *Manager) Load(ctx context.Context, agentID string) (domain.State, error) {
	var state domain.State
	err := m.WithLock(ctx, agentID, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, agentID)
		return err
	})
	return state, err
}

// Save persists state for an agent ID.
func (m *Manager) Save(ctx context.Context, agentID string, state domain.State) error {
	return m.WithLock(ctx, agentID, func(ctx context.Context) error {
		return m.store.Save(ctx, agentID, state)
	})
}

// Delete removes an agent's state from the store.
func (m *Manager) Delete(ctx context.Context, agentID string) error {
	return m.WithLock(ctx, agentID, func(ctx context.Context) error {
		return m.store.Delete(ctx, agentID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying state store.
func (m *Manager) Store() ports.StateStore {
	return m.store
}

// Restore replaces the agent's live state with its stored state. When nothing
// is stored yet, the agent's current state is persisted instead.
func (m *Manager) Restore(ctx context.Context, agent *htn.Agent) error {
	return m.WithLock(ctx, agent.ID(), func(ctx context.Context) error {
		return m.restore(ctx, agent)
	})
}

// Persist stores a snapshot of the agent's live state.
func (m *Manager) Persist(ctx context.Context, agent *htn.Agent) error {
	return m.Save(ctx, agent.ID(), agent.Snapshot())
}

// Run restores the agent, plans, executes the plan and persists the resulting
// state, all while holding the agent's lock. State is persisted even when
// execution stops early, since applied effects are not rolled back.
// A nil plan with a nil error means nothing was feasible.
func (m *Manager) Run(ctx context.Context, agent *htn.Agent) (*htn.Plan, error) {
	var plan *htn.Plan
	err := m.WithLock(ctx, agent.ID(), func(ctx context.Context) error {
		if err := m.restore(ctx, agent); err != nil {
			return err
		}

		var err error
		plan, err = agent.FindPlan(ctx)
		if err != nil || plan == nil {
			return err
		}

		execErr := plan.Execute(ctx)
		if err := m.store.Save(ctx, agent.ID(), agent.Snapshot()); err != nil {
			return errors.Join(execErr, fmt.Errorf("failed to persist agent state: %w", err))
		}
		return execErr
	})
	return plan, err
}

func (m *Manager) restore(ctx context.Context, agent *htn.Agent) error {
	state, err := m.store.Load(ctx, agent.ID())
	if err == nil {
		agent.Replace(state)
		return nil
	}
	if !errors.Is(err, domain.ErrAgentNotFound) {
		return fmt.Errorf("failed to load agent state: %w", err)
	}
	if err := m.store.Save(ctx, agent.ID(), agent.Snapshot()); err != nil {
		return fmt.Errorf("failed to initialize agent state: %w", err)
	}
	return nil
}

// WithLock executes a function while holding the lock for the agent.
func (m *Manager) WithLock(ctx context.Context, agentID string, fn func(context.Context) error) error {
	entry := m.acquire(agentID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(agentID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, agentID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"agent_id", agentID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
