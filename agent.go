package htn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/htn/internal/runtime"
	"github.com/aretw0/htn/pkg/domain"
	"github.com/google/uuid"
)

// Agent owns live state and a root task, and turns them into plans.
// It is safe for concurrent use; planning works on a snapshot taken once
// per request and never observes later mutations.
type Agent struct {
	id      string
	name    string
	root    domain.Task
	sensors []domain.Sensor

	mu    sync.RWMutex
	state domain.State

	planner  *runtime.Planner
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	maxDepth int
	newID    func() string
	now      func() time.Time
}

// Option defines a functional option for configuring the Agent.
type Option func(*Agent)

// WithName sets a human readable name used in logs and events.
func WithName(name string) Option {
	return func(a *Agent) {
		a.name = name
	}
}

// WithID sets the agent identity used by stores. Defaults to a random UUID.
func WithID(id string) Option {
	return func(a *Agent) {
		a.id = id
	}
}

// WithSensors registers sensors, run in the given order.
func WithSensors(sensors ...domain.Sensor) Option {
	return func(a *Agent) {
		a.sensors = append(a.sensors, sensors...)
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(a *Agent) {
		a.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the agent.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

// WithMaxDepth bounds the nesting depth the planner accepts. Zero means unlimited.
func WithMaxDepth(n int) Option {
	return func(a *Agent) {
		a.maxDepth = n
	}
}

// WithPlanIDGenerator replaces the UUID generator used for plan IDs.
func WithPlanIDGenerator(gen func() string) Option {
	return func(a *Agent) {
		a.newID = gen
	}
}

// NewAgent creates an agent over root with a copy of initial as live state.
func NewAgent(root domain.Task, initial domain.State, opts ...Option) (*Agent, error) {
	if root == nil {
		return nil, errors.New("root task is required")
	}

	a := &Agent{
		root:  root,
		state: initial.Clone(),
		newID: uuid.NewString,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.id == "" {
		a.id = uuid.NewString()
	}
	if a.name == "" {
		a.name = root.Base().Name
	}
	if a.logger == nil {
		a.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	a.logger = a.logger.With("agent", a.name)

	a.planner = runtime.NewPlanner(
		runtime.WithLogger(a.logger),
		runtime.WithMaxDepth(a.maxDepth),
	)
	return a, nil
}

func (a *Agent) ID() string   { return a.id }
func (a *Agent) Name() string { return a.name }

// Root returns the task tree the agent plans over.
func (a *Agent) Root() domain.Task { return a.root }

// Get reads one live state entry.
func (a *Agent) Get(key string) domain.Value {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state.Get(key)
}

// Set writes one live state entry.
func (a *Agent) Set(key string, v domain.Value) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state[key] = v
}

// Snapshot returns an independent copy of live state.
func (a *Agent) Snapshot() domain.State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state.Clone()
}

// Replace swaps live state for a copy of s.
func (a *Agent) Replace(s domain.State) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = s.Clone()
}

// Sense runs every sensor in declared order, committing each reading before
// the next sensor runs. It stops at the first failing sensor.
func (a *Agent) Sense(ctx context.Context) error {
	for _, sensor := range a.sensors {
		v, err := sensor.Sense(ctx)
		if err != nil {
			return err
		}
		a.Set(sensor.Key, v)

		if a.hooks.OnSense != nil {
			a.hooks.OnSense(ctx, &domain.SenseEvent{
				EventBase: a.event(domain.EventSense),
				Key:       sensor.Key,
				Value:     v,
			})
		}
	}
	return nil
}

// IsTaskValid senses, then checks t against live state.
func (a *Agent) IsTaskValid(ctx context.Context, t domain.Task) (bool, error) {
	if err := a.Sense(ctx); err != nil {
		return false, err
	}
	return domain.IsTaskValid(a, t, a.Snapshot())
}

// FindPlan senses, snapshots live state once and resolves the root task.
// A nil plan with a nil error means no feasible plan exists.
func (a *Agent) FindPlan(ctx context.Context) (*Plan, error) {
	if err := a.Sense(ctx); err != nil {
		return nil, fmt.Errorf("sense: %w", err)
	}

	start := a.now()
	initial := a.Snapshot()
	res, err := a.planner.Resolve(ctx, a, a.root, initial.Clone())
	elapsed := a.now().Sub(start)

	if err != nil || res == nil {
		a.logger.DebugContext(ctx, "planning failed", "error", err, "duration", elapsed)
		if a.hooks.OnPlanFailed != nil {
			a.hooks.OnPlanFailed(ctx, &domain.PlanEvent{
				EventBase: a.event(domain.EventPlanFailed),
				Duration:  elapsed,
				Err:       err,
			})
		}
		return nil, err
	}

	plan := &Plan{
		ID:             a.newID(),
		Agent:          a,
		Tasks:          res.Tasks,
		InitialState:   initial,
		PredictedState: res.State,
		Explored:       res.Explored,
		CreatedAt:      start,
	}

	a.logger.DebugContext(ctx, "plan found", "plan_id", plan.ID, "steps", len(plan.Tasks), "explored", res.Explored)
	if a.hooks.OnPlanFound != nil {
		a.hooks.OnPlanFound(ctx, &domain.PlanEvent{
			EventBase: a.event(domain.EventPlanFound),
			PlanID:    plan.ID,
			Tasks:     plan.Names(),
			Explored:  res.Explored,
			Duration:  elapsed,
		})
	}
	return plan, nil
}

func (a *Agent) event(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: a.now(), Type: t, Agent: a.name}
}
