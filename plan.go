package htn

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/htn/pkg/domain"
)

// Plan is the ordered list of primitives found for an agent together with
// the state they are predicted to produce.
type Plan struct {
	ID             string
	Agent          *Agent
	Tasks          []*domain.Primitive
	InitialState   domain.State // snapshot the plan was resolved from
	PredictedState domain.State
	Explored       int
	CreatedAt      time.Time
}

// ExecutionError reports the step at which plan execution stopped.
// Effects of earlier steps remain applied; the failed step applies none.
type ExecutionError struct {
	Index int
	Task  string
	Err   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("plan step %d (%s): %v", e.Index, e.Task, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Names returns the task names in plan order.
func (p *Plan) Names() []string {
	names := make([]string, len(p.Tasks))
	for i, t := range p.Tasks {
		names[i] = t.Name
	}
	return names
}

// Len returns the number of steps in the plan.
func (p *Plan) Len() int { return len(p.Tasks) }

// Changes lists the entries the plan is predicted to modify.
func (p *Plan) Changes() domain.StateDiff {
	return domain.Diff(p.InitialState, p.PredictedState)
}

// Execute runs the plan against the agent's live state, one step at a time.
//
// Before each step the agent senses and the step is re-validated against live
// state. The step's execution capability then runs, and on success its effects
// are applied together: a step whose effects fail to evaluate leaves live
// state untouched. Execution stops at the first invalid or failed step
// without rolling back earlier effects and without re-planning. The context is
// checked between steps and passed to each capability.
//
// Execute returns nil when every step succeeded, otherwise an *ExecutionError
// wrapping domain.ErrTaskInvalid, domain.ErrTaskFailed or the underlying cause.
func (p *Plan) Execute(ctx context.Context) error {
	a := p.Agent
	for i, t := range p.Tasks {
		if err := ctx.Err(); err != nil {
			return p.fail(ctx, i, t, err)
		}

		valid, err := a.IsTaskValid(ctx, t)
		if err != nil {
			return p.fail(ctx, i, t, err)
		}
		if !valid {
			return p.fail(ctx, i, t, domain.ErrTaskInvalid)
		}

		p.emit(ctx, a.hooks.OnTaskStart, domain.EventTaskStart, i, t, nil)
		a.logger.DebugContext(ctx, "executing task", "plan_id", p.ID, "task", t.Name, "index", i)

		if err := t.Run(ctx); err != nil {
			return p.fail(ctx, i, t, fmt.Errorf("%w: %w", domain.ErrTaskFailed, err))
		}

		a.mu.Lock()
		next, err := t.PredictStates(a.state)
		if err == nil {
			a.state = next
		}
		a.mu.Unlock()
		if err != nil {
			return p.fail(ctx, i, t, err)
		}

		p.emit(ctx, a.hooks.OnTaskComplete, domain.EventTaskComplete, i, t, nil)
	}
	return nil
}

// ExecuteAsync runs Execute in a new goroutine and delivers its result on the returned channel.
func (p *Plan) ExecuteAsync(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- p.Execute(ctx)
	}()
	return done
}

func (p *Plan) fail(ctx context.Context, i int, t *domain.Primitive, err error) error {
	p.Agent.logger.InfoContext(ctx, "plan execution stopped", "plan_id", p.ID, "task", t.Name, "index", i, "error", err)
	p.emit(ctx, p.Agent.hooks.OnTaskFailed, domain.EventTaskFailed, i, t, err)
	return &ExecutionError{Index: i, Task: t.Name, Err: err}
}

func (p *Plan) emit(ctx context.Context, hook func(context.Context, *domain.TaskEvent), typ domain.EventType, i int, t *domain.Primitive, err error) {
	if hook == nil {
		return
	}
	hook(ctx, &domain.TaskEvent{
		EventBase: p.Agent.event(typ),
		PlanID:    p.ID,
		Index:     i,
		Task:      t.Name,
		Err:       err,
	})
}
