package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/htn/pkg/domain"
)

// ErrMaxDepthExceeded is returned when a task tree nests deeper than the configured limit.
var ErrMaxDepthExceeded = errors.New("task tree exceeds maximum depth")

// Planner resolves task trees into ordered primitive lists.
// It is stateless between calls and safe for concurrent use.
type Planner struct {
	logger   *slog.Logger
	maxDepth int
}

// PlannerOption configures a Planner.
type PlannerOption func(*Planner)

// WithLogger sets the logger used for search tracing.
func WithLogger(logger *slog.Logger) PlannerOption {
	return func(p *Planner) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMaxDepth bounds the nesting depth of the resolved tree. Zero means unlimited.
func WithMaxDepth(n int) PlannerOption {
	return func(p *Planner) {
		p.maxDepth = n
	}
}

// NewPlanner creates a planner.
func NewPlanner(opts ...PlannerOption) *Planner {
	p := &Planner{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is a successful resolution.
type Result struct {
	Tasks    []*domain.Primitive
	State    domain.State // predicted terminal state
	Depth    int          // number of primitives
	Explored int          // tasks visited during the search
}

// search carries the per-call resolution state.
type search struct {
	ctx      context.Context
	agent    domain.AgentView
	chain    *chain
	logger   *slog.Logger
	maxDepth int
	explored int
}

// Resolve runs one first-feasible, depth-first pass of root against snapshot.
//
// Selectors commit to their first child that resolves and are never revisited
// when a later sibling in an enclosing Sequence fails. Validity is checked
// against the predicted state of the current step, not live agent state.
//
// It returns (nil, nil) when no plan exists. Evaluation errors abort the search.
// The snapshot is owned by the search from this point on.
func (p *Planner) Resolve(ctx context.Context, agent domain.AgentView, root domain.Task, snapshot domain.State) (*Result, error) {
	s := &search{
		ctx:      ctx,
		agent:    agent,
		chain:    newChain(snapshot),
		logger:   p.logger,
		maxDepth: p.maxDepth,
	}

	end, ok, err := s.resolve(0, root, 0)
	if err != nil {
		return nil, err
	}
	if !ok {
		p.logger.Debug("no feasible plan", "explored", s.explored)
		return nil, nil
	}

	return &Result{
		Tasks:    s.chain.unwind(end),
		State:    s.chain.state(end),
		Depth:    s.chain.depth(end),
		Explored: s.explored,
	}, nil
}

// resolve returns the index of the step reached after resolving t from step at.
func (s *search) resolve(at int, t domain.Task, level int) (int, bool, error) {
	if t == nil {
		panic("htn: nil task in tree")
	}
	if err := s.ctx.Err(); err != nil {
		return 0, false, err
	}
	if s.maxDepth > 0 && level > s.maxDepth {
		return 0, false, fmt.Errorf("%w (%d) at task %q", ErrMaxDepthExceeded, s.maxDepth, t.Base().Name)
	}
	s.explored++

	valid, err := domain.IsTaskValid(s.agent, t, s.chain.state(at))
	if err != nil {
		return 0, false, err
	}
	if !valid {
		s.logger.Debug("task rejected", "task", t.Base().Name, "step", s.chain.depth(at))
		return 0, false, nil
	}

	switch t := t.(type) {
	case *domain.Primitive:
		next, err := t.PredictStates(s.chain.state(at))
		if err != nil {
			return 0, false, err
		}
		return s.chain.push(at, t, next), true, nil

	case *domain.Selector:
		for _, child := range t.Children {
			end, ok, err := s.resolve(at, child, level+1)
			if err != nil || ok {
				return end, ok, err
			}
		}
		return 0, false, nil

	case *domain.Sequence:
		cur := at
		for _, child := range t.Children {
			end, ok, err := s.resolve(cur, child, level+1)
			if err != nil || !ok {
				return 0, false, err
			}
			cur = end
		}
		return cur, true, nil

	default:
		panic(fmt.Sprintf("htn: unsupported task type %T", t))
	}
}
