package runtime

import (
	"slices"

	"github.com/aretw0/htn/pkg/domain"
)

// step is one node of the plan prefix chain.
// Steps are append-only: once pushed, an entry is never modified.
type step struct {
	prev  int // index of the previous step, -1 for the zero step
	task  *domain.Primitive
	state domain.State
	depth int
}

// chain is an index-addressed arena of steps rooted at the zero step.
type chain struct {
	steps []step
}

func newChain(initial domain.State) *chain {
	return &chain{steps: []step{{prev: -1, state: initial}}}
}

// push records the application of task on top of step at and returns the new index.
func (c *chain) push(at int, task *domain.Primitive, state domain.State) int {
	c.steps = append(c.steps, step{
		prev:  at,
		task:  task,
		state: state,
		depth: c.steps[at].depth + 1,
	})
	return len(c.steps) - 1
}

func (c *chain) state(at int) domain.State {
	return c.steps[at].state
}

func (c *chain) depth(at int) int {
	return c.steps[at].depth
}

// unwind walks prev indices from at back to the zero step and returns the
// primitives in application order.
func (c *chain) unwind(at int) []*domain.Primitive {
	tasks := make([]*domain.Primitive, 0, c.steps[at].depth)
	for i := at; i >= 0; i = c.steps[i].prev {
		if t := c.steps[i].task; t != nil {
			tasks = append(tasks, t)
		}
	}
	slices.Reverse(tasks)
	return tasks
}
