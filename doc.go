/*
Package htn is a hierarchical task network planner for autonomous agents.

Given a task tree and a snapshot of an agent's state, it derives an ordered
list of primitive actions predicted to satisfy every precondition along the
way, and can then execute that list against live state.

# Concept

A task tree mixes three variants:

  - Primitive: an atomic action with requirements and effects on state.
  - Selector: an OR node that commits to its first feasible child.
  - Sequence: an AND node whose children must all resolve, in order.

Planning is a single deterministic, depth-first pass. Each requirement is
checked against the state predicted by the actions chosen so far. Selectors
are never revisited once a child resolves, so a later failure in an enclosing
Sequence fails the whole Sequence.

# Usage

	farm := dsl.Primitive("Farm").
		Require("Energy", domain.GreaterOrEqual, 30).
		Effect("CropHealth", domain.IncreaseBy, 20).
		Effect("Energy", domain.DecreaseBy, 30)
	sleep := dsl.Primitive("Sleep").Effect("Energy", domain.IncreaseBy, 5)

	root := dsl.Selector("Farmer", dsl.Sequence("Work", farm, sleep)).MustBuild()

	agent, err := htn.NewAgent(root, domain.MustState(map[string]any{
		"Energy": 100, "CropHealth": 0,
	}))
	if err != nil {
		log.Fatal(err)
	}

	plan, err := agent.FindPlan(ctx)
	if err != nil {
		log.Fatal(err)
	}
	if plan == nil {
		log.Println("nothing to do")
		return
	}
	if err := plan.Execute(ctx); err != nil {
		log.Printf("plan stopped: %v", err)
	}

# Concurrency

FindPlan copies live state once and never re-reads it during the search.
Plan execution is sequential: sensors run, the step is re-validated against
live state, its execution capability runs, and its effects are applied. A
failed step halts the plan without rolling back earlier effects.
*/
package htn
