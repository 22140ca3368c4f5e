// Package tui renders plans and banners for terminal output.
package tui

import (
	"errors"
	"fmt"
	"strings"

	htn "github.com/aretw0/htn"
	"github.com/aretw0/htn/pkg/domain"
)

// PlanMarkdown describes a plan as a markdown document: the steps in order,
// followed by the state entries the plan is predicted to change.
func PlanMarkdown(p *htn.Plan) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Plan for %s\n\n", p.Agent.Name())
	fmt.Fprintf(&sb, "%d steps, %d tasks explored.\n\n", p.Len(), p.Explored)

	if p.Len() > 0 {
		sb.WriteString("| # | Task | Effects |\n|---|------|---------|\n")
		for i, t := range p.Tasks {
			effects := make([]string, len(t.Effects))
			for j, e := range t.Effects {
				effects[j] = "`" + e.String() + "`"
			}
			fmt.Fprintf(&sb, "| %d | %s | %s |\n", i+1, t.Name, strings.Join(effects, ", "))
		}
		sb.WriteString("\n")
	}

	changes := p.Changes()
	if changes.IsEmpty() {
		sb.WriteString("No state changes predicted.\n")
		return sb.String()
	}
	sb.WriteString("## Predicted changes\n\n| Key | Before | After |\n|-----|--------|-------|\n")
	for _, k := range changes.Changed.Keys() {
		fmt.Fprintf(&sb, "| %s | `%s` | `%s` |\n", k, describe(p.InitialState, k), changes.Changed[k])
	}
	for _, k := range changes.Removed {
		fmt.Fprintf(&sb, "| %s | `%s` | removed |\n", k, describe(p.InitialState, k))
	}
	return sb.String()
}

// RunMarkdown reports how executing p ended and the agent's live state afterwards.
func RunMarkdown(p *htn.Plan, state domain.State, err error) string {
	var sb strings.Builder
	sb.WriteString("## Result\n\n")

	var execErr *htn.ExecutionError
	switch {
	case err == nil:
		fmt.Fprintf(&sb, "All %d steps completed.\n\n", p.Len())
	case errors.As(err, &execErr):
		fmt.Fprintf(&sb, "Stopped at step %d (%s) after %d completed: %v\n\n",
			execErr.Index+1, execErr.Task, execErr.Index, execErr.Err)
	default:
		fmt.Fprintf(&sb, "Stopped: %v\n\n", err)
	}

	sb.WriteString("| Key | Value |\n|-----|-------|\n")
	for _, k := range state.Keys() {
		fmt.Fprintf(&sb, "| %s | `%s` |\n", k, state[k])
	}
	return sb.String()
}

func describe(s domain.State, key string) string {
	if v, ok := s[key]; ok {
		return v.String()
	}
	return "unset"
}
