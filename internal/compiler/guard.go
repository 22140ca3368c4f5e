package compiler

import (
	"fmt"

	"github.com/aretw0/htn/pkg/domain"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
)

// agentIdent names the agent inside guard expressions.
const agentIdent = "agent"

// guard is a compiled valid_if expression. A true result forces the task
// valid, false forces it invalid and nil leaves the decision to requirements.
// Evaluation errors force the task invalid.
type guard struct {
	src     string
	program *vm.Program
	idents  []string
}

type identCollector struct {
	seen  map[string]bool
	names []string
}

func (c *identCollector) Visit(node *ast.Node) {
	if n, ok := (*node).(*ast.IdentifierNode); ok && !c.seen[n.Value] {
		c.seen[n.Value] = true
		c.names = append(c.names, n.Value)
	}
}

func compileGuard(src string) (*guard, error) {
	tree, err := parser.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("valid_if %q: %w", src, err)
	}
	c := &identCollector{seen: map[string]bool{}}
	ast.Walk(&tree.Node, c)

	program, err := expr.Compile(src, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("valid_if %q: %w", src, err)
	}
	return &guard{src: src, program: program, idents: c.names}, nil
}

func (g *guard) env(agent domain.AgentView) map[string]any {
	env := map[string]any{agentIdent: agent.Name()}
	for _, id := range g.idents {
		if id == agentIdent {
			continue
		}
		// Absent keys stay undefined so builtins with the same name keep working.
		if v := agent.Get(id); !v.IsNil() {
			env[id] = v.Interface()
		}
	}
	return env
}

func (g *guard) Override(agent domain.AgentView) domain.Validity {
	out, err := expr.Run(g.program, g.env(agent))
	if err != nil {
		return domain.ForceInvalid
	}
	switch v := out.(type) {
	case nil:
		return domain.Defer
	case bool:
		if v {
			return domain.ForceValid
		}
	}
	return domain.ForceInvalid
}
