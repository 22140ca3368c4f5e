package compiler

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/htn/internal/dto"
	"github.com/aretw0/htn/pkg/domain"
	"github.com/aretw0/htn/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const farmer = `
name: farmer
state:
  Energy: 100
  CropHealth: 0
  Cooldown: {duration: 5s}
tasks:
  Rest:
    requires: ["Energy < 30"]
    effects: ["Energy = 100"]
root:
  name: Farmer
  type: selector
  children:
    - name: Work
      type: sequence
      children:
        - name: Farm
          requires:
            - Energy >= 30
          effects:
            - CropHealth += 20
            - {key: Energy, op: DecreaseBy, value: 25}
          do: till
        - name: Check
          requires:
            - {key: CropHealth, cmp: ">", ref: Threshold}
    - use: Rest
`

type view struct{ domain.State }

func (view) Name() string { return "bob" }

func compile(t *testing.T, src string, opts ...Option) (domain.Task, domain.State) {
	t.Helper()
	doc, err := ParseYAML([]byte(src))
	require.NoError(t, err)
	root, state, err := New(opts...).Compile(doc)
	require.NoError(t, err)
	return root, state
}

func TestCompile_Farmer(t *testing.T) {
	reg := registry.NewRegistry()
	reg.Register("till", func(context.Context) error { return nil })

	root, state := compile(t, farmer, WithActions(reg))

	assert.Equal(t, domain.Int(100), state.Get("Energy"))
	assert.Equal(t, domain.Duration(5*time.Second), state.Get("Cooldown"))

	sel, ok := root.(*domain.Selector)
	require.True(t, ok)
	assert.Equal(t, "Farmer", sel.Name)
	require.Len(t, sel.Children, 2)

	work := sel.Children[0].(*domain.Sequence)
	farm := work.Children[0].(*domain.Primitive)
	assert.Equal(t, "Farm", farm.Name)
	require.Len(t, farm.Requirements, 1)
	assert.Equal(t, "Energy >= 30", farm.Requirements[0].String())
	require.Len(t, farm.Effects, 2)
	assert.Equal(t, domain.IncreaseBy, farm.Effects[0].Operation)
	assert.Equal(t, domain.DecreaseBy, farm.Effects[1].Operation)
	assert.NotNil(t, farm.Execute)

	check := work.Children[1].(*domain.Primitive)
	assert.Equal(t, domain.StateRef{Key: "Threshold"}, check.Requirements[0].Target)

	rest := sel.Children[1].(*domain.Primitive)
	assert.Equal(t, "Rest", rest.Name)
}

func TestCompile_SharedTasksAreReused(t *testing.T) {
	root, _ := compile(t, `
tasks:
  Idle: {effects: ["Idle = true"]}
root:
  name: Root
  type: sequence
  children: [{use: Idle}, {use: Idle}]
`)
	seq := root.(*domain.Sequence)
	assert.Same(t, seq.Children[0], seq.Children[1])
}

func TestCompile_Operands(t *testing.T) {
	root, _ := compile(t, `
root:
  name: P
  effects:
    - "Name = \"farm hand\""
    - "Ratio *= 1.5"
    - {key: Limit, op: "=", calc: {key: Energy, op: "*=", value: 2}}
    - "Cleared = "
`)
	p := root.(*domain.Primitive)
	require.Len(t, p.Effects, 4)

	s := domain.MustState(map[string]any{"Energy": 10, "Ratio": 2})
	next, err := p.PredictStates(s)
	require.NoError(t, err)
	assert.Equal(t, domain.Text("farm hand"), next.Get("Name"))
	assert.Equal(t, domain.Float(3), next.Get("Ratio"))
	assert.Equal(t, domain.Int(20), next.Get("Limit"))
	assert.True(t, next.Get("Cleared").IsNil())
	_, has := next["Cleared"]
	assert.True(t, has)
}

func TestCompile_BestEffort(t *testing.T) {
	root, _ := compile(t, `
root:
  name: Refuel
  requires:
    - {key: Fuel, cmp: ">=", value: 80, best_effort: true}
`)
	c := root.Base().Requirements[0]
	assert.True(t, c.BestEffort)

	ok, err := c.IsMetOrCloser(domain.MustState(map[string]any{"Fuel": 60}), domain.MustState(map[string]any{"Fuel": 50}))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCompile_ValidIf(t *testing.T) {
	root, _ := compile(t, `
root:
  name: Guarded
  valid_if: 'Energy > 10 && agent == "bob"'
`)
	override := root.Base().Override
	require.NotNil(t, override)

	assert.Equal(t, domain.ForceValid, override(view{domain.MustState(map[string]any{"Energy": 20})}))
	assert.Equal(t, domain.ForceInvalid, override(view{domain.MustState(map[string]any{"Energy": 5})}))
	// nil > 10 fails to evaluate
	assert.Equal(t, domain.ForceInvalid, override(view{domain.State{}}))
}

func TestCompile_ValidIfDefers(t *testing.T) {
	root, _ := compile(t, `
root:
  name: Guarded
  valid_if: 'Mode == "manual" ? false : nil'
`)
	override := root.Base().Override
	assert.Equal(t, domain.ForceInvalid, override(view{domain.MustState(map[string]any{"Mode": "manual"})}))
	assert.Equal(t, domain.Defer, override(view{domain.MustState(map[string]any{"Mode": "auto"})}))
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"missing name", `root: {type: selector}`, "task name is required"},
		{"unknown type", `root: {name: X, type: parallel}`, `unknown task type "parallel"`},
		{"unknown comparison", `root: {name: X, requires: ["A ~= 1"]}`, "unknown comparison"},
		{"unknown operation", `root: {name: X, effects: ["A ?= 1"]}`, "unknown operation"},
		{"malformed", `root: {name: X, effects: ["A"]}`, "malformed expression"},
		{"primitive children", `root: {name: X, children: [{name: Y}]}`, "cannot have children"},
		{"composite effects", `root: {name: X, type: sequence, effects: ["A = 1"]}`, "only primitive tasks have effects"},
		{"unknown use", `root: {use: Nope}`, `unknown task "Nope"`},
		{"cycle", "tasks:\n  Loop: {type: sequence, children: [{use: Loop}]}\nroot: {use: Loop}", "refers to itself"},
		{"unregistered action", `root: {name: X, do: dig}`, "no action registry"},
		{"bad guard", `root: {name: X, valid_if: "Energy >"}`, "valid_if"},
		{"ambiguous operand", `root: {name: X, effects: [{key: A, op: "=", value: 1, ref: B}]}`, "mutually exclusive"},
		{"unknown field", `root: {name: X, effect: []}`, "invalid keys"},
		{"unknown schema type", "schema: {Energy: integer}\nroot: {name: X}", "unsupported type: integer"},
		{"state violates schema", "schema: {Energy: int}\nstate: {Energy: high}\nroot: {name: X}", `state "Energy": expected int`},
		{"state misses schema key", "schema: {Energy: int}\nroot: {name: X}", `state "Energy": required`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseYAML([]byte(tt.src))
			if err == nil {
				_, _, err = New().Compile(doc)
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCompile_UnregisteredAction(t *testing.T) {
	doc, err := ParseYAML([]byte(`root: {name: X, do: dig}`))
	require.NoError(t, err)
	_, _, err = New(WithActions(registry.NewRegistry())).Compile(doc)
	assert.ErrorContains(t, err, `action "dig" not registered`)
}

func TestSchema(t *testing.T) {
	doc, err := ParseYAML([]byte(`
schema:
  Energy: int
  Mood: text?
state:
  Energy: 10
root: {name: X}
`))
	require.NoError(t, err)

	sch, err := Schema(doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"Energy", "Mood"}, sch.Keys())
	assert.Equal(t, "text?", sch["Mood"].Name())

	_, state, err := New().Compile(doc)
	require.NoError(t, err)
	assert.Equal(t, domain.Int(10), state["Energy"])

	none, err := Schema(&dto.Document{})
	require.NoError(t, err)
	assert.Nil(t, none)
}
