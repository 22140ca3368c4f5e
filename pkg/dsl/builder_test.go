package dsl

import (
	"context"
	"testing"

	"github.com/aretw0/htn/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Farmer(t *testing.T) {
	farm := Primitive("Farm").
		Require("Energy", domain.GreaterOrEqual, 30).
		Effect("CropHealth", domain.IncreaseBy, 20).
		Effect("Energy", domain.DecreaseBy, 30)
	sleep := Primitive("Sleep").Effect("Energy", domain.IncreaseBy, 5)

	root, err := Selector("Farmer", Sequence("Work", farm, sleep)).Build()
	require.NoError(t, err)

	top, ok := root.(*domain.Selector)
	require.True(t, ok)
	assert.Equal(t, "Farmer", top.Name)
	require.Len(t, top.Children, 1)

	work, ok := top.Children[0].(*domain.Sequence)
	require.True(t, ok)
	require.Len(t, work.Children, 2)

	f := work.Children[0].(*domain.Primitive)
	assert.Equal(t, "Farm", f.Name)
	require.Len(t, f.Requirements, 1)
	assert.Equal(t, domain.GreaterOrEqual, f.Requirements[0].Comparison)
	assert.Len(t, f.Effects, 2)
	assert.Equal(t, "Energy -= 30", f.Effects[1].String())
}

func TestBuilder_Expressions(t *testing.T) {
	p, err := Primitive("Refuel").
		Require("Fuel", domain.LessThan, Ref("Capacity")).
		RequireCloser("Fuel", domain.GreaterOrEqual, 10).
		Effect("Fuel", domain.SetTo, Ref("Capacity")).
		Effect("Cost", domain.SetTo, Calc("Capacity", domain.MultiplyBy, 2)).
		Build()
	require.NoError(t, err)

	assert.True(t, p.Requirements[1].BestEffort)

	next, err := p.PredictStates(domain.MustState(map[string]any{"Fuel": 3, "Capacity": 40, "Cost": 0}))
	require.NoError(t, err)
	assert.Equal(t, domain.Int(40), next["Fuel"])
	assert.Equal(t, domain.Int(80), next["Cost"])
}

func TestBuilder_DoAndValidIf(t *testing.T) {
	ran := false
	p, err := Primitive("Wave").
		Do(func(context.Context) error { ran = true; return nil }).
		ValidIf(func(domain.AgentView) domain.Validity { return domain.ForceInvalid }).
		Build()
	require.NoError(t, err)

	require.NoError(t, p.Run(context.Background()))
	assert.True(t, ran)
	assert.Equal(t, domain.ForceInvalid, p.Override(nil))
}

func TestBuilder_Errors(t *testing.T) {
	_, err := Primitive("Bad").Effect("x", domain.SetTo, []string{"nope"}).Build()
	assert.ErrorIs(t, err, domain.ErrUnsupportedValue)

	// Errors surface through the enclosing composite.
	_, err = Sequence("Outer", Primitive("Bad").Require("x", domain.EqualTo, struct{}{})).Build()
	assert.ErrorIs(t, err, domain.ErrUnsupportedValue)
	assert.Contains(t, err.Error(), `"Outer"`)

	_, err = Selector("Holes", nil).Build()
	assert.Error(t, err)

	assert.Panics(t, func() { Selector("Holes", Use(nil)).MustBuild() })
}

func TestBuilder_UseSharesSubtree(t *testing.T) {
	shared, err := Primitive("Idle").Build()
	require.NoError(t, err)

	a := Selector("A", Use(shared)).MustBuild()
	b := Sequence("B", Use(shared)).MustBuild()

	assert.Same(t, shared, domain.Children(a)[0])
	assert.Same(t, shared, domain.Children(b)[0])
}
