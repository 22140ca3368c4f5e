package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type view struct{ State }

func (view) Name() string { return "test" }

func TestPrimitive_PredictStates_FoldsInOrder(t *testing.T) {
	p := &Primitive{
		TaskBase: TaskBase{Name: "Train"},
		Effects: []Effect{
			Set("Energy", IncreaseBy, 10),
			Set("Energy", MultiplyBy, 2),
		},
	}
	s := MustState(map[string]any{"Energy": 5})

	next, err := p.PredictStates(s)
	require.NoError(t, err)
	assert.Equal(t, Int(30), next["Energy"])
	assert.Equal(t, Int(5), s["Energy"], "input snapshot untouched")
}

func TestPrimitive_Run(t *testing.T) {
	assert.NoError(t, (&Primitive{}).Run(context.Background()), "nil capability succeeds")

	boom := errors.New("boom")
	p := &Primitive{Execute: func(context.Context) error { return boom }}
	assert.ErrorIs(t, p.Run(context.Background()), boom)
}

func TestIsTaskValid(t *testing.T) {
	s := MustState(map[string]any{"Energy": 10})
	task := &Primitive{TaskBase: TaskBase{
		Name:         "Farm",
		Requirements: []Condition{Require("Energy", GreaterOrEqual, 30)},
	}}

	ok, err := IsTaskValid(view{s}, task, s)
	require.NoError(t, err)
	assert.False(t, ok)

	task.Override = func(AgentView) Validity { return ForceValid }
	ok, err = IsTaskValid(view{s}, task, s)
	require.NoError(t, err)
	assert.True(t, ok, "override is authoritative")

	task.Override = func(AgentView) Validity { return Defer }
	ok, err = IsTaskValid(view{s}, task, s)
	require.NoError(t, err)
	assert.False(t, ok)

	task.Requirements = nil
	task.Override = func(a AgentView) Validity {
		if a.Get("Energy").Int() < 50 {
			return ForceInvalid
		}
		return Defer
	}
	ok, err = IsTaskValid(view{s}, task, s)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTypeOfAndChildren(t *testing.T) {
	leaf := &Primitive{TaskBase: TaskBase{Name: "leaf"}}
	sel := &Selector{TaskBase: TaskBase{Name: "sel"}, Children: []Task{leaf}}
	seq := &Sequence{TaskBase: TaskBase{Name: "seq"}, Children: []Task{sel}}

	assert.Equal(t, "primitive", TypeOf(leaf))
	assert.Equal(t, "selector", TypeOf(sel))
	assert.Equal(t, "sequence", TypeOf(seq))
	assert.Nil(t, Children(leaf))
	assert.Equal(t, []Task{sel}, Children(seq))
	assert.Equal(t, "seq", seq.Base().Name)
}
