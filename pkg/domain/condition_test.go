package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCondition_IsMet(t *testing.T) {
	s := MustState(map[string]any{"Energy": 40, "Max": 50})

	ok, err := Require("Energy", GreaterOrEqual, 30).IsMet(s)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Condition{Key: "Energy", Comparison: LessThan, Target: StateRef{Key: "Max"}}.IsMet(s)
	require.NoError(t, err)
	assert.True(t, ok)

	// Absent keys read as nil.
	ok, err = Require("Missing", EqualTo, nil).IsMet(s)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = Require("Energy", EqualTo, "full").IsMet(s)
	var ee *EvaluationError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "Energy", ee.Key)
}

func TestCondition_IsMetOrCloser(t *testing.T) {
	c := Condition{Key: "Energy", Comparison: GreaterOrEqual, Target: Const(80), BestEffort: true}
	prev := MustState(map[string]any{"Energy": 50})

	ok, err := c.IsMet(MustState(map[string]any{"Energy": 60}))
	require.NoError(t, err)
	assert.False(t, ok, "raw comparator does not hold")

	ok, err = c.IsMetOrCloser(MustState(map[string]any{"Energy": 60}), prev)
	require.NoError(t, err)
	assert.True(t, ok, "60 is closer to 80 than 50")

	ok, err = c.IsMetOrCloser(MustState(map[string]any{"Energy": 40}), prev)
	require.NoError(t, err)
	assert.False(t, ok)

	c.BestEffort = false
	ok, err = c.IsMetOrCloser(MustState(map[string]any{"Energy": 60}), prev)
	require.NoError(t, err)
	assert.False(t, ok, "without best effort it equals IsMet")
}

func TestCondition_IsMetOrCloser_Comparators(t *testing.T) {
	tests := []struct {
		cmp       Comparison
		target    int
		prev, cur int
		want      bool
	}{
		{EqualTo, 10, 4, 7, true},
		{EqualTo, 10, 7, 4, false},
		{EqualTo, 10, 3, 10, true},
		{NotEqualTo, 10, 10, 10, false},
		{NotEqualTo, 10, 10, 12, true},
		{LessThan, 0, 9, 5, true},
		{LessThan, 0, 5, 9, false},
		{LessOrEqual, 5, 9, 5, true},
		{GreaterThan, 10, 9, 9, false},
		{GreaterThan, 10, 2, 9, true},
	}
	for _, tt := range tests {
		c := Condition{Key: "x", Comparison: tt.cmp, Target: Const(tt.target), BestEffort: true}
		got, err := c.IsMetOrCloser(MustState(map[string]any{"x": tt.cur}), MustState(map[string]any{"x": tt.prev}))
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s target=%d prev=%d cur=%d", tt.cmp, tt.target, tt.prev, tt.cur)
	}
}

func TestCondition_IsMetOrCloser_NonNumeric(t *testing.T) {
	c := Condition{Key: "Mood", Comparison: EqualTo, Target: Const("happy"), BestEffort: true}
	_, err := c.IsMetOrCloser(MustState(map[string]any{"Mood": "sad"}), MustState(map[string]any{"Mood": "sad"}))
	assert.ErrorIs(t, err, ErrKindMismatch)
}

func TestCondition_DistanceTo(t *testing.T) {
	c := Require("Energy", GreaterOrEqual, 30)

	d, err := c.DistanceTo(MustState(map[string]any{"Energy": 40}))
	require.NoError(t, err)
	assert.Equal(t, 0.0, d)

	d, err = c.DistanceTo(MustState(map[string]any{"Energy": 10}))
	require.NoError(t, err)
	assert.Equal(t, 2.0, d)

	c.Distance = func(cur, target Value) float64 { return target.Float() - cur.Float() }
	d, err = c.DistanceTo(MustState(map[string]any{"Energy": 10}))
	require.NoError(t, err)
	assert.Equal(t, 20.0, d)
}
