package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffect_PredictState_IsPure(t *testing.T) {
	s := MustState(map[string]any{"Energy": 100})
	e := Set("Energy", DecreaseBy, 30)

	v, err := e.PredictState(s)
	require.NoError(t, err)
	assert.Equal(t, Int(70), v)
	assert.Equal(t, Int(100), s["Energy"])

	require.NoError(t, e.UpdateState(s))
	assert.Equal(t, Int(70), s["Energy"])
}

func TestEffect_MissingState(t *testing.T) {
	s := State{}

	_, err := Set("Gold", IncreaseBy, 1).PredictState(s)
	assert.ErrorIs(t, err, ErrMissingState)

	v, err := Set("Gold", SetTo, 1).PredictState(s)
	require.NoError(t, err)
	assert.Equal(t, Int(1), v)
}

func TestEffect_StateOperationOperand(t *testing.T) {
	s := MustState(map[string]any{"Energy": 10, "Bonus": 4})
	// Energy += (Bonus * 2)
	e := Effect{
		Key:       "Energy",
		Operation: IncreaseBy,
		Operand:   StateOperation{Key: "Bonus", Operation: MultiplyBy, Operand: Const(2)},
	}

	v, err := e.PredictState(s)
	require.NoError(t, err)
	assert.Equal(t, Int(18), v)
	assert.Equal(t, Int(4), s["Bonus"], "StateOperation must not write back")
}

func TestEffect_ProducerOperand(t *testing.T) {
	calls := 0
	e := Effect{Key: "Seed", Operation: SetTo, Operand: ProducerFunc(func() (Value, error) {
		calls++
		return Int(42), nil
	})}

	v, err := e.PredictState(State{})
	require.NoError(t, err)
	assert.Equal(t, Int(42), v)
	assert.Equal(t, 1, calls)
}
