package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperation_Operate(t *testing.T) {
	tests := []struct {
		name string
		op   Operation
		a, b Value
		want Value
	}{
		{"set replaces kind", SetTo, Int(1), Text("x"), Text("x")},
		{"int add", IncreaseBy, Int(2), Int(3), Int(5)},
		{"mixed add promotes", IncreaseBy, Int(2), Float(0.5), Float(2.5)},
		{"text concat", IncreaseBy, Text("ab"), Text("cd"), Text("abcd")},
		{"duration add", IncreaseBy, Duration(time.Second), Duration(time.Minute), Duration(61 * time.Second)},
		{"int sub", DecreaseBy, Int(100), Int(30), Int(70)},
		{"int mul", MultiplyBy, Int(15), Int(2), Int(30)},
		{"duration scale", MultiplyBy, Duration(time.Second), Int(3), Duration(3 * time.Second)},
		{"int div truncates", DivideBy, Int(7), Int(2), Int(3)},
		{"float div", DivideBy, Float(7), Int(2), Float(3.5)},
		{"int mod", ModuloBy, Int(7), Int(3), Int(1)},
		{"float mod", ModuloBy, Float(7.5), Int(2), Float(1.5)},
		{"pow of ints is float", ExponentiateBy, Int(2), Int(3), Float(8)},
		{"pow fractional", ExponentiateBy, Int(9), Float(0.5), Float(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.op.Operate(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOperation_Errors(t *testing.T) {
	_, err := DivideBy.Operate(Int(1), Int(0))
	assert.ErrorIs(t, err, ErrDivisionByZero)

	_, err = ModuloBy.Operate(Float(1), Float(0))
	assert.ErrorIs(t, err, ErrDivisionByZero)

	_, err = IncreaseBy.Operate(Text("a"), Int(1))
	assert.ErrorIs(t, err, ErrKindMismatch)

	var ee *EvaluationError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "IncreaseBy", ee.Op)
	assert.Equal(t, KindText, ee.Left)
	assert.Equal(t, KindInt, ee.Right)

	_, err = ExponentiateBy.Operate(Bool(true), Int(2))
	assert.ErrorIs(t, err, ErrKindMismatch)

	_, err = Operation(42).Operate(Int(1), Int(1))
	assert.ErrorIs(t, err, ErrUnknownOperation)
}

func TestParseOperation(t *testing.T) {
	op, err := ParseOperation("increaseby")
	require.NoError(t, err)
	assert.Equal(t, IncreaseBy, op)

	op, err = ParseOperation("^=")
	require.NoError(t, err)
	assert.Equal(t, ExponentiateBy, op)
	assert.Equal(t, "^=", op.Symbol())

	_, err = ParseOperation("launch")
	assert.ErrorIs(t, err, ErrUnknownOperation)
}
