package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComparison_Compare(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name string
		cmp  Comparison
		a, b Value
		want bool
	}{
		{"int equal", EqualTo, Int(3), Int(3), true},
		{"int equals float", EqualTo, Int(3), Float(3), true},
		{"nil equals nil", EqualTo, Nil(), Nil(), true},
		{"nil differs from value", EqualTo, Nil(), Int(0), false},
		{"nil not equal", NotEqualTo, Text("x"), Nil(), true},
		{"text equal", EqualTo, Text("hay"), Text("hay"), true},
		{"id equal", EqualTo, ID(id), ID(id), true},
		{"bool not equal", NotEqualTo, Bool(true), Bool(false), true},
		{"less", LessThan, Int(1), Int(2), true},
		{"greater mixed", GreaterThan, Float(2.5), Int(2), true},
		{"less or equal at bound", LessOrEqual, Int(2), Int(2), true},
		{"greater or equal below", GreaterOrEqual, Int(10), Int(30), false},
		{"duration order", LessThan, Duration(time.Second), Duration(time.Minute), true},
		{"text order", LessThan, Text("apple"), Text("banana"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cmp.Compare(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComparison_KindMismatch(t *testing.T) {
	_, err := GreaterOrEqual.Compare(Text("ten"), Int(10))
	assert.ErrorIs(t, err, ErrKindMismatch)

	_, err = EqualTo.Compare(Bool(true), Int(1))
	assert.ErrorIs(t, err, ErrKindMismatch)
}

func TestComparison_OrderingAgainstNil(t *testing.T) {
	for _, c := range []Comparison{LessThan, LessOrEqual, GreaterThan, GreaterOrEqual} {
		ok, err := c.Compare(Nil(), Int(1))
		require.NoError(t, err, c.String())
		assert.False(t, ok, c.String())

		ok, err = c.Compare(Text("a"), Nil())
		require.NoError(t, err, c.String())
		assert.False(t, ok, c.String())
	}
}

func TestParseComparison(t *testing.T) {
	for in, want := range map[string]Comparison{
		">=":             GreaterOrEqual,
		"greaterorequal": GreaterOrEqual,
		"!=":             NotEqualTo,
		" LessThan ":     LessThan,
	} {
		got, err := ParseComparison(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseComparison("=~")
	assert.ErrorIs(t, err, ErrUnknownComparison)
}
