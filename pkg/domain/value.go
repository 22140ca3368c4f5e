package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind identifies which member of the closed value union a Value holds.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindText
	KindDuration
	KindID
)

var kindNames = [...]string{
	KindNil:      "nil",
	KindBool:     "bool",
	KindInt:      "int",
	KindFloat:    "float",
	KindText:     "text",
	KindDuration: "duration",
	KindID:       "id",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is an immutable scalar stored in agent state.
// The zero Value is the absent (nil) value.
type Value struct {
	kind Kind
	b    bool
	i    int64 // int and duration payload
	f    float64
	s    string
	id   uuid.UUID
}

// Nil returns the absent value.
func Nil() Value { return Value{} }

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func Int(i int64) Value { return Value{kind: KindInt, i: i} }

func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

func Text(s string) Value { return Value{kind: KindText, s: s} }

func Duration(d time.Duration) Value { return Value{kind: KindDuration, i: int64(d)} }

// ID wraps an identifier value.
func ID(id uuid.UUID) Value { return Value{kind: KindID, id: id} }

func (v Value) Kind() Kind  { return v.kind }
func (v Value) IsNil() bool { return v.kind == KindNil }

// IsNumeric reports whether v is an int or a float.
func (v Value) IsNumeric() bool { return v.kind == KindInt || v.kind == KindFloat }

// Bool returns the payload of a bool value, false for any other kind.
func (v Value) Bool() bool { return v.kind == KindBool && v.b }

// Int returns the payload of an int value, 0 for any other kind.
func (v Value) Int() int64 {
	if v.kind != KindInt {
		return 0
	}
	return v.i
}

// Float returns numeric kinds as float64, 0 for any other kind.
func (v Value) Float() float64 { return v.float() }

func (v Value) Text() string { return v.s }

func (v Value) Duration() time.Duration {
	if v.kind != KindDuration {
		return 0
	}
	return time.Duration(v.i)
}

func (v Value) ID() uuid.UUID { return v.id }

// Equal reports whether v and other hold the same kind and payload.
// Use EqualTo.Compare for numeric equality across int and float.
func (v Value) Equal(other Value) bool { return v == other }

// float converts numeric kinds to float64. Non-numeric kinds yield 0.
func (v Value) float() float64 {
	switch v.kind {
	case KindInt:
		return float64(v.i)
	case KindFloat:
		return v.f
	}
	return 0
}

// Interface returns the native Go value held by v.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindText:
		return v.s
	case KindDuration:
		return time.Duration(v.i)
	case KindID:
		return v.id
	}
	return nil
}

func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "<nil>"
	case KindText:
		return strconv.Quote(v.s)
	case KindFloat:
		return formatFloat(v.f)
	}
	return fmt.Sprint(v.Interface())
}

// FromAny converts host data (Go literals, decoded YAML or JSON) into a Value.
// Maps of the form {"duration": "5s"} and {"id": "<uuid>"} produce the
// duration and identifier kinds.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Nil(), nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint8:
		return Int(int64(t)), nil
	case uint16:
		return Int(int64(t)), nil
	case uint32:
		return Int(int64(t)), nil
	case uint:
		if uint64(t) > math.MaxInt64 {
			return Nil(), fmt.Errorf("%w: %d overflows int64", ErrUnsupportedValue, t)
		}
		return Int(int64(t)), nil
	case uint64:
		if t > math.MaxInt64 {
			return Nil(), fmt.Errorf("%w: %d overflows int64", ErrUnsupportedValue, t)
		}
		return Int(int64(t)), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case string:
		return Text(t), nil
	case time.Duration:
		return Duration(t), nil
	case uuid.UUID:
		return ID(t), nil
	case json.Number:
		return fromNumber(string(t))
	case map[string]any:
		return fromTagged(t)
	}
	return Nil(), fmt.Errorf("%w: %T", ErrUnsupportedValue, x)
}

func fromNumber(lit string) (Value, error) {
	if !strings.ContainsAny(lit, ".eE") {
		if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return Int(i), nil
		}
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return Nil(), fmt.Errorf("%w: number %q", ErrUnsupportedValue, lit)
	}
	return Float(f), nil
}

func fromTagged(m map[string]any) (Value, error) {
	if len(m) != 1 {
		return Nil(), fmt.Errorf("%w: tagged value must have exactly one key", ErrUnsupportedValue)
	}
	if raw, ok := m["duration"]; ok {
		s, ok := raw.(string)
		if !ok {
			return Nil(), fmt.Errorf("%w: duration must be a string", ErrUnsupportedValue)
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return Nil(), fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
		}
		return Duration(d), nil
	}
	if raw, ok := m["id"]; ok {
		s, ok := raw.(string)
		if !ok {
			return Nil(), fmt.Errorf("%w: id must be a string", ErrUnsupportedValue)
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return Nil(), fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
		}
		return ID(id), nil
	}
	return Nil(), fmt.Errorf("%w: unknown value tag", ErrUnsupportedValue)
}

// MarshalJSON keeps the kind recoverable: floats always carry a fraction or
// exponent, durations and identifiers are tagged objects.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNil:
		return []byte("null"), nil
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return nil, fmt.Errorf("%w: %v cannot be encoded as JSON", ErrUnsupportedValue, v.f)
		}
		return []byte(formatFloat(v.f)), nil
	case KindDuration:
		return json.Marshal(map[string]string{"duration": time.Duration(v.i).String()})
	case KindID:
		return json.Marshal(map[string]string{"id": v.id.String()})
	}
	return json.Marshal(v.Interface())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") { // NaN, Inf
		s += ".0"
	}
	return s
}
