package schema

import (
	"fmt"
	"strings"

	"github.com/aretw0/htn/pkg/domain"
)

// Type defines the contract for state entry validation.
type Type interface {
	// Name returns the type as written in documents (e.g., "int", "text?").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(v domain.Value) error
}

// --- Built-in Type Implementations ---

// KindType accepts values of exactly one kind.
type KindType struct {
	kind domain.Kind
}

func (t *KindType) Name() string { return t.kind.String() }

func (t *KindType) Validate(v domain.Value) error {
	if v.Kind() != t.kind {
		return fmt.Errorf("expected %s", t.kind)
	}
	return nil
}

// NumberType accepts int and float values.
type NumberType struct{}

func (t *NumberType) Name() string { return "number" }

func (t *NumberType) Validate(v domain.Value) error {
	if !v.IsNumeric() {
		return fmt.Errorf("expected number")
	}
	return nil
}

// OptionalType also accepts nil.
type OptionalType struct {
	elemType Type
}

func (t *OptionalType) Name() string { return t.elemType.Name() + "?" }

func (t *OptionalType) Validate(v domain.Value) error {
	if v.IsNil() {
		return nil
	}
	return t.elemType.Validate(v)
}

// CustomType applies a user-defined validation function.
type CustomType struct {
	name     string
	validate func(domain.Value) error
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Validate(v domain.Value) error {
	return t.validate(v)
}

// --- Factory Functions ---

func Int() Type      { return &KindType{kind: domain.KindInt} }
func Float() Type    { return &KindType{kind: domain.KindFloat} }
func Bool() Type     { return &KindType{kind: domain.KindBool} }
func Text() Type     { return &KindType{kind: domain.KindText} }
func Duration() Type { return &KindType{kind: domain.KindDuration} }
func ID() Type       { return &KindType{kind: domain.KindID} }

// Number creates a validator accepting any numeric kind.
func Number() Type { return &NumberType{} }

// Optional wraps t so that absent and nil entries pass.
func Optional(t Type) Type {
	if _, ok := t.(*OptionalType); ok {
		return t
	}
	return &OptionalType{elemType: t}
}

// Custom creates a custom type validator with a user-defined function.
func Custom(name string, validate func(domain.Value) error) Type {
	return &CustomType{name: name, validate: validate}
}

// ParseType converts a type name to a Type.
// Supports "int", "float", "number", "bool", "text" (or "string"),
// "duration" and "id", each optionally suffixed with "?".
func ParseType(typeStr string) (Type, error) {
	typeStr = strings.TrimSpace(typeStr)
	if base, ok := strings.CutSuffix(typeStr, "?"); ok {
		t, err := ParseType(base)
		if err != nil {
			return nil, err
		}
		return Optional(t), nil
	}

	switch strings.ToLower(typeStr) {
	case "int":
		return Int(), nil
	case "float":
		return Float(), nil
	case "number":
		return Number(), nil
	case "bool":
		return Bool(), nil
	case "text", "string":
		return Text(), nil
	case "duration":
		return Duration(), nil
	case "id":
		return ID(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", typeStr)
	}
}

// ParseTypeMap converts a map of state keys to type names into a Schema.
// Example: {"Energy": "int", "Mood": "text?"}
func ParseTypeMap(typeMap map[string]string) (Schema, error) {
	result := make(Schema, len(typeMap))
	for key, typeStr := range typeMap {
		t, err := ParseType(typeStr)
		if err != nil {
			return nil, fmt.Errorf("state %s: %w", key, err)
		}
		result[key] = t
	}
	return result, nil
}
