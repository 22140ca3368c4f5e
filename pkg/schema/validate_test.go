package schema

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/htn/pkg/domain"
	"github.com/google/uuid"
)

func TestValidate_Success(t *testing.T) {
	schema := Schema{
		"Energy":   Int(),
		"Ratio":    Float(),
		"Health":   Number(),
		"Awake":    Bool(),
		"Mood":     Text(),
		"Cooldown": Duration(),
		"Home":     ID(),
		"Note":     Optional(Text()),
		"Target":   Optional(Int()),
	}

	state := domain.State{
		"Energy":   domain.Int(30),
		"Ratio":    domain.Float(0.5),
		"Health":   domain.Int(7),
		"Awake":    domain.Bool(true),
		"Mood":     domain.Text("calm"),
		"Cooldown": domain.Duration(5 * time.Second),
		"Home":     domain.ID(uuid.New()),
		"Target":   domain.Nil(),
		"Extra":    domain.Text("not declared"),
	}

	if err := Validate(schema, state); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_EmptySchema(t *testing.T) {
	if err := Validate(nil, domain.State{"x": domain.Int(1)}); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_Failures(t *testing.T) {
	schema := Schema{
		"Energy": Int(),
		"Mood":   Text(),
		"Health": Number(),
	}
	state := domain.State{
		"Energy": domain.Float(3.5),
		"Health": domain.Text("high"),
	}

	err := Validate(schema, state)
	if err == nil {
		t.Fatal("Validate() should return error")
	}

	errs := ValidationErrors(err)
	if len(errs) != 3 {
		t.Fatalf("Validate() = %d errors, want 3", len(errs))
	}

	want := []string{
		`state "Energy": expected int (got float 3.5)`,
		`state "Health": expected number (got text "high")`,
		`state "Mood": required`,
	}
	for i, w := range want {
		if errs[i].Error() != w {
			t.Errorf("error %d = %q, want %q", i, errs[i].Error(), w)
		}
	}

	var verr *ValidationError
	if !errors.As(errs[2], &verr) || verr.Key != "Mood" {
		t.Errorf("error 2 should be a *ValidationError for Mood, got %v", errs[2])
	}

	if !strings.HasPrefix(err.Error(), "3 validation errors:") {
		t.Errorf("unexpected aggregate message: %q", err.Error())
	}
}

func TestValidate_Custom(t *testing.T) {
	positive := Custom("positive", func(v domain.Value) error {
		if !v.IsNumeric() || v.Float() <= 0 {
			return errors.New("must be positive")
		}
		return nil
	})
	schema := Schema{"Energy": positive}

	if err := Validate(schema, domain.State{"Energy": domain.Int(5)}); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
	err := Validate(schema, domain.State{"Energy": domain.Int(-1)})
	if err == nil || !strings.Contains(err.Error(), "must be positive") {
		t.Errorf("Validate() error = %v, want must be positive", err)
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		name string
	}{
		{"int", "int"},
		{"float", "float"},
		{"number", "number"},
		{"bool", "bool"},
		{"text", "text"},
		{"string", "text"},
		{"duration", "duration"},
		{"ID", "id"},
		{" int? ", "int?"},
		{"text??", "text?"},
	}
	for _, tt := range tests {
		typ, err := ParseType(tt.in)
		if err != nil {
			t.Errorf("ParseType(%q) error = %v", tt.in, err)
			continue
		}
		if typ.Name() != tt.name {
			t.Errorf("ParseType(%q).Name() = %q, want %q", tt.in, typ.Name(), tt.name)
		}
	}

	if _, err := ParseType("[int]"); err == nil {
		t.Error("ParseType([int]) should fail")
	}
}

func TestParseTypeMap(t *testing.T) {
	s, err := ParseTypeMap(map[string]string{"Energy": "int", "Mood": "text?"})
	if err != nil {
		t.Fatalf("ParseTypeMap() error = %v", err)
	}
	if got := s.Keys(); len(got) != 2 || got[0] != "Energy" || got[1] != "Mood" {
		t.Errorf("Keys() = %v", got)
	}

	_, err = ParseTypeMap(map[string]string{"Energy": "integer"})
	if err == nil || !strings.Contains(err.Error(), "state Energy: unsupported type: integer") {
		t.Errorf("ParseTypeMap() error = %v", err)
	}
}

func TestSchema_JSON(t *testing.T) {
	s := Schema{"Energy": Int(), "Mood": Optional(Text())}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"Energy":"int","Mood":"text?"}` {
		t.Errorf("Marshal() = %s", data)
	}

	var back Schema
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if back["Mood"].Name() != "text?" {
		t.Errorf("Mood = %s, want text?", back["Mood"].Name())
	}

	if err := json.Unmarshal([]byte(`{"Energy": 5}`), &back); err == nil {
		t.Error("Unmarshal() should reject non-string type names")
	}
}
