package compiler

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/aretw0/htn/internal/dto"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ParseYAML decodes a YAML (or JSON) task tree document.
func ParseYAML(data []byte) (*dto.Document, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return Decode(raw)
}

// Decode maps a generic document tree onto dto.Document.
// Requirements and effects may be written as "key op operand" strings.
func Decode(raw map[string]any) (*dto.Document, error) {
	var doc dto.Document
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  shorthandHook,
		ErrorUnused: true,
		Result:      &doc,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return &doc, nil
}

var (
	conditionType = reflect.TypeOf(dto.ConditionMetadata{})
	effectType    = reflect.TypeOf(dto.EffectMetadata{})
)

func shorthandHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	switch to {
	case conditionType:
		return shorthand(data.(string), "cmp")
	case effectType:
		return shorthand(data.(string), "op")
	}
	return data, nil
}

// shorthand splits "Energy >= 30" into its parts. An operand starting with $
// refers to another state entry; anything else is read as a YAML scalar.
func shorthand(s, opField string) (map[string]any, error) {
	key, rest, ok := strings.Cut(strings.TrimSpace(s), " ")
	if !ok {
		return nil, fmt.Errorf("malformed expression %q", s)
	}
	sym, operand, _ := strings.Cut(strings.TrimSpace(rest), " ")
	operand = strings.TrimSpace(operand)

	out := map[string]any{"key": key, opField: sym}
	switch {
	case operand == "":
	case strings.HasPrefix(operand, "$"):
		out["ref"] = operand[1:]
	default:
		var v any
		if err := yaml.Unmarshal([]byte(operand), &v); err != nil {
			return nil, fmt.Errorf("operand of %q: %w", s, err)
		}
		out["value"] = v
	}
	return out, nil
}
