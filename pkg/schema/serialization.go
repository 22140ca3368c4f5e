package schema

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON writes the schema as a map of state keys to type names.
func (s Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	names := make(map[string]string, len(s))
	for key, typ := range s {
		if typ == nil {
			return nil, fmt.Errorf("state %s: type is nil", key)
		}
		names[key] = typ.Name()
	}
	return json.Marshal(names)
}

// UnmarshalJSON reads a map of state keys to type names.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*s = nil
		return nil
	}

	names := make(map[string]string, len(raw))
	for key, v := range raw {
		name, ok := v.(string)
		if !ok {
			return fmt.Errorf("state %s: expected type name, got %T", key, v)
		}
		names[key] = name
	}
	parsed, err := ParseTypeMap(names)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
