package schema

import (
	"maps"
	"slices"

	"github.com/aretw0/htn/pkg/domain"
)

// Schema is a map of state keys to their expected types.
// Example: {"Energy": Int(), "Mood": Optional(Text())}
type Schema map[string]Type

// Keys returns the declared keys in sorted order.
func (s Schema) Keys() []string {
	return slices.Sorted(maps.Keys(s))
}

// Validate checks that state conforms to the schema, reporting every failure
// in key order. Keys the schema does not declare are ignored.
func Validate(schema Schema, state domain.State) error {
	if len(schema) == 0 {
		// No schema = no validation
		return nil
	}

	var errs []error
	for _, key := range schema.Keys() {
		typ := schema[key]
		value, exists := state[key]
		if !exists {
			if _, optional := typ.(*OptionalType); optional {
				continue
			}
			errs = append(errs, &ValidationError{Key: key, Reason: "required"})
			continue
		}

		if err := typ.Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Key:    key,
				Reason: err.Error(),
				Value:  value,
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
