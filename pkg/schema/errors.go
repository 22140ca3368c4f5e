package schema

import (
	"errors"
	"fmt"

	"github.com/aretw0/htn/pkg/domain"
)

// ValidationError represents a single entry validation failure.
type ValidationError struct {
	Key    string       // State key
	Reason string       // Human-readable reason for failure
	Value  domain.Value // The value that failed validation
}

func (e *ValidationError) Error() string {
	if e.Value.IsNil() {
		return fmt.Sprintf("state %q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("state %q: %s (got %s %s)", e.Key, e.Reason, e.Value.Kind(), e.Value)
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// ValidationErrors returns all validation errors if err is or wraps an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
