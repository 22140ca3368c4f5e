package cli

import (
	"fmt"
	"strings"

	"github.com/aretw0/htn/pkg/domain"
	"gopkg.in/yaml.v3"
)

// ParseState builds a state from key=value pairs. Values are read as YAML
// scalars, so 30 is an integer, 1.5 a float, true a boolean and anything
// else text. Quoting forces text (Mood='30') and {duration: 5s} or
// {id: <uuid>} select the tagged kinds.
func ParseState(pairs []string) (domain.State, error) {
	state := make(domain.State, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid state entry %q, expected key=value", pair)
		}

		var x any
		if err := yaml.Unmarshal([]byte(raw), &x); err != nil {
			return nil, fmt.Errorf("state entry %q: %w", key, err)
		}
		v, err := domain.FromAny(x)
		if err != nil {
			return nil, fmt.Errorf("state entry %q: %w", key, err)
		}
		state[key] = v
	}
	return state, nil
}

// Merge overlays the entries of over onto a copy of base.
func Merge(base, over domain.State) domain.State {
	merged := base.Clone()
	for k, v := range over {
		merged[k] = v
	}
	return merged
}
