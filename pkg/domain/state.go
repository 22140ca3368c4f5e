package domain

import (
	"maps"
	"slices"
)

// State maps state keys to values.
// Snapshots handed to the planner are always independent copies.
type State map[string]Value

// Get returns the value for key, or nil when absent. Safe on a nil State.
func (s State) Get(key string) Value {
	return s[key]
}

// Clone returns a full independent copy of s.
func (s State) Clone() State {
	out := make(State, len(s))
	maps.Copy(out, s)
	return out
}

// Keys returns the state keys in sorted order.
func (s State) Keys() []string {
	return slices.Sorted(maps.Keys(s))
}

// Equal reports whether both states hold the same keys with identical values.
func (s State) Equal(other State) bool {
	return maps.Equal(s, other)
}

// Native converts the state into plain Go values.
func (s State) Native() map[string]any {
	out := make(map[string]any, len(s))
	for k, v := range s {
		out[k] = v.Interface()
	}
	return out
}

// StateFrom converts host data into a State.
func StateFrom(m map[string]any) (State, error) {
	out := make(State, len(m))
	for k, raw := range m {
		v, err := FromAny(raw)
		if err != nil {
			return nil, withKey(err, k)
		}
		out[k] = v
	}
	return out, nil
}

// MustState is StateFrom for literals known to be valid. It panics on error.
func MustState(m map[string]any) State {
	s, err := StateFrom(m)
	if err != nil {
		panic(err)
	}
	return s
}
