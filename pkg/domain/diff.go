package domain

// StateDiff lists the entries that changed between two states.
// It is serialized to JSON when reporting predicted outcomes.
type StateDiff struct {
	// Changed contains added or modified keys with their new value.
	Changed State `json:"changed,omitempty"`

	// Removed lists keys present in the old state only.
	Removed []string `json:"removed,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// A nil oldState yields every entry of newState as changed.
func Diff(oldState, newState State) StateDiff {
	var diff StateDiff
	for _, k := range newState.Keys() {
		newVal := newState[k]
		if oldVal, exists := oldState[k]; exists && oldVal == newVal {
			continue
		}
		if diff.Changed == nil {
			diff.Changed = make(State)
		}
		diff.Changed[k] = newVal
	}
	for _, k := range oldState.Keys() {
		if _, exists := newState[k]; !exists {
			diff.Removed = append(diff.Removed, k)
		}
	}
	return diff
}

// IsEmpty checks if the diff contains any change.
func (d StateDiff) IsEmpty() bool {
	return len(d.Changed) == 0 && len(d.Removed) == 0
}
