package domain

// TaskInfo is a serializable outline of a task tree, for inspection tools.
type TaskInfo struct {
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Requires   []string   `json:"requires,omitempty"`
	Overridden bool       `json:"overridden,omitempty"`
	Effects    []string   `json:"effects,omitempty"`
	Executable bool       `json:"executable,omitempty"`
	Children   []TaskInfo `json:"children,omitempty"`
}

// Describe outlines the tree rooted at t. Shared subtrees appear once per
// reference. The tree must be acyclic.
func Describe(t Task) TaskInfo {
	b := t.Base()
	info := TaskInfo{Name: b.Name, Type: TypeOf(t), Overridden: b.Override != nil}
	for _, c := range b.Requirements {
		info.Requires = append(info.Requires, c.String())
	}
	if p, ok := t.(*Primitive); ok {
		for _, e := range p.Effects {
			info.Effects = append(info.Effects, e.String())
		}
		info.Executable = p.Execute != nil
	}
	for _, child := range Children(t) {
		if child != nil {
			info.Children = append(info.Children, Describe(child))
		}
	}
	return info
}
