// Package validator checks task trees for structural problems before planning.
package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/htn/pkg/domain"
)

// Severity grades an Issue.
type Severity string

const (
	// Error issues make the tree unusable: planning would panic or misbehave.
	Error Severity = "error"
	// Warning issues are legal but almost certainly mistakes.
	Warning Severity = "warning"
)

// Issue is one finding, located by the slash separated task path from the root.
type Issue struct {
	Severity Severity
	Path     string
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.Path, i.Message)
}

// ValidationError aggregates the error level issues of a tree.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	lines := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		lines[i] = issue.String()
	}
	return fmt.Sprintf("found %d errors:\n- %s", len(e.Issues), strings.Join(lines, "\n- "))
}

// Inspect walks the tree rooted at root and reports every issue found.
// Shared subtrees are inspected once; a task reachable from itself is a cycle.
func Inspect(root domain.Task) []Issue {
	w := &walker{
		onPath: make(map[domain.Task]bool),
		done:   make(map[domain.Task]bool),
	}
	w.walk(root, "")
	return w.issues
}

// Validate returns a *ValidationError when Inspect finds error level issues.
func Validate(root domain.Task) error {
	var errs []Issue
	for _, issue := range Inspect(root) {
		if issue.Severity == Error {
			errs = append(errs, issue)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Issues: errs}
}

type walker struct {
	onPath map[domain.Task]bool
	done   map[domain.Task]bool
	issues []Issue
}

func (w *walker) report(sev Severity, path, format string, args ...any) {
	w.issues = append(w.issues, Issue{Severity: sev, Path: path, Message: fmt.Sprintf(format, args...)})
}

func (w *walker) walk(t domain.Task, parent string) {
	if t == nil {
		w.report(Error, parent+"/<nil>", "nil task")
		return
	}
	b := t.Base()
	name := b.Name
	if name == "" {
		name = "<unnamed>"
	}
	path := parent + "/" + name

	if w.onPath[t] {
		w.report(Error, path, "task contains itself")
		return
	}
	if w.done[t] {
		return
	}
	w.onPath[t] = true
	defer func() {
		delete(w.onPath, t)
		w.done[t] = true
	}()

	if b.Name == "" {
		w.report(Warning, path, "task has no name")
	}
	for i, c := range b.Requirements {
		if c.Key == "" {
			w.report(Error, path, "requirement %d has no key", i)
		}
		if !c.Comparison.Valid() {
			w.report(Error, path, "requirement %d: unknown comparison %s", i, c.Comparison)
		}
	}

	switch t := t.(type) {
	case *domain.Primitive:
		for i, e := range t.Effects {
			if e.Key == "" {
				w.report(Error, path, "effect %d has no key", i)
			}
			if !e.Operation.Valid() {
				w.report(Error, path, "effect %d: unknown operation %s", i, e.Operation)
			}
		}
	case *domain.Selector:
		if len(t.Children) == 0 {
			w.report(Warning, path, "selector has no children and can never succeed")
		}
		w.children(t.Children, path)
	case *domain.Sequence:
		if len(t.Children) == 0 {
			w.report(Warning, path, "sequence has no children and always succeeds")
		}
		w.children(t.Children, path)
	default:
		w.report(Error, path, "unsupported task type %T", t)
	}
}

func (w *walker) children(children []domain.Task, path string) {
	seen := make(map[string]domain.Task, len(children))
	for _, c := range children {
		if c != nil {
			name := c.Base().Name
			if prev, ok := seen[name]; ok && prev != c && name != "" {
				w.report(Warning, path, "children share the name %q", name)
			}
			seen[name] = c
		}
		w.walk(c, path)
	}
}
