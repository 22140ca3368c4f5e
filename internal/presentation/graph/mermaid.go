package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/htn/pkg/domain"
)

// Overlay highlights the primitives chosen by a plan.
type Overlay struct {
	Planned []*domain.Primitive
	// Current marks the step being executed, -1 for none.
	Current int
}

// GenerateMermaid produces a Mermaid flowchart of the task tree rooted at root.
// It applies semantic styling:
// - Selector: {{Hexagon}}
// - Sequence: [[Subroutine]]
// - Primitive: [Rectangle]
// Selector edges are dotted, sequence edges are numbered in execution order.
// Shared subtrees are drawn once.
func GenerateMermaid(root domain.Task, overlay *Overlay) string {
	g := &generator{ids: make(map[domain.Task]string)}
	g.sb.WriteString("graph TD\n")
	if root != nil {
		g.node(root)
	}

	if overlay != nil {
		g.sb.WriteString("\n    %% Overlay Styles\n")
		g.sb.WriteString("    classDef planned fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		g.sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		styled := make(map[string]bool)
		for i, p := range overlay.Planned {
			id, ok := g.ids[p]
			if !ok {
				continue
			}
			if i == overlay.Current {
				fmt.Fprintf(&g.sb, "    class %s current;\n", id)
				styled[id] = true
				continue
			}
			if !styled[id] {
				styled[id] = true
				fmt.Fprintf(&g.sb, "    class %s planned;\n", id)
			}
		}
	}
	return g.sb.String()
}

type generator struct {
	sb  strings.Builder
	ids map[domain.Task]string
}

func (g *generator) node(t domain.Task) string {
	if id, ok := g.ids[t]; ok {
		return id
	}
	id := fmt.Sprintf("t%d", len(g.ids))
	g.ids[t] = id

	opener, closer := "[", "]"
	var edge func(i int) string
	switch t.(type) {
	case *domain.Selector:
		opener, closer = "{{", "}}"
		edge = func(int) string { return "-.->" }
	case *domain.Sequence:
		opener, closer = "[[", "]]"
		edge = func(i int) string { return fmt.Sprintf("-- \"%d\" -->", i+1) }
	}
	fmt.Fprintf(&g.sb, "    %s%s\"%s\"%s\n", id, opener, label(t), closer)

	for i, child := range domain.Children(t) {
		if child == nil {
			continue
		}
		childID := g.node(child)
		fmt.Fprintf(&g.sb, "    %s %s %s\n", id, edge(i), childID)
	}
	return id
}

// label renders the name, requirements and effects of a task.
func label(t domain.Task) string {
	b := t.Base()
	lines := []string{escape(b.Name)}
	for _, c := range b.Requirements {
		prefix := "? "
		if c.BestEffort {
			prefix = "~ "
		}
		lines = append(lines, prefix+escape(c.String()))
	}
	if b.Override != nil {
		lines = append(lines, "? override")
	}
	if p, ok := t.(*domain.Primitive); ok {
		for _, e := range p.Effects {
			lines = append(lines, "! "+escape(e.String()))
		}
	}
	return strings.Join(lines, "<br/>")
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	s = strings.ReplaceAll(s, "<", "&lt;")
	return strings.ReplaceAll(s, ">", "&gt;")
}
