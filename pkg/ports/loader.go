package ports

import (
	"context"

	"github.com/aretw0/htn/pkg/domain"
	"github.com/aretw0/htn/pkg/schema"
)

// TreeLoader defines how task trees are retrieved from a document source.
type TreeLoader interface {
	// Load returns the root task and the initial state declared alongside it.
	Load(ctx context.Context) (domain.Task, domain.State, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying tree changes.
	// It abstracts away the specific event details, signaling only that a reload is required.
	Watch(ctx context.Context) (<-chan struct{}, error)
}

// SchemaSource is implemented by loaders whose documents declare a state schema.
type SchemaSource interface {
	// Schema returns the schema of the most recently loaded tree, nil when none is declared.
	Schema() schema.Schema
}
