package ports

import (
	"context"

	"github.com/aretw0/htn/pkg/domain"
)

// StateStore defines the interface for persisting agent live state.
// This lets an agent stop and later resume with the state it had reached.
type StateStore interface {
	// Save persists the state for a given agent ID.
	Save(ctx context.Context, agentID string, state domain.State) error

	// Load retrieves the state for a given agent ID.
	// Returns domain.ErrAgentNotFound if the agent does not exist.
	Load(ctx context.Context, agentID string) (domain.State, error)

	// Delete removes the state for a given agent ID.
	Delete(ctx context.Context, agentID string) error

	// List returns the IDs of all stored agents.
	List(ctx context.Context) ([]string, error)
}
