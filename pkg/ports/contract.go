package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/htn/pkg/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	agentID := "contract-test-agent-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.State{
			"Energy": domain.Int(42),
			"Ratio":  domain.Float(0.5),
			"Name":   domain.Text("farmer"),
			"Awake":  domain.Bool(true),
			"Nap":    domain.Duration(20 * time.Minute),
			"Home":   domain.ID(uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")),
		}

		err := store.Save(ctx, agentID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, agentID)
		require.NoError(t, err, "Load should not return error")
		// Value kinds must survive persistence.
		assert.Equal(t, state, loaded)
	})

	t.Run("Isolation", func(t *testing.T) {
		state := domain.State{"Energy": domain.Int(1)}
		require.NoError(t, store.Save(ctx, agentID, state))
		state["Energy"] = domain.Int(2)

		loaded, err := store.Load(ctx, agentID)
		require.NoError(t, err)
		assert.Equal(t, domain.Int(1), loaded["Energy"])

		loaded["Energy"] = domain.Int(3)
		again, err := store.Load(ctx, agentID)
		require.NoError(t, err)
		assert.Equal(t, domain.Int(1), again["Energy"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+agentID)
		assert.ErrorIs(t, err, domain.ErrAgentNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, agentID, domain.State{"x": domain.Int(1)})
		require.NoError(t, err)

		err = store.Delete(ctx, agentID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, agentID)
		assert.ErrorIs(t, err, domain.ErrAgentNotFound, "Load after Delete should return ErrAgentNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := agentID + "-1"
		id2 := agentID + "-2"
		_ = store.Save(ctx, id1, domain.State{})
		_ = store.Save(ctx, id2, domain.State{})

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		agents, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, agents, id1)
		assert.Contains(t, agents, id2)
	})
}
