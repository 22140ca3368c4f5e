package mcp

import (
	"context"
	"testing"

	htn "github.com/aretw0/htn"
	"github.com/aretw0/htn/pkg/adapters/memory"
	"github.com/aretw0/htn/pkg/domain"
	"github.com/aretw0/htn/pkg/dsl"
	"github.com/aretw0/htn/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	root := dsl.Selector("Farmer",
		dsl.Primitive("Farm").
			Require("Energy", domain.GreaterOrEqual, 30).
			Effect("Energy", domain.DecreaseBy, 25),
		dsl.Primitive("Rest").
			Effect("Energy", domain.SetTo, 100),
	).MustBuild()
	eng, err := htn.NewEngine(context.Background(), memory.NewLoader(root, domain.MustState(map[string]any{"Energy": 100})))
	require.NoError(t, err)

	store := memory.NewStore()
	return NewServer(eng, session.NewManager(store), nil), store
}

func TestFindPlan(t *testing.T) {
	s, _ := newServer(t)
	ctx := context.Background()

	res, err := s.handleFindPlan(ctx, mcp.CallToolRequest{}, map[string]interface{}{})
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, []string{"Farm"}, res.Tasks)
	assert.EqualValues(t, 75, res.PredictedState["Energy"])

	res, err = s.handleFindPlan(ctx, mcp.CallToolRequest{}, map[string]interface{}{"state": `{"Energy": 10}`})
	require.NoError(t, err)
	assert.Equal(t, []string{"Rest"}, res.Tasks)

	_, err = s.handleFindPlan(ctx, mcp.CallToolRequest{}, map[string]interface{}{"state": `{`})
	assert.ErrorContains(t, err, "invalid state")

	_, err = s.handleFindPlan(ctx, mcp.CallToolRequest{}, map[string]interface{}{"state": `{"Energy": "x"}`})
	assert.ErrorContains(t, err, "planning failed")
}

func TestRunAgent(t *testing.T) {
	s, store := newServer(t)
	ctx := context.Background()

	res, err := s.handleRunAgent(ctx, mcp.CallToolRequest{}, map[string]interface{}{"agent_id": "bob"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Farm"}, res.Tasks)
	assert.EqualValues(t, 75, res.State["Energy"])

	saved, err := store.Load(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, domain.Int(75), saved.Get("Energy"))

	_, err = s.handleRunAgent(ctx, mcp.CallToolRequest{}, map[string]interface{}{})
	assert.Error(t, err)
}

func TestPlain(t *testing.T) {
	out := plain(domain.MustState(map[string]any{"Ratio": 1.0, "Name": "bob"}))
	assert.Equal(t, map[string]any{"Ratio": 1.0, "Name": "bob"}, out)
}

func TestTreeJSON(t *testing.T) {
	s, _ := newServer(t)
	data, err := s.treeJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name":"Farmer"`)
	assert.Contains(t, string(data), `"requires":["Energy \u003e= 30"]`)
	assert.Contains(t, string(data), `"schema":null`)
}
