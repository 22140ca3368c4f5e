package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	httpAdapter "github.com/aretw0/htn/pkg/adapters/http"
	"github.com/aretw0/htn/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var farm = filepath.Join("..", "..", "internal", "cli", "testdata", "farm")

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestPlanCommand(t *testing.T) {
	out, err := execute(t, "plan", "-f", farm, "--json", "--state", "Energy=80")
	require.NoError(t, err)

	var resp httpAdapter.PlanResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Found)
	assert.Equal(t, []string{"Farm", "Eat"}, resp.Tasks)
	assert.Equal(t, domain.Int(60), resp.PredictedState["Energy"])
	assert.Equal(t, domain.Int(20), resp.PredictedState["CropHealth"])
}

func TestPlanCommand_Markdown(t *testing.T) {
	out, err := execute(t, "plan", "-f", farm, "--json=false", "--state", "Energy=10")
	require.NoError(t, err)
	assert.Contains(t, out, "| 1 | Rest | `Energy = 100` |")
}

func TestPlanCommand_BadState(t *testing.T) {
	_, err := execute(t, "plan", "-f", farm, "--state", "Energy")
	assert.ErrorContains(t, err, "expected key=value")
}

func TestRunCommand_PersistsAgent(t *testing.T) {
	store := t.TempDir()

	out, err := execute(t, "run", "-f", farm, "--store", store, "--agent", "bob", "--state", "Energy=50")
	require.NoError(t, err)
	assert.Contains(t, out, "All 2 steps completed.")
	assert.Contains(t, out, "| Energy | `30` |")

	out, err = execute(t, "plan", "-f", farm, "--store", store, "--agent", "bob", "--json", "--state", "Energy=50")
	require.NoError(t, err)
	var resp httpAdapter.PlanResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, domain.Int(40), resp.PredictedState["CropHealth"])
}

func TestGraphCommand(t *testing.T) {
	out, err := execute(t, "graph", "-f", farm, "--plan")
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "classDef planned")
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate", "-f", farm)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid!")
}
