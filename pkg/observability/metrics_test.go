package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	htn "github.com/aretw0/htn"
	"github.com/aretw0/htn/pkg/domain"
	"github.com/aretw0/htn/pkg/dsl"
	"github.com/aretw0/htn/pkg/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func farmer(t *testing.T, hooks domain.LifecycleHooks, energy int) *htn.Agent {
	t.Helper()
	root := dsl.Selector("Farmer",
		dsl.Primitive("Farm").
			Require("Energy", domain.GreaterOrEqual, 30).
			Effect("Energy", domain.DecreaseBy, 25),
		dsl.Primitive("Fail").
			Require("Energy", domain.LessThan, 0).
			Do(func(context.Context) error { return errors.New("boom") }),
	).MustBuild()

	agent, err := htn.NewAgent(root,
		domain.MustState(map[string]any{"Energy": energy}),
		htn.WithName("bob"),
		htn.WithLifecycleHooks(hooks),
		htn.WithSensors(domain.Sensor{Key: "Hour", Read: func(context.Context) (domain.Value, error) {
			return domain.Int(6), nil
		}}),
	)
	require.NoError(t, err)
	return agent
}

func TestMetrics_Hooks(t *testing.T) {
	m, err := observability.NewMetrics()
	require.NoError(t, err)
	ctx := context.Background()

	agent := farmer(t, m.Hooks(), 100)
	plan, err := agent.FindPlan(ctx)
	require.NoError(t, err)
	require.NoError(t, plan.Execute(ctx))

	tired := farmer(t, m.Hooks(), 10)
	plan, err = tired.FindPlan(ctx)
	require.NoError(t, err)
	assert.Nil(t, plan)

	expected := `
# HELP htn_plans_total Total number of planning requests by result
# TYPE htn_plans_total counter
htn_plans_total{agent="bob",result="found"} 1
htn_plans_total{agent="bob",result="none"} 1
# HELP htn_sensor_reads_total Total number of sensor readings committed to agent state
# TYPE htn_sensor_reads_total counter
htn_sensor_reads_total{agent="bob",key="Hour"} 3
# HELP htn_tasks_total Total number of executed plan steps by outcome
# TYPE htn_tasks_total counter
htn_tasks_total{agent="bob",outcome="completed",task="Farm"} 1
htn_tasks_total{agent="bob",outcome="started",task="Farm"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"htn_plans_total", "htn_sensor_reads_total", "htn_tasks_total"))
	count, err := testutil.GatherAndCount(m.Registry(), "htn_plan_length_tasks")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetrics_TaskFailure(t *testing.T) {
	m, err := observability.NewMetrics()
	require.NoError(t, err)

	root := dsl.Sequence("Day", dsl.Primitive("Dig").Do(func(context.Context) error { return errors.New("rock") })).MustBuild()
	agent, err := htn.NewAgent(root, domain.State{}, htn.WithName("bob"), htn.WithLifecycleHooks(m.Hooks()))
	require.NoError(t, err)

	plan, err := agent.FindPlan(context.Background())
	require.NoError(t, err)
	require.Error(t, plan.Execute(context.Background()))

	expected := `
# HELP htn_tasks_total Total number of executed plan steps by outcome
# TYPE htn_tasks_total counter
htn_tasks_total{agent="bob",outcome="failed",task="Dig"} 1
htn_tasks_total{agent="bob",outcome="started",task="Dig"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "htn_tasks_total"))
}

func TestMetrics_Handler(t *testing.T) {
	m, err := observability.NewMetrics()
	require.NoError(t, err)
	agent := farmer(t, m.Hooks(), 100)
	_, err = agent.FindPlan(context.Background())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `htn_plans_total{agent="bob",result="found"} 1`)
}

func TestCombine(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var found []string
	counting := domain.LifecycleHooks{
		OnPlanFound: func(_ context.Context, e *domain.PlanEvent) { found = append(found, e.PlanID) },
	}

	agent := farmer(t, observability.Combine(observability.LoggingHooks(logger), counting, domain.LifecycleHooks{}), 100)
	plan, err := agent.FindPlan(context.Background())
	require.NoError(t, err)
	require.NoError(t, plan.Execute(context.Background()))

	assert.Equal(t, []string{plan.ID}, found)
	out := buf.String()
	assert.Contains(t, out, "msg=sensed")
	assert.Contains(t, out, `msg="plan found"`)
	assert.Contains(t, out, `msg="task completed"`)
}
