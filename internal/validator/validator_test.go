package validator

import (
	"testing"

	"github.com/aretw0/htn/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func farmer() domain.Task {
	farm := &domain.Primitive{
		TaskBase: domain.TaskBase{
			Name:         "Farm",
			Requirements: []domain.Condition{domain.Require("Energy", domain.GreaterOrEqual, 30)},
		},
		Effects: []domain.Effect{domain.Set("CropHealth", domain.IncreaseBy, 20)},
	}
	rest := &domain.Primitive{TaskBase: domain.TaskBase{Name: "Rest"}}
	return &domain.Selector{
		TaskBase: domain.TaskBase{Name: "Farmer"},
		Children: []domain.Task{
			&domain.Sequence{TaskBase: domain.TaskBase{Name: "Work"}, Children: []domain.Task{farm, rest}},
			rest,
		},
	}
}

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, Validate(farmer()))
	assert.Empty(t, Inspect(farmer()))
}

func TestValidate_Cycle(t *testing.T) {
	loop := &domain.Sequence{TaskBase: domain.TaskBase{Name: "Loop"}}
	loop.Children = []domain.Task{&domain.Primitive{TaskBase: domain.TaskBase{Name: "Step"}}, loop}

	err := Validate(loop)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Issues, 1)
	assert.Equal(t, "/Loop/Loop", verr.Issues[0].Path)
	assert.Contains(t, err.Error(), "task contains itself")
}

func TestValidate_Errors(t *testing.T) {
	bad := &domain.Primitive{
		TaskBase: domain.TaskBase{
			Name:         "Bad",
			Requirements: []domain.Condition{{Comparison: domain.Comparison(42)}},
		},
		Effects: []domain.Effect{{Key: "A", Operation: domain.Operation(9)}},
	}
	root := &domain.Selector{TaskBase: domain.TaskBase{Name: "Root"}, Children: []domain.Task{bad, nil}}

	issues := Inspect(root)
	assert.Equal(t, []Issue{
		{Severity: Error, Path: "/Root/Bad", Message: "requirement 0 has no key"},
		{Severity: Error, Path: "/Root/Bad", Message: "requirement 0: unknown comparison Comparison(42)"},
		{Severity: Error, Path: "/Root/Bad", Message: "effect 0: unknown operation Operation(9)"},
		{Severity: Error, Path: "/Root/<nil>", Message: "nil task"},
	}, issues)
}

type custom struct{ domain.TaskBase }

func TestValidate_UnsupportedType(t *testing.T) {
	err := Validate(&custom{TaskBase: domain.TaskBase{Name: "Odd"}})
	assert.ErrorContains(t, err, "unsupported task type *validator.custom")
}

func TestInspect_Warnings(t *testing.T) {
	a1 := &domain.Primitive{TaskBase: domain.TaskBase{Name: "A"}}
	a2 := &domain.Primitive{TaskBase: domain.TaskBase{Name: "A"}}
	root := &domain.Sequence{
		TaskBase: domain.TaskBase{Name: "Root"},
		Children: []domain.Task{
			a1, a2,
			&domain.Selector{TaskBase: domain.TaskBase{Name: "Never"}},
			&domain.Sequence{},
		},
	}

	issues := Inspect(root)
	assert.Equal(t, []Issue{
		{Severity: Warning, Path: "/Root", Message: `children share the name "A"`},
		{Severity: Warning, Path: "/Root/Never", Message: "selector has no children and can never succeed"},
		{Severity: Warning, Path: "/Root/<unnamed>", Message: "task has no name"},
		{Severity: Warning, Path: "/Root/<unnamed>", Message: "sequence has no children and always succeeds"},
	}, issues)
	assert.NoError(t, Validate(root))
}
