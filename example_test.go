package htn_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/htn"
	"github.com/aretw0/htn/pkg/domain"
	"github.com/aretw0/htn/pkg/dsl"
)

// ExampleAgent_FindPlan builds the farmer tree in code and plans over it.
func ExampleAgent_FindPlan() {
	farm := dsl.Primitive("Farm").
		Require("Energy", domain.GreaterOrEqual, 30).
		Effect("CropHealth", domain.IncreaseBy, 20).
		Effect("Energy", domain.DecreaseBy, 30)
	sleep := dsl.Primitive("Sleep").
		Effect("Energy", domain.IncreaseBy, 5)

	root := dsl.Selector("Farmer", dsl.Sequence("Work", farm, sleep)).MustBuild()

	agent, err := htn.NewAgent(root, domain.MustState(map[string]any{
		"Energy":     100,
		"CropHealth": 0,
	}))
	if err != nil {
		log.Fatal(err)
	}

	plan, err := agent.FindPlan(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(plan.Names())
	fmt.Println(plan.PredictedState["Energy"], plan.PredictedState["CropHealth"])
	// Output:
	// [Farm Sleep]
	// 75 20
}

// ExamplePlan_Execute applies a plan to live state.
func ExamplePlan_Execute() {
	chop := dsl.Primitive("Chop").
		Require("Wood", domain.LessThan, 3).
		Effect("Wood", domain.IncreaseBy, 1).
		Do(func(context.Context) error {
			fmt.Println("chopping")
			return nil
		})
	root := dsl.Sequence("Gather", chop, chop).MustBuild()

	agent, err := htn.NewAgent(root, domain.MustState(map[string]any{"Wood": 0}))
	if err != nil {
		log.Fatal(err)
	}

	plan, err := agent.FindPlan(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	if err := plan.Execute(context.Background()); err != nil {
		log.Fatal(err)
	}
	fmt.Println("wood:", agent.Get("Wood"))
	// Output:
	// chopping
	// chopping
	// wood: 2
}
