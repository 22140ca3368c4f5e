package main

import (
	"fmt"

	"github.com/aretw0/htn/internal/cli"
	"github.com/aretw0/htn/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the task tree visualization",
	Long: `Outputs a Mermaid diagram (graph TD) of the task tree. With --plan the
tasks of the plan found for the initial state (plus --state overrides) are
highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		engine, err := cli.CreateEngine(ctx, options(cmd), logger)
		if err != nil {
			return err
		}
		root, initial := engine.Tree()

		var overlay *graph.Overlay
		if withPlan, _ := cmd.Flags().GetBool("plan"); withPlan {
			pairs, _ := cmd.Flags().GetStringArray("state")
			overrides, err := cli.ParseState(pairs)
			if err != nil {
				return err
			}
			plan, err := engine.FindPlan(ctx, cli.Merge(initial, overrides))
			if err != nil {
				return err
			}
			if plan != nil {
				overlay = &graph.Overlay{Planned: plan.Tasks, Current: -1}
			}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(root, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Bool("plan", false, "Highlight the planned tasks")
	graphCmd.Flags().StringArrayP("state", "s", nil, "State override as key=value (repeatable)")
}
