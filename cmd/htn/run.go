package main

import (
	"fmt"

	"github.com/aretw0/htn"
	"github.com/aretw0/htn/internal/cli"
	"github.com/aretw0/htn/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Find a plan and execute it",
	Long: `Plans like 'htn plan' and then executes each step, re-validating it against
live state first. Execution stops at the first invalid or failing step; effects
of completed steps are kept.

With --agent the agent's state is restored from the store before planning and
persisted afterwards, even when execution stops early. Without it the run
starts from the document's initial state and nothing is saved.`,
	Example: `  htn run --agent farmer
  htn run --agent farmer --state Energy=10 --redis localhost:6379`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		opts := options(cmd)

		engine, err := cli.CreateEngine(ctx, opts, logger)
		if err != nil {
			return err
		}

		pairs, _ := cmd.Flags().GetStringArray("state")
		overrides, err := cli.ParseState(pairs)
		if err != nil {
			return err
		}

		agentID, _ := cmd.Flags().GetString("agent")
		var (
			agent  *htn.Agent
			plan   *htn.Plan
			runErr error
		)
		if agentID == "" {
			_, initial := engine.Tree()
			agent, err = engine.NewAgent(cli.Merge(initial, overrides))
			if err != nil {
				return err
			}
			plan, err = agent.FindPlan(ctx)
			if err != nil {
				return err
			}
			if plan != nil {
				runErr = plan.Execute(ctx)
			}
		} else {
			sessions, closeFn, err := cli.CreateSessions(opts, logger)
			if err != nil {
				return err
			}
			defer closeFn()

			agent, err = engine.NewAgent(nil, htn.WithID(agentID), htn.WithName(agentID))
			if err != nil {
				return err
			}
			if len(overrides) > 0 {
				if err := sessions.Restore(ctx, agent); err != nil {
					return err
				}
				agent.Replace(cli.Merge(agent.Snapshot(), overrides))
				if err := sessions.Persist(ctx, agent); err != nil {
					return err
				}
			}
			plan, runErr = sessions.Run(ctx, agent)
			if plan == nil && runErr != nil {
				return runErr
			}
		}

		if plan == nil {
			return errNoPlan
		}
		if err := printMarkdown(cmd.OutOrStdout(), tui.PlanMarkdown(plan)+"\n"+tui.RunMarkdown(plan, agent.Snapshot(), runErr)); err != nil {
			return err
		}
		if runErr != nil {
			return fmt.Errorf("execution stopped: %w", runErr)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringArrayP("state", "s", nil, "State override as key=value (repeatable)")
	runCmd.Flags().String("agent", "", "Restore, run and persist this stored agent")
}
