package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/htn"
	"github.com/aretw0/htn/internal/cli"
	"github.com/aretw0/htn/internal/presentation/tui"
	httpAdapter "github.com/aretw0/htn/pkg/adapters/http"
	"github.com/aretw0/htn/pkg/domain"
	"github.com/spf13/cobra"
)

var errNoPlan = errors.New("no feasible plan")

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Find a plan without executing it",
	Long: `Resolves the task tree against a state and prints the plan together with
the changes it is predicted to make. The state starts from the document's
initial state, or from a stored agent with --agent, and --state entries
override individual keys.`,
	Example: `  htn plan -f farmer.yaml --state Energy=20
  htn plan --agent farmer --json`,
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

		state, err := planState(cmd, opts, engine, logger)
		if err != nil {
			return err
		}

		plan, err := engine.FindPlan(ctx, state)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(httpAdapter.NewPlanResponse(plan)); err != nil {
				return err
			}
		} else if plan != nil {
			if err := printMarkdown(cmd.OutOrStdout(), tui.PlanMarkdown(plan)); err != nil {
				return err
			}
		}
		if plan == nil {
			return errNoPlan
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().StringArrayP("state", "s", nil, "State override as key=value (repeatable)")
	planCmd.Flags().String("agent", "", "Plan from the stored state of this agent")
	planCmd.Flags().Bool("json", false, "Print the plan as JSON")
}

func planState(cmd *cobra.Command, opts cli.Options, engine *htn.Engine, logger *slog.Logger) (domain.State, error) {
	pairs, _ := cmd.Flags().GetStringArray("state")
	overrides, err := cli.ParseState(pairs)
	if err != nil {
		return nil, err
	}

	_, base := engine.Tree()
	if agentID, _ := cmd.Flags().GetString("agent"); agentID != "" {
		sessions, closeFn, err := cli.CreateSessions(opts, logger)
		if err != nil {
			return nil, err
		}
		defer closeFn()

		base, err = sessions.Load(cmd.Context(), agentID)
		if err != nil {
			return nil, fmt.Errorf("agent %s: %w", agentID, err)
		}
	}
	return cli.Merge(base, overrides), nil
}

// printMarkdown renders md for the terminal when stdout is one, and prints
// the raw markdown otherwise.
func printMarkdown(w io.Writer, md string) error {
	if w != io.Writer(os.Stdout) || !tui.IsTerminal(os.Stdout) {
		_, err := fmt.Fprint(w, md)
		return err
	}
	render, err := tui.NewRenderer(tui.Width(os.Stdout))
	if err != nil {
		return err
	}
	out, err := render(md)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, out)
	return err
}
