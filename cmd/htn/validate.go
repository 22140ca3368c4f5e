package main

import (
	"fmt"

	"github.com/aretw0/htn/internal/cli"
	"github.com/aretw0/htn/internal/validator"
	"github.com/aretw0/htn/pkg/adapters/file"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the task tree for consistency",
	Long: `Compiles the document and inspects the resulting tree. Errors (cycles,
unknown operators, unregistered actions) fail the command; warnings such as
empty selectors are reported but tolerated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := options(cmd)
		document, err := cli.ResolveDocument(opts.Document)
		if err != nil {
			return err
		}
		reg, err := cli.Actions(opts, document)
		if err != nil {
			return err
		}

		root, _, err := file.NewLoader(document, file.WithActions(reg)).Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		out := cmd.OutOrStdout()
		errs := 0
		for _, issue := range validator.Inspect(root) {
			fmt.Fprintln(out, issue)
			if issue.Severity == validator.Error {
				errs++
			}
		}
		if errs > 0 {
			return fmt.Errorf("validation failed: %d errors", errs)
		}
		fmt.Fprintf(out, "%s is valid! ✅\n", document)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
