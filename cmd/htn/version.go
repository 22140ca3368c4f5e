package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/htn"
	"github.com/aretw0/htn/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of htn",
	Run: func(cmd *cobra.Command, args []string) {
		version := strings.TrimSpace(htn.Version)
		if tui.IsTerminal(os.Stdout) {
			tui.PrintBanner(cmd.OutOrStdout(), version)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "htn version %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
