package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aretw0/htn/internal/cli"
	"github.com/aretw0/htn/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "htn",
	Short: "htn plans and runs hierarchical task networks",
	Long: `htn loads a task tree from a YAML or JSON document, finds the first
feasible plan for an agent's state and executes it step by step.

Stored agent state is encrypted when HTN_STATE_KEY holds a base64 AES-256 key;
HTN_STATE_KEYS_PREVIOUS lists comma separated keys from earlier rotations.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// Commands run under a context cancelled on SIGINT or SIGTERM.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	pf := rootCmd.PersistentFlags()
	pf.StringP("file", "f", ".", "Task tree document, or a directory containing htn.yaml")
	pf.String("actions", "", "Actions config (defaults to actions.yaml beside the document)")
	pf.String("store", ".htn/agents", "Directory holding persisted agent state")
	pf.String("redis", "", "Redis address for agent state and locks (replaces --store)")
	pf.String("log-level", "warn", "Log level: debug, info, warn or error")
	pf.Bool("debug", false, "Log every planning and execution event")
}

func options(cmd *cobra.Command) cli.Options {
	flags := cmd.Flags()
	document, _ := flags.GetString("file")
	actions, _ := flags.GetString("actions")
	store, _ := flags.GetString("store")
	redisAddr, _ := flags.GetString("redis")
	debug, _ := flags.GetBool("debug")
	opts := cli.Options{
		Document:  document,
		Actions:   actions,
		StoreDir:  store,
		RedisAddr: redisAddr,
		Debug:     debug,
		StateKey:  os.Getenv("HTN_STATE_KEY"),
	}
	if prev := os.Getenv("HTN_STATE_KEYS_PREVIOUS"); prev != "" {
		opts.PreviousKeys = strings.Split(prev, ",")
	}
	return opts
}

func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		return logging.New(slog.LevelDebug), nil
	}
	raw, _ := cmd.Flags().GetString("log-level")
	level, err := logging.ParseLevel(raw)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}
