package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aretw0/htn/internal/cli"
	"github.com/aretw0/htn/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts htn as an MCP Server, so AI agents can plan over the task tree and
run stored agents as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Logs go to stderr so they never corrupt JSON-RPC on stdout.
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		opts := options(cmd)
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		engine, err := cli.CreateEngine(ctx, opts, logger)
		if err != nil {
			return err
		}
		sessions, closeFn, err := cli.CreateSessions(opts, logger)
		if err != nil {
			return err
		}
		defer closeFn()

		srv := mcp.NewServer(engine, sessions, logger)

		switch transport {
		case "stdio":
			logger.Info("starting htn MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			logger.Info("starting htn MCP server (sse)", "port", port)
			if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("MCP server stopped gracefully")
			return nil
		}
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
