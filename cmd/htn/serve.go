package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/htn/internal/cli"
	httpAdapter "github.com/aretw0/htn/pkg/adapters/http"
	"github.com/aretw0/htn/pkg/observability"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves planning and agent runs as a JSON API over HTTP, with Prometheus
metrics on /metrics and state diffs streamed on /events. With --watch the task
tree is reloaded whenever the document changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		opts := options(cmd)
		port, _ := cmd.Flags().GetString("port")

		metrics, err := observability.NewMetrics()
		if err != nil {
			return err
		}
		engine, err := cli.CreateEngine(ctx, opts, logger, metrics.Hooks())
		if err != nil {
			return err
		}
		sessions, closeFn, err := cli.CreateSessions(opts, logger)
		if err != nil {
			return err
		}
		defer closeFn()

		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			reloads, err := engine.Watch(ctx)
			if err != nil {
				return err
			}
			go func() {
				for err := range reloads {
					if err != nil {
						logger.Error("reload failed, keeping previous tree", "err", err)
						continue
					}
					logger.Info("task tree reloaded")
				}
			}()
		}

		srv := &http.Server{
			Addr: ":" + port,
			Handler: httpAdapter.NewHandler(engine, sessions,
				httpAdapter.WithMetrics(metrics.Handler()),
				httpAdapter.WithLogger(logger),
			),
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting htn server", "addr", srv.Addr, "document", opts.Document)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			logger.Info("shutting down")

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("graceful shutdown did not complete", "timeout", 5*time.Second, "err", err)
				if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			logger.Info("htn server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().Bool("watch", false, "Reload the task tree when the document changes")
}
