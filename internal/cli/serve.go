package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/lightrest/internal/gamesapi"
)

func newServeCmd() *cobra.Command {
	var (
		addr      string
		todoDelay time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the sample games API",
		Long: `Run the sample games API used by the tests and the benchmark.

Routes:
  GET, POST                     /api/games
  GET, HEAD, PUT, PATCH, DELETE /api/games/{id}
  GET, POST, PUT, PATCH, DELETE /api/games/return-body
  GET                           /todos/{count}
  GET                           /metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
			server := gamesapi.New(gamesapi.WithLogger(logger), gamesapi.WithTodoDelay(todoDelay))

			fmt.Fprintf(cmd.OutOrStdout(), "Serving games API on %s\n", addr)
			return gamesapi.ListenAndServe(ctx, addr, server)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "Address to listen on")
	cmd.Flags().DurationVar(&todoDelay, "todo-delay", 0, "Artificial latency added to /todos responses")
	return cmd
}
