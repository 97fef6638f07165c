package cli

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/lightrest/internal/bench"
	"github.com/wesleyorama2/lightrest/internal/gamesapi"
	"github.com/wesleyorama2/lightrest/internal/output"
)

func newBenchCmd() *cobra.Command {
	var (
		cfg       bench.Config
		format    string
		noColor   bool
		todoDelay time.Duration
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Compare the rest client with plain net/http",
		Long: `Fetch a JSON list of todos repeatedly with plain net/http, with the
rest client deserializing into a typed slice and with the rest client
reading text, then print latency percentiles for each.

Without --url an in-process games API is started and /todos/10 is used.`,
		Example: `  lightrest bench -n 500 -c 8
  lightrest bench --url http://localhost:8080/todos/100 --rate 200 --client "rest typed"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := output.ParseFormat(format)
			if err != nil {
				return err
			}

			if cfg.URL == "" {
				url, shutdown, err := startLocalAPI(todoDelay)
				if err != nil {
					return err
				}
				defer shutdown()
				cfg.URL = url + "/todos/10"
			}

			report, err := bench.Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return report.Write(out, outFormat, output.SchemeFor(out, noColor))
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.URL, "url", "", "Endpoint returning a JSON array of todos")
	flags.IntVarP(&cfg.Iterations, "iterations", "n", 100, "Requests per client")
	flags.IntVarP(&cfg.Concurrency, "concurrency", "c", 1, "Concurrent workers per client")
	flags.Float64Var(&cfg.Rate, "rate", 0, "Requests per second per client (0 means unlimited)")
	flags.DurationVarP(&cfg.Timeout, "timeout", "t", 10*time.Second, "Per-request timeout")
	flags.StringSliceVar(&cfg.Clients, "client", nil,
		fmt.Sprintf("Clients to run: %q, %q or %q (default all)", bench.NetHTTP, bench.RestJSON, bench.RestText))
	flags.StringVarP(&format, "format", "f", "text", "Output format: text, json or yaml")
	flags.BoolVar(&noColor, "no-color", false, "Disable colored output")
	flags.DurationVar(&todoDelay, "todo-delay", 0, "Latency added by the in-process games API")

	return cmd
}

// startLocalAPI serves the games API on a random loopback port.
func startLocalAPI(todoDelay time.Duration) (string, func(), error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, errors.Wrap(err, "starting games API")
	}
	server := &http.Server{
		Handler:           gamesapi.New(gamesapi.WithTodoDelay(todoDelay)),
		ReadHeaderTimeout: 2 * time.Second,
	}
	go server.Serve(ln)
	return "http://" + ln.Addr().String(), func() { server.Close() }, nil
}
