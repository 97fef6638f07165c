package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/lightrest/rest"
)

var version = "0.1.0"

// NewRootCmd builds the full command tree. Every call returns fresh
// commands so flags never leak between executions.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "lightrest",
		Short:   "A thin REST client for the terminal",
		Version: version,
		Long: `LightRest sends one request per invocation through the rest package
and prints the response, optionally extracting a value or checking it
against a JSON schema. It also ships the sample games API and a small
benchmark comparing the client with plain net/http.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			// If no subcommand is provided, print help
			cmd.Help()
		},
	}

	for _, m := range rest.Methods() {
		root.AddCommand(newVerbCmd(m))
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newBenchCmd())
	return root
}

// Execute runs the command line. SIGINT and SIGTERM cancel the context
// commands run with, aborting any request in flight. The caller decides the
// exit code.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// normalizeURL adds http:// to scheme-less targets. With a base URL from a
// profile a relative target is kept as is so the client resolves it.
func normalizeURL(target string, hasBase bool) string {
	if strings.Contains(target, "://") {
		return target
	}
	if hasBase && !looksLikeHost(target) {
		return target
	}
	return "http://" + target
}

// looksLikeHost reports whether the first path segment names a host, such
// as "localhost:8080/x" or "api.example.com".
func looksLikeHost(target string) bool {
	if strings.HasPrefix(target, "/") || strings.HasPrefix(target, ".") {
		return false
	}
	host, _, _ := strings.Cut(target, "/")
	host, _, _ = strings.Cut(host, "?")
	return host == "localhost" || strings.HasPrefix(host, "localhost:") ||
		strings.Contains(host, ".") || strings.Contains(host, ":")
}

// parseHeaders splits "Key: Value" flags.
func parseHeaders(raw []string) ([][2]string, error) {
	var out [][2]string
	for _, h := range raw {
		key, value, ok := strings.Cut(h, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid header %q: use \"Key: Value\"", h)
		}
		out = append(out, [2]string{key, strings.TrimSpace(value)})
	}
	return out, nil
}
