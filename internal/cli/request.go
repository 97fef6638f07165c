package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/lightrest/internal/config"
	"github.com/wesleyorama2/lightrest/internal/output"
	"github.com/wesleyorama2/lightrest/rest"
)

// requestFlags holds the flags shared by every verb command.
type requestFlags struct {
	headers       []string
	data          string
	jsonBody      string
	form          []string
	as            string
	extract       string
	schema        string
	ensureSuccess bool
	timeout       time.Duration
	maxBuffer     string
	profile       string
	env           string
	h2c           bool
	noColor       bool
	verbose       bool
	format        string
}

// newVerbCmd creates the command sending one request with method m.
func newVerbCmd(m rest.Method) *cobra.Command {
	f := &requestFlags{}
	name := strings.ToLower(string(m))

	cmd := &cobra.Command{
		Use:   name + " [url]",
		Short: fmt.Sprintf("Send a %s request", m),
		Long: fmt.Sprintf(`Send a %s request and print the response.

A relative URL is resolved against the base URL of the selected profile
environment. Without a profile, URLs lacking a scheme get http://.`, m),
		Example: fmt.Sprintf(`  lightrest %s localhost:8080/api/games/1
  lightrest %s /games/1 --profile api.yaml --env dev -H "Accept: application/json"`, name, name),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return f.run(cmd, m, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVarP(&f.headers, "header", "H", nil, "HTTP headers to include (can be used multiple times)")
	flags.StringVarP(&f.data, "data", "d", "", "Request body sent verbatim")
	flags.StringVarP(&f.jsonBody, "json", "j", "", "JSON request body (validated before sending)")
	flags.StringArrayVar(&f.form, "form", nil, "Form parameter key=value, sent URL encoded (can be used multiple times)")
	flags.StringVar(&f.as, "as", "text", "Read the body as text, bytes or stream")
	flags.StringVar(&f.extract, "extract", "", "Print the value at this JSON path, e.g. $.games[0].title")
	flags.StringVar(&f.schema, "schema", "", "Validate the response body against this JSON schema file")
	flags.BoolVar(&f.ensureSuccess, "ensure-success", false, "Fail on non-2xx responses")
	flags.DurationVarP(&f.timeout, "timeout", "t", rest.DefaultTimeout, "Request timeout")
	flags.StringVar(&f.maxBuffer, "max-buffer", "", "Largest buffered response body, e.g. 512K or 10MB")
	flags.StringVar(&f.profile, "profile", "", "Profile file (YAML or JSON)")
	flags.StringVarP(&f.env, "env", "e", "", "Profile environment to use")
	flags.BoolVar(&f.h2c, "h2c", false, "Use HTTP/2 over cleartext")
	flags.BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "Show timing details, response headers and a debug log")
	flags.StringVarP(&f.format, "format", "f", "text", "Output format: text, json or yaml")
	cmd.MarkFlagsMutuallyExclusive("data", "json", "form")

	return cmd
}

func (f *requestFlags) run(cmd *cobra.Command, m rest.Method, target string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	format, err := output.ParseFormat(f.format)
	if err != nil {
		return err
	}
	as, err := parseTarget(f.as)
	if err != nil {
		return err
	}
	if as.Kind() == rest.KindStream && (f.extract != "" || f.schema != "") {
		return errors.New("--extract and --schema need a buffered body, not --as stream")
	}

	opts, hasBase, err := f.clientOptions(cmd)
	if err != nil {
		return err
	}
	client, err := rest.New(opts...)
	if err != nil {
		return err
	}
	defer client.CloseIdleConnections()

	req, reqBody, err := f.buildRequest(m, normalizeURL(target, hasBase))
	if err != nil {
		return err
	}

	// Build once more for display so the printed URL and headers are the
	// ones actually sent.
	cfg := client.Config()
	sent, err := req.Build(ctx, &cfg)
	if err != nil {
		return err
	}

	res, err := client.Exchange(ctx, req, as)
	if err != nil {
		return err
	}

	var body string
	switch res.Kind {
	case rest.KindText:
		body = res.Text
	case rest.KindBytes:
		body = string(res.Bytes)
	}

	ex := output.NewExchange(string(m), sent.URL.String(), sent.Header, reqBody, res, body)
	if f.extract != "" {
		value, err := output.Extract(body, f.extract)
		if err != nil {
			return err
		}
		ex.Extracted = &value
	}
	if f.schema != "" {
		schema, err := os.ReadFile(f.schema)
		if err != nil {
			return errors.Wrap(err, "reading schema")
		}
		result, err := output.ValidateSchema(body, string(schema))
		if err != nil {
			return err
		}
		ex.Schema = result
	}

	scheme := output.SchemeFor(out, f.noColor)
	text, err := output.GetFormatter(format, f.verbose, scheme).FormatExchange(ex)
	if err != nil {
		return err
	}
	fmt.Fprint(out, text)

	if res.Kind == rest.KindStream {
		defer res.Stream.Close()
		if _, err := io.Copy(out, res.Stream); err != nil {
			return errors.Wrap(err, "streaming body")
		}
	}

	if ex.Schema != nil && !ex.Schema.Valid {
		return errors.New("response does not match schema")
	}
	return nil
}

// clientOptions merges the profile, if any, with the flags the user set.
// Flags win. hasBase reports whether relative URLs can be resolved.
func (f *requestFlags) clientOptions(cmd *cobra.Command) ([]rest.Option, bool, error) {
	var opts []rest.Option
	hasBase := false

	if f.profile != "" {
		profile, err := config.LoadProfile(f.profile)
		if err != nil {
			return nil, false, err
		}
		env, err := profile.Environment(f.env)
		if err != nil {
			return nil, false, err
		}
		opts, err = profile.Options(env)
		if err != nil {
			return nil, false, err
		}
		hasBase = env.BaseURL != ""
	} else if f.env != "" {
		return nil, false, errors.New("--env needs --profile")
	}

	flags := cmd.Flags()
	if flags.Changed("timeout") {
		opts = append(opts, rest.WithTimeout(f.timeout))
	}
	if flags.Changed("max-buffer") {
		n, err := config.ParseByteSize(f.maxBuffer)
		if err != nil {
			return nil, false, errors.Wrap(err, "--max-buffer")
		}
		opts = append(opts, rest.WithMaxResponseBufferSize(n))
	}
	if flags.Changed("ensure-success") {
		opts = append(opts, rest.WithEnsureSuccess(f.ensureSuccess))
	}
	if f.h2c {
		opts = append(opts, rest.WithHTTPClient(rest.NewH2CTransport()))
	}
	if f.verbose {
		logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
		opts = append(opts, rest.WithLogger(logger))
	}
	return opts, hasBase, nil
}

// buildRequest assembles the request and returns the body as printed in
// the exchange.
func (f *requestFlags) buildRequest(m rest.Method, target string) (*rest.Request, string, error) {
	req := rest.NewRequest(m, target)

	headers, err := parseHeaders(f.headers)
	if err != nil {
		return nil, "", err
	}
	for _, h := range headers {
		req.AddHeader(h[0], h[1])
	}

	var shown string
	switch {
	case f.jsonBody != "":
		if !json.Valid([]byte(f.jsonBody)) {
			return nil, "", errors.New("--json is not valid JSON")
		}
		req.SetBody(f.jsonBody).SetMediaType("application/json")
		shown = f.jsonBody
	case f.data != "":
		req.SetBody(f.data)
		shown = f.data
	case len(f.form) > 0:
		form := make(url.Values)
		for _, kv := range f.form {
			key, value, ok := strings.Cut(kv, "=")
			if !ok {
				return nil, "", fmt.Errorf("invalid form parameter %q: use key=value", kv)
			}
			req.AddParameter(key, value)
			form.Add(key, value)
		}
		req.MakeParametersURLEncoded()
		shown = form.Encode()
	}

	if err := req.Err(); err != nil {
		return nil, "", err
	}
	return req, shown, nil
}

func parseTarget(s string) (rest.Target, error) {
	switch strings.ToLower(s) {
	case "", "text":
		return rest.AsText(), nil
	case "bytes":
		return rest.AsBytes(), nil
	case "stream":
		return rest.AsStream(), nil
	}
	return rest.Target{}, fmt.Errorf("unknown --as %q: use text, bytes or stream", s)
}
