package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Formatter is responsible for formatting HTTP requests and responses in text format
type Formatter struct {
	Verbose bool
	Colors  *ColorScheme
}

// NewFormatter creates a new formatter with the given options. A nil scheme
// disables colors.
func NewFormatter(verbose bool, scheme *ColorScheme) *Formatter {
	if scheme == nil {
		scheme = NoColorScheme()
	}
	return &Formatter{
		Verbose: verbose,
		Colors:  scheme,
	}
}

// FormatExchange renders the request line, the response and, with --extract
// or --schema, their results.
func (f *Formatter) FormatExchange(ex *Exchange) (string, error) {
	var buf strings.Builder
	buf.WriteString(f.FormatRequest(&ex.Request))
	buf.WriteString(f.FormatResponse(&ex.Response, ex.Body()))

	if ex.Extracted != nil {
		buf.WriteString(fmt.Sprintf("%s %s\n", f.Colors.Highlight.Sprint("Extracted:"), *ex.Extracted))
	}
	if ex.Schema != nil {
		buf.WriteString(f.FormatSchema(ex.Schema))
	}
	return buf.String(), nil
}

// FormatRequest formats an HTTP request for display
func (f *Formatter) FormatRequest(req *RequestData) string {
	var buf strings.Builder

	buf.WriteString(fmt.Sprintf("▶ REQUEST: %s %s\n", f.Colors.Method.Sprint(req.Method), f.Colors.URL.Sprint(req.URL)))

	// Format headers if verbose or if there are headers
	if len(req.Headers) > 0 {
		buf.WriteString("  Headers:\n")
		for _, key := range sortedKeys(req.Headers) {
			buf.WriteString(fmt.Sprintf("    %s: %s\n", f.Colors.HeaderKey.Sprint(key), req.Headers[key]))
		}
	}

	if f.Verbose && req.Body != "" {
		buf.WriteString("  Body: ")
		buf.WriteString(formatJSONString(req.Body))
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatResponse formats an HTTP response for display
func (f *Formatter) FormatResponse(resp *ResponseData, body string) string {
	var buf strings.Builder

	status := resp.Status
	if status == "" {
		status = fmt.Sprint(resp.StatusCode)
	}
	buf.WriteString(fmt.Sprintf("◀ RESPONSE: %s (%dms)\n",
		f.Colors.Status(resp.StatusCode).Sprint(status),
		resp.Timing.Total))

	// Format detailed timing information if verbose
	if f.Verbose {
		buf.WriteString("  Timing:\n")
		buf.WriteString(fmt.Sprintf("    DNS Lookup:         %dms\n", resp.Timing.DNSLookup))
		buf.WriteString(fmt.Sprintf("    TCP Connection:     %dms\n", resp.Timing.TCPConnection))
		buf.WriteString(fmt.Sprintf("    TLS Handshake:      %dms\n", resp.Timing.TLSHandshake))
		buf.WriteString(fmt.Sprintf("    Time to First Byte: %dms\n", resp.Timing.TimeToFirstByte))
		buf.WriteString(fmt.Sprintf("    Content Transfer:   %dms\n", resp.Timing.ContentTransfer))

		buf.WriteString("  Headers:\n")
		for _, key := range sortedKeys(resp.Headers) {
			buf.WriteString(fmt.Sprintf("    %s: %s\n", f.Colors.HeaderKey.Sprint(key), f.Colors.HeaderValue.Sprint(resp.Headers[key])))
		}
	}

	if body != "" {
		buf.WriteString("  Body:\n")
		buf.WriteString(formatJSONString(body))
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatSchema reports a schema check.
func (f *Formatter) FormatSchema(r *SchemaResult) string {
	noColor := f.Colors.Disabled
	if r.Valid {
		return fmt.Sprintf("%s Response matches schema\n", SuccessIcon(noColor))
	}
	var buf strings.Builder
	buf.WriteString(fmt.Sprintf("%s Response does not match schema\n", ErrorIcon(noColor)))
	for _, msg := range r.Errors {
		buf.WriteString("    " + f.Colors.Error.Sprint(msg) + "\n")
	}
	return buf.String()
}

// formatJSONString attempts to pretty-print a JSON string
func formatJSONString(s string) string {
	var prettyJSON bytes.Buffer
	err := json.Indent(&prettyJSON, []byte(s), "  ", "  ")
	if err != nil {
		return s
	}
	return "  " + prettyJSON.String()
}
