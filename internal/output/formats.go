package output

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/lightrest/rest"
)

// OutputFormat represents the available output formats
type OutputFormat string

const (
	// FormatText is the default human-readable text format
	FormatText OutputFormat = "text"
	// FormatJSON outputs in JSON format
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs in YAML format
	FormatYAML OutputFormat = "yaml"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown format %q: use text, json or yaml", s)
}

// FormatProvider renders one request/response exchange
type FormatProvider interface {
	FormatExchange(ex *Exchange) (string, error)
}

// RequestData represents the structured data of an HTTP request
type RequestData struct {
	Method  string            `json:"method" yaml:"method"`
	URL     string            `json:"url" yaml:"url"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body    string            `json:"body,omitempty" yaml:"body,omitempty"`
}

// TimingData represents detailed timing information for an HTTP request
type TimingData struct {
	DNSLookup       int64 `json:"dnsLookupMs,omitempty" yaml:"dnsLookupMs,omitempty"`
	TCPConnection   int64 `json:"tcpConnectionMs,omitempty" yaml:"tcpConnectionMs,omitempty"`
	TLSHandshake    int64 `json:"tlsHandshakeMs,omitempty" yaml:"tlsHandshakeMs,omitempty"`
	TimeToFirstByte int64 `json:"timeToFirstByteMs,omitempty" yaml:"timeToFirstByteMs,omitempty"`
	ContentTransfer int64 `json:"contentTransferMs,omitempty" yaml:"contentTransferMs,omitempty"`
	Total           int64 `json:"totalMs" yaml:"totalMs"`
}

// ResponseData represents the structured data of an HTTP response
type ResponseData struct {
	StatusCode int               `json:"statusCode" yaml:"statusCode"`
	Status     string            `json:"status" yaml:"status"`
	Kind       string            `json:"kind" yaml:"kind"`
	Headers    map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body       any               `json:"body,omitempty" yaml:"body,omitempty"`
	Timing     TimingData        `json:"timing" yaml:"timing"`
}

// Exchange is what the CLI prints for one call
type Exchange struct {
	Request   RequestData   `json:"request" yaml:"request"`
	Response  ResponseData  `json:"response" yaml:"response"`
	Extracted *string       `json:"extracted,omitempty" yaml:"extracted,omitempty"`
	Schema    *SchemaResult `json:"schema,omitempty" yaml:"schema,omitempty"`
	Timestamp string        `json:"timestamp" yaml:"timestamp"`

	rawBody string
}

// SchemaResult is the outcome of validating the response body
type SchemaResult struct {
	Valid  bool     `json:"valid" yaml:"valid"`
	Errors []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// NewExchange captures a completed call. body is the response text as the
// CLI read it, which may be empty for HEAD or streamed results.
func NewExchange(method, url string, reqHeader http.Header, reqBody string, res *rest.Result, body string) *Exchange {
	ex := &Exchange{
		Request: RequestData{
			Method:  method,
			URL:     url,
			Headers: flattenHeader(reqHeader),
			Body:    reqBody,
		},
		Timestamp: time.Now().Format(time.RFC3339),
		rawBody:   body,
	}
	if res != nil {
		ex.Response = ResponseData{
			StatusCode: res.StatusCode,
			Status:     res.Status,
			Kind:       res.Kind.String(),
			Headers:    flattenHeader(res.Header),
			Body:       bodyValue(body),
			Timing:     timingData(res.Timing),
		}
	}
	return ex
}

// Body returns the response text the exchange was built with.
func (ex *Exchange) Body() string { return ex.rawBody }

func timingData(t rest.Timing) TimingData {
	return TimingData{
		DNSLookup:       t.DNSLookup.Milliseconds(),
		TCPConnection:   t.TCPConnect.Milliseconds(),
		TLSHandshake:    t.TLSHandshake.Milliseconds(),
		TimeToFirstByte: t.TimeToFirstByte.Milliseconds(),
		ContentTransfer: t.ContentTransfer.Milliseconds(),
		Total:           t.Total.Milliseconds(),
	}
}

// flattenHeader joins repeated values with ", " the way they travel on the
// wire.
func flattenHeader(h http.Header) map[string]string {
	if len(h) == 0 {
		return nil
	}
	out := make(map[string]string, len(h))
	for key, values := range h {
		out[key] = strings.Join(values, ", ")
	}
	return out
}

// bodyValue embeds JSON bodies as structured values and anything else as a
// string.
func bodyValue(body string) any {
	if body == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return body
	}
	return v
}

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Pretty bool
}

// FormatExchange formats an exchange as JSON
func (f *JSONFormatter) FormatExchange(ex *Exchange) (string, error) {
	return RenderJSON(ex, f.Pretty)
}

// YAMLFormatter formats output as YAML
type YAMLFormatter struct{}

// FormatExchange formats an exchange as YAML
func (f *YAMLFormatter) FormatExchange(ex *Exchange) (string, error) {
	return RenderYAML(ex)
}

// RenderJSON marshals v as JSON, indented when pretty is set.
func RenderJSON(v any, pretty bool) (string, error) {
	var out []byte
	var err error
	if pretty {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(out) + "\n", nil
}

// RenderYAML marshals v as YAML.
func RenderYAML(v any) (string, error) {
	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return sb.String(), nil
}

// GetFormatter returns the appropriate formatter for the given format
func GetFormatter(format OutputFormat, verbose bool, scheme *ColorScheme) FormatProvider {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Pretty: true}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return NewFormatter(verbose, scheme)
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
