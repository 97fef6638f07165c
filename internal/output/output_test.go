package output

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/lightrest/rest"
)

func sampleExchange() *Exchange {
	res := &rest.Result{
		StatusCode: 200,
		Status:     "200 OK",
		Header:     http.Header{"Content-Type": {"application/json; charset=utf-8"}},
		Kind:       rest.KindText,
		Text:       `{"id":1,"title":"elden ring"}`,
		Timing:     rest.Timing{Total: 12 * time.Millisecond, TimeToFirstByte: 10 * time.Millisecond},
	}
	reqHeader := http.Header{"X-Trace": {"a", "b"}}
	return NewExchange("GET", "http://localhost/api/games/1", reqHeader, "", res, res.Text)
}

func TestColorSchemes(t *testing.T) {
	scheme := DefaultColorScheme()
	for i, c := range scheme.all() {
		if c == nil {
			t.Errorf("DefaultColorScheme color %d should not be nil", i)
		}
	}
	if scheme.Disabled {
		t.Error("DefaultColorScheme should not be disabled")
	}
	if !NoColorScheme().Disabled {
		t.Error("NoColorScheme should be disabled")
	}

	if scheme.Status(204) != scheme.StatusOK {
		t.Error("2xx should use StatusOK")
	}
	if scheme.Status(302) != scheme.StatusWarn {
		t.Error("3xx should use StatusWarn")
	}
	if scheme.Status(500) != scheme.StatusError {
		t.Error("5xx should use StatusError")
	}
}

func TestSchemeFor(t *testing.T) {
	var buf bytes.Buffer
	if !SchemeFor(&buf, false).Disabled {
		t.Error("Non-terminal writers should get no colors")
	}
	if !SchemeFor(&buf, true).Disabled {
		t.Error("noColor should disable colors")
	}
	if IsTerminal(&buf) {
		t.Error("A buffer is not a terminal")
	}
}

func TestIcons(t *testing.T) {
	if SuccessIcon(true) != "✓" {
		t.Errorf("Unexpected success icon %q", SuccessIcon(true))
	}
	if ErrorIcon(true) != "✗" {
		t.Errorf("Unexpected error icon %q", ErrorIcon(true))
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]OutputFormat{"": FormatText, "text": FormatText, "JSON": FormatJSON, "yaml": FormatYAML}
	for input, want := range tests {
		got, err := ParseFormat(input)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", input, got, err, want)
		}
	}
	if _, err := ParseFormat("junit"); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestTextFormatter(t *testing.T) {
	ex := sampleExchange()
	extracted := "elden ring"
	ex.Extracted = &extracted
	ex.Schema = &SchemaResult{Valid: false, Errors: []string{"/id: expected string"}}

	out, err := NewFormatter(true, nil).FormatExchange(ex)
	if err != nil {
		t.Fatalf("FormatExchange failed: %v", err)
	}

	for _, want := range []string{
		"▶ REQUEST: GET http://localhost/api/games/1",
		"X-Trace: a, b",
		"◀ RESPONSE: 200 OK (12ms)",
		"Time to First Byte: 10ms",
		"Content-Type: application/json; charset=utf-8",
		`"title": "elden ring"`,
		"Extracted: elden ring",
		"✗ Response does not match schema",
		"/id: expected string",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}

func TestTextFormatter_Quiet(t *testing.T) {
	out, err := NewFormatter(false, NoColorScheme()).FormatExchange(sampleExchange())
	if err != nil {
		t.Fatalf("FormatExchange failed: %v", err)
	}
	if strings.Contains(out, "Timing:") {
		t.Error("Timing should only be printed in verbose mode")
	}
	if !strings.Contains(out, "Body:") {
		t.Error("Body should always be printed")
	}
}

func TestJSONFormatter(t *testing.T) {
	out, err := GetFormatter(FormatJSON, false, nil).FormatExchange(sampleExchange())
	if err != nil {
		t.Fatalf("FormatExchange failed: %v", err)
	}

	var decoded struct {
		Request  RequestData `json:"request"`
		Response struct {
			StatusCode int            `json:"statusCode"`
			Kind       string         `json:"kind"`
			Body       map[string]any `json:"body"`
			Timing     TimingData     `json:"timing"`
		} `json:"response"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("Output is not JSON: %v\n%s", err, out)
	}
	if decoded.Request.Method != "GET" {
		t.Errorf("Unexpected method %q", decoded.Request.Method)
	}
	if decoded.Response.StatusCode != 200 || decoded.Response.Kind != "text" {
		t.Errorf("Unexpected response %+v", decoded.Response)
	}
	if decoded.Response.Body["title"] != "elden ring" {
		t.Errorf("Body should be embedded as JSON, got %v", decoded.Response.Body)
	}
	if decoded.Response.Timing.Total != 12 {
		t.Errorf("Expected 12ms total, got %d", decoded.Response.Timing.Total)
	}
}

func TestYAMLFormatter(t *testing.T) {
	ex := sampleExchange()
	ex.Response.Body = bodyValue("plain text")

	out, err := GetFormatter(FormatYAML, false, nil).FormatExchange(ex)
	if err != nil {
		t.Fatalf("FormatExchange failed: %v", err)
	}

	var decoded map[string]any
	if err := yaml.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("Output is not YAML: %v\n%s", err, out)
	}
	resp := decoded["response"].(map[string]any)
	if resp["body"] != "plain text" {
		t.Errorf("Non-JSON body should stay a string, got %v", resp["body"])
	}
	if resp["statusCode"] != 200 {
		t.Errorf("Unexpected status %v", resp["statusCode"])
	}
}

func TestExtract(t *testing.T) {
	doc := `{"games":[{"id":1,"title":"elden ring","tags":["souls"]},{"id":2,"title":null}],"count":2}`

	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"$.games[0].title", "elden ring", false},
		{"games.0.title", "elden ring", false},
		{"$['count']", "2", false},
		{"$.games[1].title", "null", false},
		{"$.games[0].tags", `["souls"]`, false},
		{"games.#", "2", false},
		{"$.missing", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := Extract(doc, tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Extract(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Extract(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}

	if _, err := Extract("", "a"); err == nil {
		t.Error("Expected error for empty document")
	}
	if _, err := Extract("not json", "a"); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestToGjsonPath(t *testing.T) {
	tests := map[string]string{
		"$":                  "@this",
		"$.a.b":              "a.b",
		"$[0]":               "0",
		"$.a[1][2]":          "a.1.2",
		`$["quoted"].x`:      "quoted.x",
		"already.gjson.0":    "already.gjson.0",
		"$.users[0]['name']": "users.0.name",
	}
	for in, want := range tests {
		if got := toGjsonPath(in); got != want {
			t.Errorf("toGjsonPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidateSchema(t *testing.T) {
	schema := `{
		"type": "object",
		"required": ["id", "title"],
		"properties": {
			"id": {"type": "integer"},
			"title": {"type": "string"}
		}
	}`

	result, err := ValidateSchema(`{"id":1,"title":"elden ring"}`, schema)
	if err != nil {
		t.Fatalf("ValidateSchema failed: %v", err)
	}
	if !result.Valid {
		t.Errorf("Expected valid, got %v", result.Errors)
	}

	result, err = ValidateSchema(`{"id":"one"}`, schema)
	if err != nil {
		t.Fatalf("ValidateSchema failed: %v", err)
	}
	if result.Valid {
		t.Fatal("Expected invalid")
	}
	if len(result.Errors) != 2 {
		t.Errorf("Expected 2 violations, got %v", result.Errors)
	}

	if _, err := ValidateSchema(`{}`, `{"type": 12}`); err == nil {
		t.Error("Expected error for invalid schema")
	}
	if _, err := ValidateSchema(`{`, schema); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestTable(t *testing.T) {
	table := &Table{Title: "results", Headers: []string{"client", "p50"}}
	table.AddRow("net/http", "1.2ms")
	table.AddRow("rest")

	var buf bytes.Buffer
	if err := table.Render(&buf, nil); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected 4 lines, got %d:\n%s", len(lines), buf.String())
	}
	if lines[0] != "results" {
		t.Errorf("Unexpected title line %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "net/http  1.2ms") {
		t.Errorf("Columns not aligned: %q", lines[2])
	}
}
