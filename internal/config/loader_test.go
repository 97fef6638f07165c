package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wesleyorama2/lightrest/rest"
)

const yamlProfile = `
defaultEnvironment: dev
environments:
  dev:
    baseUrl: http://{{host}}/api/
    headers:
      X-Env: "{{name}}"
    variables:
      host: localhost:8080
      name: development
  prod:
    baseUrl: https://games.example.com/api/
client:
  timeout: 5 seconds
  maxBuffer: 10M
  charset: iso-8859-1
  serializer: json
  ensureSuccess: true
  headers:
    X-Env: client
    X-Client: lightrest
`

func writeProfile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write profile: %v", err)
	}
	return path
}

func TestLoadProfile_YAML(t *testing.T) {
	profile, err := LoadProfile(writeProfile(t, "profile.yaml", yamlProfile))
	if err != nil {
		t.Fatalf("LoadProfile failed: %v", err)
	}

	if len(profile.Environments) != 2 {
		t.Errorf("Expected 2 environments, got %d", len(profile.Environments))
	}
	if profile.Client.Timeout != "5 seconds" {
		t.Errorf("Expected timeout '5 seconds', got %q", profile.Client.Timeout)
	}
	if !profile.Client.EnsureSuccess {
		t.Error("Expected ensureSuccess to be true")
	}

	env, err := profile.Environment("")
	if err != nil {
		t.Fatalf("Environment failed: %v", err)
	}
	if env.BaseURL != "http://localhost:8080/api/" {
		t.Errorf("Expected expanded base URL, got %q", env.BaseURL)
	}
	if env.Headers["X-Env"] != "development" {
		t.Errorf("Expected expanded header, got %q", env.Headers["X-Env"])
	}
}

func TestLoadProfile_JSON(t *testing.T) {
	content := `{
		"environments": {
			"local": {"baseUrl": "http://127.0.0.1:5000/"}
		},
		"client": {"serializer": "yaml", "h2c": true}
	}`
	profile, err := LoadProfile(writeProfile(t, "profile.json", content))
	if err != nil {
		t.Fatalf("LoadProfile failed: %v", err)
	}

	// A single environment is picked without a name
	env, err := profile.Environment("")
	if err != nil {
		t.Fatalf("Environment failed: %v", err)
	}
	if env.BaseURL != "http://127.0.0.1:5000/" {
		t.Errorf("Unexpected base URL %q", env.BaseURL)
	}
	if profile.Client.Serializer != "yaml" || !profile.Client.H2C {
		t.Errorf("Unexpected client settings %+v", profile.Client)
	}
}

func TestLoadProfile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"unknown extension", "profile.toml", "a = 1", "unsupported profile format"},
		{"bad yaml", "profile.yaml", "environments: [", "parsing YAML profile"},
		{"unknown key", "profile.yaml", "clients: {}", "does not match schema"},
		{"missing baseUrl", "profile.json", `{"environments":{"dev":{}}}`, "does not match schema"},
		{"bad serializer", "profile.yaml", "client:\n  serializer: xml", "does not match schema"},
		{"wrong type", "profile.yaml", "client:\n  ensureSuccess: maybe", "does not match schema"},
		{"relative baseUrl", "profile.yaml", "environments:\n  dev:\n    baseUrl: /api", "environments.dev.baseUrl"},
		{"bad timeout", "profile.yaml", "client:\n  timeout: soon", "client.timeout"},
		{"bad size", "profile.yaml", "client:\n  maxBuffer: lots", "client.maxBuffer"},
		{"bad charset", "profile.yaml", "client:\n  charset: martian", "client.charset"},
		{"unknown default", "profile.yaml", "defaultEnvironment: qa", "defaultEnvironment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadProfile(writeProfile(t, tt.file, tt.content))
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadProfile_FileNotFound(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "profile not found") {
		t.Errorf("Expected not found error, got %v", err)
	}
}

func TestParseProfile_Empty(t *testing.T) {
	profile, err := ParseProfile([]byte(""), ".yaml")
	if err != nil {
		t.Fatalf("ParseProfile failed: %v", err)
	}
	env, err := profile.Environment("")
	if err != nil {
		t.Fatalf("Environment failed: %v", err)
	}
	if env.BaseURL != "" {
		t.Errorf("Expected empty environment, got %+v", env)
	}
}

func TestProfile_Environment(t *testing.T) {
	profile := &Profile{Environments: map[string]Environment{
		"a": {BaseURL: "http://a/"},
		"b": {BaseURL: "http://b/"},
	}}

	if _, err := profile.Environment(""); err == nil || !strings.Contains(err.Error(), "a, b") {
		t.Errorf("Expected ambiguity error listing environments, got %v", err)
	}
	if _, err := profile.Environment("c"); err == nil {
		t.Error("Expected error for unknown environment")
	}
	env, err := profile.Environment("b")
	if err != nil || env.BaseURL != "http://b/" {
		t.Errorf("Unexpected result %+v, %v", env, err)
	}
}

func TestProfile_Options(t *testing.T) {
	profile, err := ParseProfile([]byte(yamlProfile), ".yaml")
	if err != nil {
		t.Fatalf("ParseProfile failed: %v", err)
	}
	env, err := profile.Environment("dev")
	if err != nil {
		t.Fatalf("Environment failed: %v", err)
	}
	opts, err := profile.Options(env)
	if err != nil {
		t.Fatalf("Options failed: %v", err)
	}

	client, err := rest.New(opts...)
	if err != nil {
		t.Fatalf("rest.New failed: %v", err)
	}
	cfg := client.Config()

	if got := cfg.BaseURL.String(); got != "http://localhost:8080/api/" {
		t.Errorf("Expected base URL from environment, got %q", got)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Expected 5s timeout, got %v", cfg.Timeout)
	}
	if cfg.MaxResponseBufferSize != 10*1024*1024 {
		t.Errorf("Expected 10M buffer, got %d", cfg.MaxResponseBufferSize)
	}
	if cfg.Charset != "iso-8859-1" {
		t.Errorf("Expected charset iso-8859-1, got %q", cfg.Charset)
	}
	if !cfg.EnsureSuccess {
		t.Error("Expected EnsureSuccess")
	}
	if got := cfg.DefaultHeaders.Get("X-Env"); got != "development" {
		t.Errorf("Expected environment header to win, got %q", got)
	}
	if got := cfg.DefaultHeaders.Get("X-Client"); got != "lightrest" {
		t.Errorf("Expected client header, got %q", got)
	}
}

func TestParseByteSize(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"1024", 1024, false},
		{"512K", 512 * 1024, false},
		{"10MB", 10 * 1024 * 1024, false},
		{"1G", 1024 * 1024 * 1024, false},
		{"", 0, true},
		{"lots", 0, true},
		{"-1M", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseByteSize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseByteSize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseByteSize(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseDurationString(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"30s", 30 * time.Second, false},
		{"1 minute", time.Minute, false},
		{"5 seconds", 5 * time.Second, false},
		{"2 hours", 2 * time.Hour, false},
		{"", 0, true},
		{"soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseDurationString(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseDurationString(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseDurationString(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestProcessEnvironment(t *testing.T) {
	vars := map[string]string{"id": "1", "host": "localhost"}

	if got := ProcessEnvironment("http://{{host}}/games/{{id}}", vars); got != "http://localhost/games/1" {
		t.Errorf("Unexpected expansion %q", got)
	}
	if got := ProcessEnvironment("{{missing}}", vars); got != "{{missing}}" {
		t.Errorf("Unknown placeholders should stay, got %q", got)
	}
	if got := ProcessEnvironmentInMap(nil, vars); got != nil {
		t.Errorf("Expected nil map, got %v", got)
	}

	merged := MergeEnvironments(map[string]string{"a": "1", "b": "1"}, map[string]string{"b": "2"})
	if merged["a"] != "1" || merged["b"] != "2" {
		t.Errorf("Unexpected merge %v", merged)
	}
}
