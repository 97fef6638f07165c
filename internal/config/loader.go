package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"code.cloudfoundry.org/bytefmt"
	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/lightrest/rest"
)

//go:embed schema.json
var profileSchema []byte

// Profile is a named set of environments plus client settings, loaded from
// a YAML or JSON file.
type Profile struct {
	DefaultEnvironment string                 `json:"defaultEnvironment,omitempty"`
	Environments       map[string]Environment `json:"environments,omitempty"`
	Client             ClientSettings         `json:"client"`
}

// Environment represents one target deployment
type Environment struct {
	BaseURL string            `json:"baseUrl"`
	Headers map[string]string `json:"headers,omitempty"`
	Vars    map[string]string `json:"variables,omitempty"`
}

// ClientSettings mirrors the rest.Client options that make sense in a file.
type ClientSettings struct {
	Timeout       string            `json:"timeout,omitempty"`
	MaxBuffer     string            `json:"maxBuffer,omitempty"`
	MediaType     string            `json:"mediaType,omitempty"`
	Charset       string            `json:"charset,omitempty"`
	Serializer    string            `json:"serializer,omitempty"`
	EnsureSuccess bool              `json:"ensureSuccess,omitempty"`
	H2C           bool              `json:"h2c,omitempty"`
	Headers       map[string]string `json:"headers,omitempty"`
}

// LoadProfile reads path, picking the decoder from its extension (.yaml,
// .yml or .json), checks it against the profile schema and then validates
// its values.
func LoadProfile(path string) (*Profile, error) {
	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("profile not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading profile")
	}

	return ParseProfile(data, filepath.Ext(path))
}

// ParseProfile decodes a profile held in memory. ext selects the format the
// same way LoadProfile does.
func ParseProfile(data []byte, ext string) (*Profile, error) {
	doc, err := toJSON(data, ext)
	if err != nil {
		return nil, err
	}

	if err := checkSchema(doc); err != nil {
		return nil, err
	}

	var profile Profile
	if err := json.Unmarshal(doc, &profile); err != nil {
		return nil, errors.Wrap(err, "decoding profile")
	}

	if errs := ValidateProfile(&profile); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("invalid profile: %s", strings.Join(msgs, "; "))
	}

	return &profile, nil
}

// toJSON normalizes the document so schema checking and decoding only deal
// with JSON.
func toJSON(data []byte, ext string) ([]byte, error) {
	switch strings.ToLower(ext) {
	case ".json":
		return data, nil
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(err, "parsing YAML profile")
		}
		if doc == nil {
			doc = map[string]any{}
		}
		out, err := json.Marshal(doc)
		if err != nil {
			return nil, errors.Wrap(err, "converting YAML profile")
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported profile format %q: use .yaml, .yml or .json", ext)
}

func checkSchema(doc []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("profile.json", bytes.NewReader(profileSchema)); err != nil {
		return errors.Wrap(err, "loading profile schema")
	}
	schema, err := compiler.Compile("profile.json")
	if err != nil {
		return errors.Wrap(err, "compiling profile schema")
	}

	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(doc))
	if err != nil {
		return errors.Wrap(err, "parsing profile")
	}
	if err := schema.Validate(v); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("profile does not match schema: %s", schemaMessages(verr))
		}
		return err
	}
	return nil
}

// schemaMessages flattens the leaves of a validation error tree.
func schemaMessages(err *jsonschema.ValidationError) string {
	var msgs []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			msgs = append(msgs, loc+": "+e.Message)
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(err)
	return strings.Join(msgs, "; ")
}

// Environment returns the named environment with its variables expanded in
// the base URL and headers. An empty name selects DefaultEnvironment, or the
// only environment when there is exactly one.
func (p *Profile) Environment(name string) (Environment, error) {
	if name == "" {
		name = p.DefaultEnvironment
	}
	if name == "" {
		switch len(p.Environments) {
		case 0:
			return Environment{}, nil
		case 1:
			for only := range p.Environments {
				name = only
			}
		default:
			return Environment{}, fmt.Errorf("profile has %d environments, choose one of: %s",
				len(p.Environments), strings.Join(p.EnvironmentNames(), ", "))
		}
	}

	env, ok := p.Environments[name]
	if !ok {
		return Environment{}, fmt.Errorf("environment not found: %s", name)
	}
	return Environment{
		BaseURL: ProcessEnvironment(env.BaseURL, env.Vars),
		Headers: ProcessEnvironmentInMap(env.Headers, env.Vars),
		Vars:    env.Vars,
	}, nil
}

// EnvironmentNames lists the environment names in sorted order.
func (p *Profile) EnvironmentNames() []string {
	names := make([]string, 0, len(p.Environments))
	for name := range p.Environments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Options converts the client settings plus env into rest options. env may
// be the zero Environment.
func (p *Profile) Options(env Environment) ([]rest.Option, error) {
	s := p.Client
	var opts []rest.Option

	if env.BaseURL != "" {
		opts = append(opts, rest.WithBaseURL(env.BaseURL))
	}
	if s.Timeout != "" {
		d, err := parseDurationString(s.Timeout)
		if err != nil {
			return nil, errors.Wrap(err, "client.timeout")
		}
		opts = append(opts, rest.WithTimeout(d))
	}
	if s.MaxBuffer != "" {
		n, err := ParseByteSize(s.MaxBuffer)
		if err != nil {
			return nil, errors.Wrap(err, "client.maxBuffer")
		}
		opts = append(opts, rest.WithMaxResponseBufferSize(n))
	}
	if s.MediaType != "" {
		opts = append(opts, rest.WithMediaType(s.MediaType))
	}
	if s.Charset != "" {
		opts = append(opts, rest.WithCharset(s.Charset))
	}
	if s.Serializer == "yaml" {
		opts = append(opts, rest.WithSerializer(rest.YAMLSerializer{}))
	}
	if s.EnsureSuccess {
		opts = append(opts, rest.WithEnsureSuccess(true))
	}
	if s.H2C {
		opts = append(opts, rest.WithHTTPClient(rest.NewH2CTransport()))
	}

	// Environment headers win over client-wide ones
	for key, value := range MergeEnvironments(s.Headers, env.Headers) {
		opts = append(opts, rest.WithDefaultHeader(key, value))
	}

	return opts, nil
}

// ParseByteSize parses sizes like "512K", "10MB" or "1G". A bare number is a
// byte count.
func ParseByteSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("size cannot be empty")
	}
	if n, err := bytefmt.ToBytes(s); err == nil {
		return int64(n), nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	return n, nil
}

// parseDurationString parses duration strings like "30s", "5m", "1h"
func parseDurationString(duration string) (time.Duration, error) {
	duration = strings.TrimSpace(duration)
	if duration == "" {
		return 0, fmt.Errorf("duration cannot be empty")
	}

	// Try parsing as Go duration
	if d, err := time.ParseDuration(duration); err == nil {
		return d, nil
	}

	// Handle additional formats like "1 minute", "30 seconds"
	duration = strings.ToLower(duration)
	duration = strings.ReplaceAll(duration, " ", "")

	// Longest words first so "seconds" is not left as "s" + "s"
	replacements := []struct{ word, abbrev string }{
		{"seconds", "s"},
		{"second", "s"},
		{"minutes", "m"},
		{"minute", "m"},
		{"hours", "h"},
		{"hour", "h"},
	}
	for _, r := range replacements {
		duration = strings.ReplaceAll(duration, r.word, r.abbrev)
	}

	return time.ParseDuration(duration)
}

// ProcessEnvironment replaces {{name}} placeholders in input
func ProcessEnvironment(input string, vars map[string]string) string {
	result := input
	for key, value := range vars {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}
	return result
}

// ProcessEnvironmentInMap applies ProcessEnvironment to every value
func ProcessEnvironmentInMap(input map[string]string, vars map[string]string) map[string]string {
	if input == nil {
		return nil
	}
	result := make(map[string]string, len(input))
	for key, value := range input {
		result[key] = ProcessEnvironment(value, vars)
	}
	return result
}

// MergeEnvironments merges two maps, with the second taking precedence
func MergeEnvironments(base, override map[string]string) map[string]string {
	result := make(map[string]string, len(base)+len(override))
	for key, value := range base {
		result[key] = value
	}
	for key, value := range override {
		result[key] = value
	}
	return result
}
