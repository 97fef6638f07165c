package config

import (
	"fmt"
	"net/url"
	"sort"

	"github.com/wesleyorama2/lightrest/rest"
)

// ValidationError represents a profile validation error
type ValidationError struct {
	Path    string
	Message string
}

// Error returns the error message
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidateProfile checks the values the schema cannot: durations, sizes,
// charsets and URLs.
func ValidateProfile(p *Profile) []ValidationError {
	var errors []ValidationError

	if p.DefaultEnvironment != "" {
		if _, ok := p.Environments[p.DefaultEnvironment]; !ok {
			errors = append(errors, ValidationError{
				Path:    "defaultEnvironment",
				Message: fmt.Sprintf("environment %q is not defined", p.DefaultEnvironment),
			})
		}
	}

	// Sorted so the report is stable
	names := make([]string, 0, len(p.Environments))
	for name := range p.Environments {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		env := p.Environments[name]
		base := ProcessEnvironment(env.BaseURL, env.Vars)
		u, err := url.Parse(base)
		if err != nil || !u.IsAbs() || u.Host == "" {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("environments.%s.baseUrl", name),
				Message: fmt.Sprintf("must be an absolute URL, got %q", base),
			})
		}
	}

	c := p.Client
	if c.Timeout != "" {
		if d, err := parseDurationString(c.Timeout); err != nil || d < 0 {
			errors = append(errors, ValidationError{
				Path:    "client.timeout",
				Message: fmt.Sprintf("invalid duration %q", c.Timeout),
			})
		}
	}
	if c.MaxBuffer != "" {
		if _, err := ParseByteSize(c.MaxBuffer); err != nil {
			errors = append(errors, ValidationError{
				Path:    "client.maxBuffer",
				Message: err.Error(),
			})
		}
	}
	if c.Charset != "" {
		if err := rest.ValidateCharset(c.Charset); err != nil {
			errors = append(errors, ValidationError{
				Path:    "client.charset",
				Message: fmt.Sprintf("unknown charset %q", c.Charset),
			})
		}
	}

	return errors
}
