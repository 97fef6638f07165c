package rest

import (
	"math"
	"net/http"
	"net/url"
	"time"
)

// Defaults applied by New.
const (
	DefaultMediaType             = "application/json"
	DefaultTimeout               = 30 * time.Second
	DefaultMaxResponseBufferSize = math.MaxInt32
)

// Config is the state shared by every call made through a Client.
type Config struct {
	// BaseURL resolves relative request URLs. Nil means requests must use
	// absolute URLs.
	BaseURL *url.URL
	// DefaultHeaders are sent with every request unless the request sets a
	// header of the same name.
	DefaultHeaders http.Header
	// MediaType is the Content-Type of serialized and string bodies.
	MediaType string
	// Charset is the encoding of serialized and string bodies.
	Charset string
	// Serializer converts structured bodies and results.
	Serializer Serializer
	// EnsureSuccess turns non-2xx responses into TransportErrors.
	EnsureSuccess bool
	// Timeout bounds each call, including reading a buffered body. Zero
	// disables it.
	Timeout time.Duration
	// MaxResponseBufferSize bounds buffered response bodies. Zero or less
	// disables the limit. Streams are never bounded.
	MaxResponseBufferSize int64
}

// DefaultConfig returns the configuration New starts from.
func DefaultConfig() Config {
	return Config{
		DefaultHeaders:        make(http.Header),
		MediaType:             DefaultMediaType,
		Charset:               DefaultCharset,
		Serializer:            JSONSerializer{},
		Timeout:               DefaultTimeout,
		MaxResponseBufferSize: DefaultMaxResponseBufferSize,
	}
}

func (c *Config) serializer() Serializer {
	if c.Serializer == nil {
		return JSONSerializer{}
	}
	return c.Serializer
}

// clone copies c deeply enough that mutating the copy's maps or URL leaves c
// untouched.
func (c Config) clone() Config {
	out := c
	out.DefaultHeaders = c.DefaultHeaders.Clone()
	if out.DefaultHeaders == nil {
		out.DefaultHeaders = make(http.Header)
	}
	if c.BaseURL != nil {
		u := *c.BaseURL
		out.BaseURL = &u
	}
	return out
}
