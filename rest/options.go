package rest

import (
	"log/slog"
	"net/http"
	"time"
)

// Option configures a Client at construction.
type Option func(*Client) error

// WithBaseURL sets the URL relative request URLs resolve against.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) error {
		return c.SetBaseURL(baseURL)
	}
}

// WithCharset sets the charset used to encode request bodies.
func WithCharset(charset string) Option {
	return func(c *Client) error {
		return c.SetCharset(charset)
	}
}

// WithMediaType sets the Content-Type of serialized and string bodies.
func WithMediaType(mediaType string) Option {
	return func(c *Client) error {
		c.SetMediaType(mediaType)
		return nil
	}
}

// WithSerializer replaces the default JSON serializer.
func WithSerializer(s Serializer) Option {
	return func(c *Client) error {
		c.SetSerializer(s)
		return nil
	}
}

// WithTransport injects the transport every call goes through.
func WithTransport(d Doer) Option {
	return func(c *Client) error {
		if d == nil {
			return &ArgumentError{Arg: "transport", Msg: "must not be nil"}
		}
		c.doer = d
		return nil
	}
}

// WithHTTPClient is WithTransport for a *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return &ArgumentError{Arg: "transport", Msg: "must not be nil"}
		}
		c.doer = hc
		return nil
	}
}

// WithTimeout sets the per-call timeout. The default is 30 seconds.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		c.SetTimeout(timeout)
		return nil
	}
}

// WithMaxResponseBufferSize bounds buffered response bodies.
func WithMaxResponseBufferSize(n int64) Option {
	return func(c *Client) error {
		c.SetMaxResponseBufferSize(n)
		return nil
	}
}

// WithEnsureSuccess turns non-2xx responses into TransportErrors.
func WithEnsureSuccess(ensure bool) Option {
	return func(c *Client) error {
		c.SetEnsureSuccess(ensure)
		return nil
	}
}

// WithDefaultHeader adds a header sent with every request.
func WithDefaultHeader(name string, values ...string) Option {
	return func(c *Client) error {
		return c.AddDefaultHeaderValues(name, values...)
	}
}

// WithLogger sets the logger that receives one debug record per call.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger != nil {
			c.logger = logger
		}
		return nil
	}
}
