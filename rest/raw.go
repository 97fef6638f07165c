package rest

import (
	"context"
	"io"
	"net/url"
)

// The raw helpers bypass result negotiation and always fail with a
// TransportError on a non-2xx status, whatever EnsureSuccess says.

// GetString sends a GET request and returns the body as text.
func (c *Client) GetString(ctx context.Context, rawURL string) (string, error) {
	return c.getString(ctx, NewRequest(MethodGet, rawURL))
}

// GetStringURL is GetString for a parsed URL.
func (c *Client) GetStringURL(ctx context.Context, u *url.URL) (string, error) {
	return c.getString(ctx, NewRequestURL(MethodGet, u))
}

// GetBytes sends a GET request and returns the raw body.
func (c *Client) GetBytes(ctx context.Context, rawURL string) ([]byte, error) {
	return c.getBytes(ctx, NewRequest(MethodGet, rawURL))
}

// GetBytesURL is GetBytes for a parsed URL.
func (c *Client) GetBytesURL(ctx context.Context, u *url.URL) ([]byte, error) {
	return c.getBytes(ctx, NewRequestURL(MethodGet, u))
}

// GetStream sends a GET request and returns the live body. The caller must
// close it.
func (c *Client) GetStream(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	return c.getStream(ctx, NewRequest(MethodGet, rawURL))
}

// GetStreamURL is GetStream for a parsed URL.
func (c *Client) GetStreamURL(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	return c.getStream(ctx, NewRequestURL(MethodGet, u))
}

func (c *Client) getString(ctx context.Context, req *Request) (string, error) {
	res, err := c.exchange(ctx, req, AsText(), true)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

func (c *Client) getBytes(ctx context.Context, req *Request) ([]byte, error) {
	res, err := c.exchange(ctx, req, AsBytes(), true)
	if err != nil {
		return nil, err
	}
	return res.Bytes, nil
}

func (c *Client) getStream(ctx context.Context, req *Request) (io.ReadCloser, error) {
	res, err := c.exchange(ctx, req, AsStream(), true)
	if err != nil {
		return nil, err
	}
	return res.Stream, nil
}
