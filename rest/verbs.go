package rest

import (
	"context"
	"net/url"
)

func (c *Client) verb(ctx context.Context, m Method, rawURL string, body any) (string, int, error) {
	return c.Send(ctx, NewRequest(m, rawURL).SetBody(body))
}

func (c *Client) verbURL(ctx context.Context, m Method, u *url.URL, body any) (string, int, error) {
	return c.Send(ctx, NewRequestURL(m, u).SetBody(body))
}

// Get sends a GET request and returns the body as text. body may be nil.
func (c *Client) Get(ctx context.Context, rawURL string, body any) (string, int, error) {
	return c.verb(ctx, MethodGet, rawURL, body)
}

// GetURL is Get for a parsed URL.
func (c *Client) GetURL(ctx context.Context, u *url.URL, body any) (string, int, error) {
	return c.verbURL(ctx, MethodGet, u, body)
}

// Post sends a POST request and returns the body as text.
func (c *Client) Post(ctx context.Context, rawURL string, body any) (string, int, error) {
	return c.verb(ctx, MethodPost, rawURL, body)
}

// PostURL is Post for a parsed URL.
func (c *Client) PostURL(ctx context.Context, u *url.URL, body any) (string, int, error) {
	return c.verbURL(ctx, MethodPost, u, body)
}

// Put sends a PUT request and returns the body as text.
func (c *Client) Put(ctx context.Context, rawURL string, body any) (string, int, error) {
	return c.verb(ctx, MethodPut, rawURL, body)
}

// PutURL is Put for a parsed URL.
func (c *Client) PutURL(ctx context.Context, u *url.URL, body any) (string, int, error) {
	return c.verbURL(ctx, MethodPut, u, body)
}

// Delete sends a DELETE request and returns the body as text.
func (c *Client) Delete(ctx context.Context, rawURL string, body any) (string, int, error) {
	return c.verb(ctx, MethodDelete, rawURL, body)
}

// DeleteURL is Delete for a parsed URL.
func (c *Client) DeleteURL(ctx context.Context, u *url.URL, body any) (string, int, error) {
	return c.verbURL(ctx, MethodDelete, u, body)
}

// Head sends a HEAD request. The text result is always empty.
func (c *Client) Head(ctx context.Context, rawURL string, body any) (string, int, error) {
	return c.verb(ctx, MethodHead, rawURL, body)
}

// HeadURL is Head for a parsed URL.
func (c *Client) HeadURL(ctx context.Context, u *url.URL, body any) (string, int, error) {
	return c.verbURL(ctx, MethodHead, u, body)
}

// Patch sends a PATCH request and returns the body as text.
func (c *Client) Patch(ctx context.Context, rawURL string, body any) (string, int, error) {
	return c.verb(ctx, MethodPatch, rawURL, body)
}

// PatchURL is Patch for a parsed URL.
func (c *Client) PatchURL(ctx context.Context, u *url.URL, body any) (string, int, error) {
	return c.verbURL(ctx, MethodPatch, u, body)
}

// Options sends an OPTIONS request and returns the body as text.
func (c *Client) Options(ctx context.Context, rawURL string, body any) (string, int, error) {
	return c.verb(ctx, MethodOptions, rawURL, body)
}

// OptionsURL is Options for a parsed URL.
func (c *Client) OptionsURL(ctx context.Context, u *url.URL, body any) (string, int, error) {
	return c.verbURL(ctx, MethodOptions, u, body)
}

// Trace sends a TRACE request and returns the body as text.
func (c *Client) Trace(ctx context.Context, rawURL string, body any) (string, int, error) {
	return c.verb(ctx, MethodTrace, rawURL, body)
}

// TraceURL is Trace for a parsed URL.
func (c *Client) TraceURL(ctx context.Context, u *url.URL, body any) (string, int, error) {
	return c.verbURL(ctx, MethodTrace, u, body)
}
