package rest

import (
	"context"
	"io"
	"net/url"
)

// URL is a request target given either as text or already parsed.
type URL interface {
	string | *url.URL
}

func newRequest[U URL](m Method, target U) *Request {
	switch u := any(target).(type) {
	case *url.URL:
		return NewRequestURL(m, u)
	case string:
		return NewRequest(m, u)
	}
	return nil
}

// SendAs sends req and materializes the body as T. string, []byte and
// io.ReadCloser (or io.Reader) select text, bytes and stream results; any
// other T is deserialized with the client's Serializer. An empty body yields
// the zero T.
func SendAs[T any](ctx context.Context, c *Client, req *Request) (T, int, error) {
	var out T
	var target Target
	switch p := any(&out).(type) {
	case *string:
		target = AsText()
	case *[]byte:
		target = AsBytes()
	case *io.ReadCloser, *io.Reader:
		target = AsStream()
	default:
		target = Into(p)
	}

	res, err := c.Exchange(ctx, req, target)
	if err != nil {
		var zero T
		return zero, StatusCode(err), err
	}

	switch p := any(&out).(type) {
	case *string:
		*p = res.Text
	case *[]byte:
		*p = res.Bytes
	case *io.ReadCloser:
		*p = res.Stream
	case *io.Reader:
		*p = res.Stream
	}
	return out, res.StatusCode, nil
}

// Get sends a GET request through c and materializes the body as T.
func Get[T any, U URL](ctx context.Context, c *Client, target U, body any) (T, int, error) {
	return SendAs[T](ctx, c, newRequest(MethodGet, target).SetBody(body))
}

// Post sends a POST request through c and materializes the body as T.
func Post[T any, U URL](ctx context.Context, c *Client, target U, body any) (T, int, error) {
	return SendAs[T](ctx, c, newRequest(MethodPost, target).SetBody(body))
}

// Put sends a PUT request through c and materializes the body as T.
func Put[T any, U URL](ctx context.Context, c *Client, target U, body any) (T, int, error) {
	return SendAs[T](ctx, c, newRequest(MethodPut, target).SetBody(body))
}

// Delete sends a DELETE request through c and materializes the body as T.
func Delete[T any, U URL](ctx context.Context, c *Client, target U, body any) (T, int, error) {
	return SendAs[T](ctx, c, newRequest(MethodDelete, target).SetBody(body))
}

// Head sends a HEAD request through c. HEAD responses have no body, so the
// result is always the zero T.
func Head[T any, U URL](ctx context.Context, c *Client, target U, body any) (T, int, error) {
	return SendAs[T](ctx, c, newRequest(MethodHead, target).SetBody(body))
}

// Patch sends a PATCH request through c and materializes the body as T.
func Patch[T any, U URL](ctx context.Context, c *Client, target U, body any) (T, int, error) {
	return SendAs[T](ctx, c, newRequest(MethodPatch, target).SetBody(body))
}

// Options sends an OPTIONS request through c and materializes the body as T.
func Options[T any, U URL](ctx context.Context, c *Client, target U, body any) (T, int, error) {
	return SendAs[T](ctx, c, newRequest(MethodOptions, target).SetBody(body))
}

// Trace sends a TRACE request through c and materializes the body as T.
func Trace[T any, U URL](ctx context.Context, c *Client, target U, body any) (T, int, error) {
	return SendAs[T](ctx, c, newRequest(MethodTrace, target).SetBody(body))
}
