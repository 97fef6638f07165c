package rest

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// Request describes one pending HTTP call. Setters return the receiver so
// calls can be chained; the first invalid argument is remembered and
// reported by Build (and therefore by every send method), or by Err.
//
// A Request is not consumed by sending it. Each Build produces a fresh
// *http.Request, so the same descriptor can be sent again unless its body
// is an io.Reader.
type Request struct {
	method    Method
	rawURL    string
	url       *url.URL
	header    http.Header
	body      any
	mediaType string
	charset   string
	params    url.Values
	options   map[string]any
	err       error
}

// NewRequest creates a request for the given method and URL. The URL may be
// relative to the client's base URL.
func NewRequest(method Method, rawURL string) *Request {
	r := &Request{header: make(http.Header)}
	return r.SetMethod(method).SetURL(rawURL)
}

// NewRequestURL is NewRequest for an already parsed URL.
func NewRequestURL(method Method, u *url.URL) *Request {
	r := &Request{header: make(http.Header)}
	return r.SetMethod(method).SetURLValue(u)
}

func (r *Request) fail(err error) *Request {
	if r.err == nil {
		r.err = err
	}
	return r
}

// Err returns the first error recorded by a setter.
func (r *Request) Err() error { return r.err }

// SetMethod sets the HTTP verb.
func (r *Request) SetMethod(m Method) *Request {
	if !m.Valid() {
		return r.fail(&ArgumentError{Arg: "method", Msg: "unsupported method " + quote(string(m))})
	}
	r.method = m
	return r
}

// SetURL sets the target URL from text. Relative URLs are resolved against
// the client's base URL at send time.
func (r *Request) SetURL(rawURL string) *Request {
	if rawURL == "" {
		return r.fail(&ArgumentError{Arg: "url", Msg: "must not be empty"})
	}
	u, err := parseURL(rawURL)
	if err != nil {
		return r.fail(err)
	}
	r.rawURL, r.url = rawURL, u
	return r
}

// SetURLValue sets the target URL.
func (r *Request) SetURLValue(u *url.URL) *Request {
	if u == nil {
		return r.fail(&ArgumentError{Arg: "url", Msg: "must not be nil"})
	}
	r.rawURL, r.url = u.String(), u
	return r
}

// AddHeader appends value to the header named key.
func (r *Request) AddHeader(key, value string) *Request {
	if err := checkHeader(key, value); err != nil {
		return r.fail(err)
	}
	r.header.Add(key, value)
	return r
}

// AddHeaderValues appends every value to the header named key.
func (r *Request) AddHeaderValues(key string, values ...string) *Request {
	if len(values) == 0 && key != "" {
		return r.fail(&ArgumentError{Arg: "header", Msg: "no values for " + quote(key)})
	}
	if err := checkHeader(key, values...); err != nil {
		return r.fail(err)
	}
	for _, v := range values {
		r.header.Add(key, v)
	}
	return r
}

// checkHeader rejects names and values net/http would refuse to send.
func checkHeader(name string, values ...string) error {
	if name == "" {
		return &ArgumentError{Arg: "header", Msg: "name must not be empty"}
	}
	if !httpguts.ValidHeaderFieldName(name) {
		return &ArgumentError{Arg: "header", Msg: "invalid name " + quote(name)}
	}
	for _, v := range values {
		if !httpguts.ValidHeaderFieldValue(v) {
			return &ArgumentError{Arg: "header", Msg: "invalid value for " + quote(name)}
		}
	}
	return nil
}

// ClearHeaders removes every header set on the request.
func (r *Request) ClearHeaders() *Request {
	r.header = make(http.Header)
	return r
}

// SetBody sets the request body. Strings are sent verbatim and an empty
// string sends no content. []byte and io.Reader are sent as raw bytes,
// url.Values as a form. Anything else is serialized with the client's
// Serializer.
func (r *Request) SetBody(body any) *Request {
	r.body = body
	return r
}

// SetMediaType overrides the client's media type for this request's body.
func (r *Request) SetMediaType(mediaType string) *Request {
	r.mediaType = mediaType
	return r
}

// SetCharset overrides the client's charset for this request's body.
func (r *Request) SetCharset(charset string) *Request {
	if err := ValidateCharset(charset); err != nil {
		return r.fail(err)
	}
	r.charset = charset
	return r
}

// AddParameter records a form parameter. Parameters are only sent once
// MakeParametersURLEncoded is called.
func (r *Request) AddParameter(key, value string) *Request {
	if key == "" {
		return r.fail(&ArgumentError{Arg: "parameter", Msg: "key must not be empty"})
	}
	if value == "" {
		return r.fail(&ArgumentError{Arg: "parameter", Msg: "value for " + quote(key) + " must not be empty"})
	}
	if r.params == nil {
		r.params = make(url.Values)
	}
	r.params.Add(key, value)
	return r
}

// MakeParametersURLEncoded replaces the body with the recorded parameters
// encoded as application/x-www-form-urlencoded. It does nothing when no
// parameter was added.
func (r *Request) MakeParametersURLEncoded() *Request {
	if r.params == nil {
		return r
	}
	form := make(url.Values, len(r.params))
	for k, v := range r.params {
		form[k] = append([]string(nil), v...)
	}
	r.body = form
	return r
}

// SetOption attaches an arbitrary value to the outgoing request's context,
// retrievable by transports and middleware through RequestOption.
func (r *Request) SetOption(key string, value any) *Request {
	if key == "" {
		return r.fail(&ArgumentError{Arg: "option", Msg: "key must not be empty"})
	}
	if r.options == nil {
		r.options = make(map[string]any)
	}
	if _, exists := r.options[key]; !exists {
		r.options[key] = value
	}
	return r
}

// Method returns the request verb.
func (r *Request) Method() Method { return r.method }

// URL returns the URL as given, before resolution.
func (r *Request) URL() string { return r.rawURL }

// Header returns a copy of the request headers.
func (r *Request) Header() http.Header { return r.header.Clone() }

// Body returns the body as given to SetBody.
func (r *Request) Body() any { return r.body }

type optionsKey struct{}

// RequestOption returns a value attached with Request.SetOption.
func RequestOption(ctx context.Context, key string) (any, bool) {
	opts, _ := ctx.Value(optionsKey{}).(map[string]any)
	v, ok := opts[key]
	return v, ok
}

// Build resolves the URL against cfg.BaseURL, encodes the body according to
// cfg, merges cfg.DefaultHeaders and returns a transport-ready request bound
// to ctx. Headers set on the request replace defaults of the same name.
func (r *Request) Build(ctx context.Context, cfg *Config) (*http.Request, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.method == "" {
		return nil, &ArgumentError{Arg: "method", Msg: "not set"}
	}
	if r.url == nil {
		return nil, &ArgumentError{Arg: "url", Msg: "not set"}
	}

	target, err := resolveURL(cfg.BaseURL, r.url)
	if err != nil {
		return nil, err
	}

	body, length, ctype, err := r.encodeBody(cfg)
	if err != nil {
		return nil, err
	}

	if len(r.options) > 0 {
		ctx = context.WithValue(ctx, optionsKey{}, r.options)
	}

	req, err := http.NewRequestWithContext(ctx, string(r.method), target.String(), body)
	if err != nil {
		return nil, &ArgumentError{Arg: "url", Err: err}
	}
	if body == http.NoBody {
		req.ContentLength = 0
	} else if length >= 0 {
		req.ContentLength = length
	}

	for key, values := range cfg.DefaultHeaders {
		req.Header[key] = append([]string(nil), values...)
	}
	for key, values := range r.header {
		req.Header[key] = append([]string(nil), values...)
	}
	if ctype != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", ctype)
	}

	return req, nil
}

// encodeBody returns the payload reader, its length (-1 if unknown) and the
// Content-Type to use when the caller did not set one.
func (r *Request) encodeBody(cfg *Config) (io.Reader, int64, string, error) {
	mediaType := firstNonEmpty(r.mediaType, cfg.MediaType)
	charset := firstNonEmpty(r.charset, cfg.Charset, DefaultCharset)

	switch b := r.body.(type) {
	case nil:
		return nil, 0, "", nil
	case []byte:
		if len(b) == 0 {
			return http.NoBody, 0, "", nil
		}
		return bytes.NewReader(b), int64(len(b)), r.mediaType, nil
	case io.Reader:
		return b, -1, r.mediaType, nil
	case url.Values:
		encoded := b.Encode()
		return strings.NewReader(encoded), int64(len(encoded)), "application/x-www-form-urlencoded", nil
	}

	text, err := marshalBody(cfg.serializer(), r.body)
	if err != nil {
		return nil, 0, "", &ArgumentError{Arg: "body", Err: err}
	}
	if text == "" {
		return http.NoBody, 0, "", nil
	}
	payload, err := encodeText(charset, text)
	if err != nil {
		return nil, 0, "", err
	}
	return bytes.NewReader(payload), int64(len(payload)), contentType(mediaType, charset), nil
}

func parseURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &ArgumentError{Arg: "url", Msg: "malformed " + quote(rawURL), Err: err}
	}
	if u.IsAbs() && u.Host == "" && (u.Scheme == "http" || u.Scheme == "https") {
		return nil, &ArgumentError{Arg: "url", Msg: "missing host in " + quote(rawURL)}
	}
	return u, nil
}

// resolveURL applies RFC 3986 reference resolution, so a base URL meant as a
// directory needs a trailing slash.
func resolveURL(base, u *url.URL) (*url.URL, error) {
	if u.IsAbs() {
		return u, nil
	}
	if base == nil {
		return nil, &ArgumentError{Arg: "url", Msg: "relative url " + quote(u.String()) + " with no base url"}
	}
	return base.ResolveReference(u), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
