package rest

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptrace"
	"time"

	"github.com/pkg/errors"
)

// Client sends requests through one shared transport and materializes the
// responses.
//
// Calls may run concurrently. The setters are not synchronized: changing
// the configuration while calls are in flight is the caller's
// responsibility and the last write wins. Prefer per-request overrides
// (Request.AddHeader, SetMediaType, SetCharset) over mutating a client that
// is in use.
type Client struct {
	cfg    Config
	doer   Doer
	logger *slog.Logger
}

// New creates a client from DefaultConfig and the given options. Without
// WithTransport or WithHTTPClient it owns a fresh *http.Client.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		cfg:    DefaultConfig(),
		doer:   newDefaultTransport(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustNew is like New but panics on an invalid option.
func MustNew(opts ...Option) *Client {
	c, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Config returns a copy of the current configuration.
func (c *Client) Config() Config {
	return c.cfg.clone()
}

// SetBaseURL sets the URL relative request URLs resolve against. An empty
// string clears it.
func (c *Client) SetBaseURL(baseURL string) error {
	if baseURL == "" {
		c.cfg.BaseURL = nil
		return nil
	}
	u, err := parseURL(baseURL)
	if err != nil {
		return err
	}
	if !u.IsAbs() {
		return &ArgumentError{Arg: "base url", Msg: "must be absolute, got " + quote(baseURL)}
	}
	c.cfg.BaseURL = u
	return nil
}

// SetMediaType sets the Content-Type of serialized and string bodies.
func (c *Client) SetMediaType(mediaType string) {
	c.cfg.MediaType = mediaType
}

// SetCharset sets the charset used to encode request bodies.
func (c *Client) SetCharset(charset string) error {
	if err := ValidateCharset(charset); err != nil {
		return err
	}
	c.cfg.Charset = charset
	return nil
}

// SetSerializer replaces the serializer. Nil restores the JSON default.
func (c *Client) SetSerializer(s Serializer) {
	if s == nil {
		s = JSONSerializer{}
	}
	c.cfg.Serializer = s
}

// SetEnsureSuccess turns non-2xx responses into TransportErrors.
func (c *Client) SetEnsureSuccess(ensure bool) {
	c.cfg.EnsureSuccess = ensure
}

// SetTimeout sets the per-call timeout. Zero disables it.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.cfg.Timeout = timeout
}

// SetMaxResponseBufferSize bounds buffered response bodies. Zero or less
// disables the limit.
func (c *Client) SetMaxResponseBufferSize(n int64) {
	c.cfg.MaxResponseBufferSize = n
}

// AddDefaultHeader appends value to a header sent with every request.
func (c *Client) AddDefaultHeader(name, value string) error {
	return c.AddDefaultHeaderValues(name, value)
}

// AddDefaultHeaderValues appends values to a header sent with every request.
func (c *Client) AddDefaultHeaderValues(name string, values ...string) error {
	if len(values) == 0 && name != "" {
		return &ArgumentError{Arg: "header", Msg: "no values for " + quote(name)}
	}
	if err := checkHeader(name, values...); err != nil {
		return err
	}
	for _, v := range values {
		c.cfg.DefaultHeaders.Add(name, v)
	}
	return nil
}

// ClearDefaultHeaders removes every default header.
func (c *Client) ClearDefaultHeaders() {
	c.cfg.DefaultHeaders = make(http.Header)
}

// CloseIdleConnections closes idle connections held by the transport, when
// the transport supports it.
func (c *Client) CloseIdleConnections() {
	if ci, ok := c.doer.(interface{ CloseIdleConnections() }); ok {
		ci.CloseIdleConnections()
	}
}

// Send sends req and returns the body as text with the status code.
func (c *Client) Send(ctx context.Context, req *Request) (string, int, error) {
	res, err := c.Exchange(ctx, req, AsText())
	if err != nil {
		return "", StatusCode(err), err
	}
	return res.Text, res.StatusCode, nil
}

// Exchange sends req and materializes the response as target asks. With
// AsStream the caller must close Result.Stream; in every other case the
// response is fully released before Exchange returns.
func (c *Client) Exchange(ctx context.Context, req *Request, target Target) (*Result, error) {
	return c.exchange(ctx, req, target, c.cfg.EnsureSuccess)
}

func (c *Client) exchange(ctx context.Context, req *Request, target Target, ensure bool) (res *Result, err error) {
	if req == nil {
		return nil, &ArgumentError{Arg: "request", Msg: "must not be nil"}
	}
	if target.kind == KindEmpty {
		target = AsText()
	}
	if target.kind == KindStructured && target.into == nil {
		return nil, &ArgumentError{Arg: "target", Msg: "nil destination"}
	}

	cfg := c.cfg
	callCtx, cancel := ctx, context.CancelFunc(func() {})
	if cfg.Timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
	}

	httpReq, err := req.Build(callCtx, &cfg)
	if err != nil {
		cancel()
		return nil, err
	}

	tr := newTracer()
	httpReq = httpReq.WithContext(httptrace.WithClientTrace(httpReq.Context(), tr.clientTrace()))
	defer func() {
		c.log(ctx, httpReq, res, err, time.Since(tr.start))
	}()

	resp, err := c.doer.Do(httpReq)
	if err != nil {
		cancel()
		return nil, failure(ctx, httpReq, 0, err)
	}

	res = &Result{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
	}

	if ensure && !IsSuccess(resp.StatusCode) {
		resp.Body.Close()
		cancel()
		return nil, &TransportError{
			Method:     httpReq.Method,
			URL:        httpReq.URL.String(),
			StatusCode: resp.StatusCode,
			Err:        ErrStatus,
		}
	}

	if target.kind == KindStream {
		res.Timing = tr.finish(time.Time{})
		if resp.ContentLength == 0 || httpReq.Method == http.MethodHead {
			resp.Body.Close()
			cancel()
			res.Kind, res.Stream = KindEmpty, http.NoBody
			return res, nil
		}
		res.Kind, res.Stream = KindStream, &streamBody{ReadCloser: resp.Body, cancel: cancel}
		return res, nil
	}

	defer cancel()
	transferStart := time.Now()
	data, err := readBody(resp.Body, cfg.MaxResponseBufferSize)
	resp.Body.Close()
	res.Timing = tr.finish(transferStart)
	if err != nil {
		return nil, failure(ctx, httpReq, resp.StatusCode, err)
	}

	if err := materialize(res, data, target, cfg.serializer()); err != nil {
		return nil, err
	}
	return res, nil
}

// materialize fills res from a fully buffered body.
func materialize(res *Result, data []byte, target Target, s Serializer) error {
	ctype := res.Header.Get("Content-Type")

	switch target.kind {
	case KindBytes:
		if data == nil {
			data = []byte{}
		}
		res.Bytes = data
		res.Kind = KindBytes
		if len(data) == 0 {
			res.Kind = KindEmpty
		}
		return nil

	case KindStructured:
		if len(bytes.TrimSpace(data)) == 0 {
			res.Kind = KindEmpty
			return nil
		}
		if err := s.Unmarshal(data, target.into); err != nil {
			text, derr := decodeText(ctype, data)
			if derr != nil {
				text = string(data)
			}
			return &SerializationError{Response: text, StatusCode: res.StatusCode, Err: err}
		}
		res.Kind = KindStructured
		return nil
	}

	if len(data) == 0 {
		res.Kind = KindEmpty
		return nil
	}
	text, err := decodeText(ctype, data)
	if err != nil {
		return &SerializationError{Response: string(data), StatusCode: res.StatusCode, Err: err}
	}
	res.Text, res.Kind = text, KindText
	return nil
}

func readBody(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, errors.Wrap(err, "reading response body")
		}
		return data, nil
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, errors.Wrap(err, "reading response body")
	}
	if int64(len(data)) > limit {
		return nil, ErrBufferExceeded
	}
	return data, nil
}

// failure classifies a transport-level error. Only cancellation of the
// caller's own context is a CancellationError; the client's timeout
// expiring is a TransportError.
func failure(ctx context.Context, req *http.Request, status int, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return &CancellationError{Method: req.Method, URL: req.URL.String(), Err: err}
	}
	return &TransportError{Method: req.Method, URL: req.URL.String(), StatusCode: status, Err: err}
}

func (c *Client) log(ctx context.Context, req *http.Request, res *Result, err error, elapsed time.Duration) {
	if !c.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	attrs := []slog.Attr{
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
		slog.Duration("elapsed", elapsed),
	}
	if res != nil {
		attrs = append(attrs, slog.Int("status", res.StatusCode), slog.String("kind", res.Kind.String()))
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "rest call", attrs...)
}
