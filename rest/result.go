package rest

import (
	"io"
	"net/http"
)

// Kind says how a response body was materialized.
type Kind int

const (
	// KindEmpty means the response carried no body.
	KindEmpty Kind = iota
	KindText
	KindBytes
	KindStream
	KindStructured
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindText:
		return "text"
	case KindBytes:
		return "bytes"
	case KindStream:
		return "stream"
	case KindStructured:
		return "structured"
	}
	return "unknown"
}

// Target selects how Exchange materializes the response body.
type Target struct {
	kind Kind
	into any
}

// AsText reads the whole body as a string decoded with the charset the
// response declares.
func AsText() Target { return Target{kind: KindText} }

// AsBytes reads the whole body as raw bytes.
func AsBytes() Target { return Target{kind: KindBytes} }

// AsStream hands back the live body without buffering it. The caller owns
// Result.Stream and must close it.
func AsStream() Target { return Target{kind: KindStream} }

// Into deserializes the body into v, which must be a non-nil pointer. An
// empty body leaves v untouched.
func Into(v any) Target { return Target{kind: KindStructured, into: v} }

// Kind returns the kind the target asks for.
func (t Target) Kind() Kind { return t.kind }

// Result is a materialized response. Only the field matching Kind is set,
// except that an empty body still yields a non-nil Bytes for AsBytes and
// http.NoBody for AsStream.
type Result struct {
	StatusCode int
	Status     string
	Header     http.Header
	Kind       Kind
	Text       string
	Bytes      []byte
	Stream     io.ReadCloser
	Timing     Timing
}

// IsSuccess reports whether status is in the 2xx range.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}

// IsSuccess reports whether the response status is in the 2xx range.
func (r *Result) IsSuccess() bool {
	return IsSuccess(r.StatusCode)
}

// streamBody releases the call's timeout when the caller closes the stream.
type streamBody struct {
	io.ReadCloser
	cancel func()
}

func (s *streamBody) Close() error {
	err := s.ReadCloser.Close()
	s.cancel()
	return err
}
