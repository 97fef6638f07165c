package rest

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

var (
	// ErrStatus is wrapped by a TransportError raised because the response
	// status was outside 2xx while success was required.
	ErrStatus = errors.New("unsuccessful status code")

	// ErrBufferExceeded is wrapped by a TransportError raised because a
	// buffered response body was larger than MaxResponseBufferSize.
	ErrBufferExceeded = errors.New("response body exceeds max buffer size")
)

// ArgumentError reports an invalid or missing caller-supplied value. It is
// always returned before any network activity.
type ArgumentError struct {
	Arg string
	Msg string
	Err error
}

func (e *ArgumentError) Error() string {
	msg := "rest: invalid argument " + e.Arg
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ArgumentError) Unwrap() error { return e.Err }

// TransportError reports a failure to complete the round trip: connectivity,
// DNS, TLS, timeout, an oversized body, or an unsuccessful status when
// success was required. StatusCode is zero unless a response was received.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 && errors.Is(e.Err, ErrStatus) {
		return fmt.Sprintf("rest: %s %s: %s (%d)", e.Method, e.URL, e.Err, e.StatusCode)
	}
	return fmt.Sprintf("rest: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the failure was caused by the client or context
// deadline.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(e.Err, &t) && t.Timeout()
}

// SerializationError reports that a response body could not be
// deserialized into the requested value. Response holds the raw body text.
type SerializationError struct {
	Response   string
	StatusCode int
	Err        error
}

func (e *SerializationError) Error() string {
	return "rest: error when attempting to deserialize response: " + e.Err.Error()
}

func (e *SerializationError) Unwrap() error { return e.Err }

// CancellationError reports that the caller's context was canceled while the
// call was in flight. No partial result accompanies it.
//
// Only an explicit cancel produces it. A deadline on the caller's context
// expiring is a timeout like the client's own: it surfaces as a
// *TransportError whose Timeout method reports true.
type CancellationError struct {
	Method string
	URL    string
	Err    error
}

func (e *CancellationError) Error() string {
	return fmt.Sprintf("rest: %s %s: canceled: %v", e.Method, e.URL, e.Err)
}

func (e *CancellationError) Unwrap() error { return e.Err }

// StatusCode extracts the HTTP status carried by err, or 0 if none.
func StatusCode(err error) int {
	var te *TransportError
	if errors.As(err, &te) {
		return te.StatusCode
	}
	var se *SerializationError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

func quote(s string) string {
	return strconv.Quote(s)
}
