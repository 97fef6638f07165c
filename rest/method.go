package rest

import (
	"net/http"
	"strings"
)

// Method is an HTTP verb accepted by the request builder.
type Method string

// Supported methods.
const (
	MethodGet     Method = http.MethodGet
	MethodPost    Method = http.MethodPost
	MethodPut     Method = http.MethodPut
	MethodDelete  Method = http.MethodDelete
	MethodHead    Method = http.MethodHead
	MethodPatch   Method = http.MethodPatch
	MethodOptions Method = http.MethodOptions
	MethodTrace   Method = http.MethodTrace
)

// PatchSupported reports whether the underlying transport can issue PATCH
// requests. net/http always can; the flag exists so callers written against
// other transports have something to check.
const PatchSupported = true

var methods = []Method{
	MethodGet,
	MethodPost,
	MethodPut,
	MethodDelete,
	MethodHead,
	MethodPatch,
	MethodOptions,
	MethodTrace,
}

// Methods returns every supported method in declaration order.
func Methods() []Method {
	out := make([]Method, len(methods))
	copy(out, methods)
	return out
}

// Valid reports whether m is one of the supported methods.
func (m Method) Valid() bool {
	for _, known := range methods {
		if m == known {
			return true
		}
	}
	return false
}

func (m Method) String() string {
	return string(m)
}

// ParseMethod converts a case-insensitive verb name into a Method.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", &ArgumentError{Arg: "method", Msg: "unsupported method " + quote(s)}
	}
	return m, nil
}
