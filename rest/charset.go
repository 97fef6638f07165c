package rest

import (
	"mime"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// DefaultCharset is used for request bodies when none is configured and for
// response bodies that do not declare one.
const DefaultCharset = "utf-8"

func isUTF8(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return true
	}
	return false
}

// lookupCharset resolves a charset label. A nil encoding means UTF-8, which
// needs no transcoding.
func lookupCharset(name string) (encoding.Encoding, error) {
	if isUTF8(name) {
		return nil, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, &ArgumentError{Arg: "charset", Msg: "unknown charset " + quote(name), Err: err}
	}
	return enc, nil
}

// ValidateCharset reports whether name is a charset label the client can
// encode to.
func ValidateCharset(name string) error {
	_, err := lookupCharset(name)
	return err
}

func encodeText(charset, text string) ([]byte, error) {
	enc, err := lookupCharset(charset)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return []byte(text), nil
	}
	out, err := enc.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, &ArgumentError{Arg: "body", Msg: "not representable in " + charset, Err: err}
	}
	return out, nil
}

// decodeText converts a response body to a Go string using the charset
// declared by contentType. Unknown labels fall back to UTF-8.
func decodeText(contentType string, data []byte) (string, error) {
	enc := responseCharset(contentType)
	if enc == nil {
		return string(data), nil
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", errors.Wrap(err, "decoding response text")
	}
	return string(out), nil
}

func responseCharset(contentType string) encoding.Encoding {
	if contentType == "" {
		return nil
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil
	}
	enc, err := lookupCharset(params["charset"])
	if err != nil {
		return nil
	}
	return enc
}

// contentType formats a Content-Type value for a text body.
func contentType(mediaType, charset string) string {
	if mediaType == "" {
		mediaType = "text/plain"
	}
	if charset == "" {
		charset = DefaultCharset
	}
	return mime.FormatMediaType(mediaType, map[string]string{"charset": charset})
}
