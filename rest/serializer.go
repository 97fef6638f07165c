package rest

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Serializer converts structured values to and from request and response
// bodies. Implementations must be safe for concurrent use.
type Serializer interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSONSerializer is the default Serializer. The zero value behaves like
// encoding/json.Marshal and json.Unmarshal except that HTML characters are
// not escaped.
type JSONSerializer struct {
	// Indent, when non-empty, pretty-prints marshaled output.
	Indent string
	// EscapeHTML escapes <, > and & inside strings.
	EscapeHTML bool
	// DisallowUnknownFields rejects object keys with no matching field.
	DisallowUnknownFields bool
	// UseNumber decodes numbers into json.Number instead of float64.
	UseNumber bool
}

func (s JSONSerializer) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(s.EscapeHTML)
	if s.Indent != "" {
		enc.SetIndent("", s.Indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	// Encode terminates every value with a newline.
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func (s JSONSerializer) Unmarshal(data []byte, v any) error {
	if !s.DisallowUnknownFields && !s.UseNumber {
		return json.Unmarshal(data, v)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if s.DisallowUnknownFields {
		dec.DisallowUnknownFields()
	}
	if s.UseNumber {
		dec.UseNumber()
	}
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("invalid character after top-level value")
	}
	return nil
}

// YAMLSerializer encodes bodies as YAML. Pair it with
// WithMediaType("application/yaml").
type YAMLSerializer struct {
	// Indent is the number of spaces per nesting level; 0 means 4.
	Indent int
}

func (s YAMLSerializer) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	if s.Indent > 0 {
		enc.SetIndent(s.Indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s YAMLSerializer) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

// marshalBody applies the body policy: strings pass through untouched,
// everything else goes through the serializer.
func marshalBody(s Serializer, v any) (string, error) {
	if str, ok := v.(string); ok {
		return str, nil
	}
	data, err := s.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "marshaling request body")
	}
	return string(data), nil
}
