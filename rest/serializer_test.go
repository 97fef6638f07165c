package rest

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID    int               `json:"id" yaml:"id"`
	Title string            `json:"title" yaml:"title"`
	Tags  []string          `json:"tags,omitempty" yaml:"tags,omitempty"`
	Meta  map[string]string `json:"meta,omitempty" yaml:"meta,omitempty"`
}

func TestSerializers_RoundTrip(t *testing.T) {
	values := []record{
		{},
		{ID: 1, Title: "elden ring"},
		{ID: -3, Title: "ünïcödé <&>", Tags: []string{"a", "b"}},
		{ID: 99, Title: "nested", Meta: map[string]string{"k": "v"}},
	}
	serializers := map[string]Serializer{
		"json":        JSONSerializer{},
		"json indent": JSONSerializer{Indent: "  ", EscapeHTML: true},
		"yaml":        YAMLSerializer{},
		"yaml indent": YAMLSerializer{Indent: 2},
	}

	for name, s := range serializers {
		t.Run(name, func(t *testing.T) {
			for _, v := range values {
				data, err := s.Marshal(v)
				require.NoError(t, err)
				var out record
				require.NoError(t, s.Unmarshal(data, &out))
				assert.Equal(t, v, out)
			}
		})
	}
}

func TestJSONSerializer_Options(t *testing.T) {
	data, err := JSONSerializer{}.Marshal(map[string]string{"t": "<b>"})
	require.NoError(t, err)
	assert.Equal(t, `{"t":"<b>"}`, string(data))

	data, err = JSONSerializer{EscapeHTML: true}.Marshal(map[string]string{"t": "<b>"})
	require.NoError(t, err)
	assert.Equal(t, `{"t":"\u003cb\u003e"}`, string(data))

	strict := JSONSerializer{DisallowUnknownFields: true}
	var r record
	assert.Error(t, strict.Unmarshal([]byte(`{"id":1,"extra":true}`), &r))
	assert.Error(t, strict.Unmarshal([]byte(`{"id":1} {"id":2}`), &r))
	require.NoError(t, strict.Unmarshal([]byte(`{"id":1}`), &r))
	assert.Equal(t, 1, r.ID)

	var v any
	require.NoError(t, JSONSerializer{UseNumber: true}.Unmarshal([]byte(`{"n":12345678901234567890}`), &v))
	assert.Equal(t, json.Number("12345678901234567890"), v.(map[string]any)["n"])
}

func TestMarshalBody_StringsPassThrough(t *testing.T) {
	for _, s := range []string{`"quoted"`, `{"a":1}`, "plain", ""} {
		out, err := marshalBody(JSONSerializer{}, s)
		require.NoError(t, err)
		assert.Equal(t, s, out)
	}

	out, err := marshalBody(JSONSerializer{}, 12)
	require.NoError(t, err)
	assert.Equal(t, "12", out)

	_, err = marshalBody(JSONSerializer{}, func() {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marshaling request body")
	var uerr *json.UnsupportedTypeError
	assert.True(t, errors.As(err, &uerr))
}

func TestCharsets(t *testing.T) {
	assert.NoError(t, ValidateCharset(""))
	assert.NoError(t, ValidateCharset("UTF-8"))
	assert.NoError(t, ValidateCharset("iso-8859-1"))
	assert.NoError(t, ValidateCharset("shift_jis"))
	assert.Error(t, ValidateCharset("martian"))

	encoded, err := encodeText("utf-16le", "ab")
	require.NoError(t, err)
	assert.Equal(t, []byte{'a', 0, 'b', 0}, encoded)

	text, err := decodeText("text/plain; charset=utf-16le", encoded)
	require.NoError(t, err)
	assert.Equal(t, "ab", text)

	// Undeclared or unknown charsets read as UTF-8.
	for _, ctype := range []string{"", "application/json", "text/plain; charset=martian", ";;;"} {
		text, err := decodeText(ctype, []byte("héllo"))
		require.NoError(t, err)
		assert.Equal(t, "héllo", text)
	}

	_, err = encodeText("iso-8859-1", "日本")
	var aerr *ArgumentError
	assert.True(t, errors.As(err, &aerr))

	assert.Equal(t, "application/json; charset=utf-8", contentType("application/json", "utf-8"))
	assert.Equal(t, "text/plain; charset=utf-8", contentType("", ""))
}
