package output

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Extract pulls one value out of a JSON document. path is either a JSONPath
// expression ($.games[0].title) or a native gjson path (games.0.title).
// Strings come back unquoted, other values as their JSON text.
func Extract(json string, path string) (string, error) {
	if json == "" {
		return "", fmt.Errorf("empty JSON document")
	}
	if path == "" {
		return "", fmt.Errorf("empty path")
	}
	if !gjson.Valid(json) {
		return "", fmt.Errorf("response is not valid JSON")
	}

	result := gjson.Get(json, toGjsonPath(path))
	if !result.Exists() {
		return "", fmt.Errorf("path not found: %s", path)
	}

	switch result.Type {
	case gjson.Null:
		return "null", nil
	case gjson.String:
		return result.String(), nil
	}
	return result.Raw, nil
}

// toGjsonPath converts a JSONPath expression to a gjson path
func toGjsonPath(path string) string {
	if !strings.HasPrefix(path, "$") {
		return path
	}

	path = strings.TrimPrefix(path, "$")
	path = strings.TrimPrefix(path, ".")
	if path == "" {
		return "@this"
	}

	// Quoted member names: ['name'] and ["name"]
	for _, q := range []string{"'", "\""} {
		path = strings.ReplaceAll(path, "["+q, ".")
		path = strings.ReplaceAll(path, q+"]", "")
	}

	// Indexes: [0] -> .0
	path = strings.ReplaceAll(path, "[", ".")
	path = strings.ReplaceAll(path, "]", "")

	return strings.TrimPrefix(path, ".")
}
