package output

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidateSchema checks a JSON document against a JSON Schema. A broken
// schema or document is an error; a document that simply does not match
// yields a SchemaResult listing every violation.
func ValidateSchema(document, schema string) (*SchemaResult, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", strings.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	v, err := jsonschema.UnmarshalJSON(strings.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if err := compiled.Validate(v); err != nil {
		verr, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return nil, err
		}
		return &SchemaResult{Valid: false, Errors: validationMessages(verr)}, nil
	}
	return &SchemaResult{Valid: true}, nil
}

// validationMessages extracts all validation errors from a jsonschema.ValidationError
func validationMessages(err *jsonschema.ValidationError) []string {
	var msgs []string

	if len(err.Causes) == 0 && err.Message != "" {
		loc := err.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		msgs = append(msgs, fmt.Sprintf("%s: %s", loc, err.Message))
	}

	for _, cause := range err.Causes {
		msgs = append(msgs, validationMessages(cause)...)
	}

	return msgs
}
