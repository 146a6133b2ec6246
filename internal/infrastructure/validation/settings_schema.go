// Package validation checks the shape of on-disk documents before decoding.
package validation

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/settings.schema.json
var settingsSchema []byte

const settingsSchemaURL = "settings.schema.json"

// ShapeError lists every place where a document differs from its schema.
type ShapeError struct {
	Messages []string
}

func (e *ShapeError) Error() string {
	if len(e.Messages) == 0 {
		return "document does not match schema"
	}
	return "document does not match schema: " + strings.Join(e.Messages, "; ")
}

// SettingsSchema validates decoded settings JSON against the embedded schema.
// Field values are not range-checked here; that is the sanitizer's job.
type SettingsSchema struct {
	schema *jsonschema.Schema
}

// NewSettingsSchema compiles the embedded settings schema.
func NewSettingsSchema() (*SettingsSchema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	if err := compiler.AddResource(settingsSchemaURL, bytes.NewReader(settingsSchema)); err != nil {
		return nil, fmt.Errorf("failed to add settings schema resource: %w", err)
	}
	schema, err := compiler.Compile(settingsSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile settings schema: %w", err)
	}
	return &SettingsSchema{schema: schema}, nil
}

// MustNewSettingsSchema is like NewSettingsSchema but panics on error.
// The schema is embedded, so failure is a build defect.
func MustNewSettingsSchema() *SettingsSchema {
	s, err := NewSettingsSchema()
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks a document produced by json.Unmarshal into an interface{}.
func (s *SettingsSchema) Validate(doc any) error {
	err := s.schema.Validate(doc)
	if err == nil {
		return nil
	}
	if validationErr, ok := err.(*jsonschema.ValidationError); ok {
		return &ShapeError{Messages: collectMessages(validationErr)}
	}
	return fmt.Errorf("schema validation failed: %w", err)
}

func collectMessages(err *jsonschema.ValidationError) []string {
	var messages []string

	var collect func(*jsonschema.ValidationError)
	collect = func(e *jsonschema.ValidationError) {
		if e.Message != "" && len(e.Causes) == 0 {
			location := e.InstanceLocation
			if location == "" {
				location = "(root)"
			}
			messages = append(messages, fmt.Sprintf("%s: %s", location, e.Message))
		}
		for _, cause := range e.Causes {
			collect(cause)
		}
	}
	collect(err)

	return messages
}
