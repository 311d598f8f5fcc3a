package drawing

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// metadataSchema constrains the well-known metadata keys. Other keys are free-form.
const metadataSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"properties": {
		"title": {"type": "string", "minLength": 1},
		"width": {"type": "number", "exclusiveMinimum": 0},
		"height": {"type": "number", "exclusiveMinimum": 0},
		"backgroundColor": {"type": "string", "pattern": "^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$"},
		"tags": {"type": "array", "items": {"type": "string"}},
		"author": {"type": "string"}
	},
	"additionalProperties": true
}`

// MetadataValidator checks drawing metadata against a JSON Schema.
type MetadataValidator struct {
	schema *gojsonschema.Schema
}

// NewMetadataValidator compiles the given JSON Schema. An empty schema uses the built-in one.
func NewMetadataValidator(schemaJSON string) (*MetadataValidator, error) {
	if schemaJSON == "" {
		schemaJSON = metadataSchema
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to compile metadata schema: %w", err)
	}
	return &MetadataValidator{schema: s}, nil
}

// MustMetadataValidator is NewMetadataValidator that panics on error.
func MustMetadataValidator(schemaJSON string) *MetadataValidator {
	v, err := NewMetadataValidator(schemaJSON)
	if err != nil {
		panic(err)
	}
	return v
}

// Validate returns an error listing every schema violation of metadata.
func (v *MetadataValidator) Validate(metadata map[string]any) error {
	result, err := v.schema.Validate(gojsonschema.NewGoLoader(metadata))
	if err != nil {
		return fmt.Errorf("metadata validation failed: %w", err)
	}

	if !result.Valid() {
		var errs []string
		for _, e := range result.Errors() {
			errs = append(errs, e.String())
		}
		return fmt.Errorf("invalid metadata: %s", strings.Join(errs, "; "))
	}
	return nil
}
