package config

import (
	"encoding/json"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// documentSchema describes the JSON document carried by the embedded
// settings block: a required serialized global profile and an optional
// array of serialized extruder profiles.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["global_quality"],
  "additionalProperties": false,
  "properties": {
    "global_quality": {
      "type": "string",
      "minLength": 1
    },
    "extruder_quality": {
      "type": "array",
      "items": {"type": "string"}
    }
  }
}`

var compiledDocumentSchema = jsonschema.MustCompileString("settings-document.json", documentSchema)

// ValidateDocument checks raw JSON text against the embedded settings
// document schema.
func ValidateDocument(raw []byte) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("settings document is not valid JSON: %w", err)
	}
	if err := compiledDocumentSchema.Validate(doc); err != nil {
		return fmt.Errorf("settings document does not match schema: %w", err)
	}
	return nil
}
