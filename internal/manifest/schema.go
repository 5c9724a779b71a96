package manifest

import (
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "manifest.schema.json"

const schemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "order":   { "$ref": "#/definitions/entries" },
    "outputs": { "$ref": "#/definitions/entries" }
  },
  "definitions": {
    "entries": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["type", "path"],
        "properties": {
          "type": { "enum": ["file", "image", "terminal"] },
          "path": { "type": "string", "minLength": 1 }
        }
      }
    }
  }
}`

var manifestSchema = jsonschema.MustCompileString(schemaURL, schemaJSON)

func validate(doc any) error {
	if err := manifestSchema.Validate(doc); err != nil {
		return fmt.Errorf("invalid manifest: %w", err)
	}
	return nil
}
