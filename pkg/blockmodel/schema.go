package blockmodel

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const blockStateSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "definitions": {
    "variant": {
      "type": "object",
      "required": ["model"],
      "properties": {
        "model": {"type": "string", "minLength": 1},
        "x": {"enum": [0, 90, 180, 270]},
        "y": {"enum": [0, 90, 180, 270]},
        "uvlock": {"type": "boolean"},
        "weight": {"type": "integer", "minimum": 1}
      }
    },
    "variants": {
      "oneOf": [
        {"$ref": "#/definitions/variant"},
        {"type": "array", "minItems": 1, "items": {"$ref": "#/definitions/variant"}}
      ]
    },
    "condition": {
      "type": "object",
      "properties": {
        "OR": {"type": "array", "items": {"$ref": "#/definitions/condition"}},
        "AND": {"type": "array", "items": {"$ref": "#/definitions/condition"}}
      },
      "additionalProperties": {"type": ["string", "boolean", "number"]}
    }
  },
  "type": "object",
  "properties": {
    "variants": {
      "type": "object",
      "additionalProperties": {"$ref": "#/definitions/variants"}
    },
    "multipart": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["apply"],
        "properties": {
          "when": {"$ref": "#/definitions/condition"},
          "apply": {"$ref": "#/definitions/variants"}
        }
      }
    }
  },
  "anyOf": [
    {"required": ["variants"]},
    {"required": ["multipart"]}
  ]
}`

var blockStateValidator = jsonschema.MustCompileString("blockstate.schema.json", blockStateSchema)

// ValidateBlockState checks a raw blockstate document against the blockstate schema.
func ValidateBlockState(data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("could not unmarshal blockstate json: %w", err)
	}
	if err := blockStateValidator.Validate(doc); err != nil {
		return fmt.Errorf("invalid blockstate: %w", err)
	}
	return nil
}
