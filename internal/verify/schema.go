// internal/verify/schema.go
// Package verify re-checks a built bundle on disk: document shape,
// count consistency, sample id contiguity, and index fidelity.
package verify

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// logDocumentSchema pins the shape of the fields the sampler relies
// on. Everything outside this subset is viewer payload and passes
// through unconstrained.
const logDocumentSchema = `{
  "type": "object",
  "properties": {
    "samples": {
      "type": "array"
    },
    "eval": {
      "type": "object",
      "properties": {
        "dataset": {
          "type": "object",
          "properties": {
            "samples": {"type": "integer", "minimum": 0},
            "sample_ids": {"type": "array", "items": {"type": "integer"}}
          }
        }
      }
    },
    "results": {
      "type": "object",
      "properties": {
        "total_samples": {"type": "integer", "minimum": 0},
        "completed_samples": {"type": "integer", "minimum": 0}
      }
    }
  }
}`

// ValidateDocument checks raw log-document JSON against the schema.
// It returns one description per violation; an empty slice means the
// document conforms. The error covers failures of the validation
// process itself, malformed JSON included.
func ValidateDocument(data []byte) ([]string, error) {
	schemaLoader := gojsonschema.NewStringLoader(logDocumentSchema)
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}
	var details []string
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return details, nil
}
