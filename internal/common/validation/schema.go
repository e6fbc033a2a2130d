// Package validation checks generation request options before any network
// call is made on their behalf.
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// generationRequestSchema constrains the caller-facing knobs of one
// generation session. Safety tolerance mirrors the image API's 0-2 range.
const generationRequestSchema = `{
	"type": "object",
	"properties": {
		"prompt": {
			"type": "string",
			"minLength": 1
		},
		"aspect_ratio": {
			"type": "string",
			"pattern": "^[0-9]+:[0-9]+$"
		},
		"safety_tolerance": {
			"type": "integer",
			"minimum": 0,
			"maximum": 2
		},
		"output_format": {
			"type": "string",
			"enum": ["png", "jpeg"]
		},
		"variation_count": {
			"type": "integer",
			"minimum": 0,
			"maximum": 8
		},
		"seed": {
			"type": "integer"
		}
	},
	"additionalProperties": true
}`

var generationSchema = gojsonschema.NewStringLoader(generationRequestSchema)

// Result reports the outcome of one validation pass.
type Result struct {
	Valid  bool
	Errors []string
}

// ValidateGenerationRequest validates request options against the schema.
// The error return covers schema machinery failures only; caller input
// problems land in Result.Errors.
func ValidateGenerationRequest(options map[string]interface{}) (*Result, error) {
	res, err := gojsonschema.Validate(generationSchema, gojsonschema.NewGoLoader(options))
	if err != nil {
		return nil, fmt.Errorf("validate generation request: %w", err)
	}

	out := &Result{Valid: res.Valid()}
	for _, e := range res.Errors() {
		out.Errors = append(out.Errors, e.String())
	}
	return out, nil
}
