// Package schema validates inbound relay bodies against embedded JSON
// Schemas before any upstream call is made.
package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed intake.schema.json
var intakeSchemaJSON string

var intakeSchema = jsonschema.MustCompileString("intake.schema.json", intakeSchemaJSON)

// ValidateIntake checks a raw request body against the intake schema.
// A schema violation is a client error and maps to HTTP 400 at the edge.
func ValidateIntake(body []byte) error {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("request body is not valid JSON: %w", err)
	}
	if err := intakeSchema.Validate(doc); err != nil {
		return fmt.Errorf("request body failed validation: %w", err)
	}
	return nil
}
