/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package llm

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// reflector is tuned for prompt format instructions: inline schemas with
// required fields inferred from jsonschema tags.
var reflector = jsonschema.Reflector{
	RequiredFromJSONSchemaTags: true,
	ExpandedStruct:             true,
	AllowAdditionalProperties:  true,
	DoNotReference:             true,
}

// ResponseSchema renders the JSON schema of T for embedding in a prompt, so
// the model knows the exact structure Extract will demand.
func ResponseSchema[T any]() string {
	var zero T
	schema := reflector.Reflect(&zero)
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		// Reflection of our own types cannot fail to marshal.
		panic(fmt.Sprintf("marshaling schema for %T: %v", zero, err))
	}
	return string(data)
}

// FormatInstructions wraps ResponseSchema in the phrasing stages bind into
// their prompts.
func FormatInstructions[T any]() string {
	return "Respond with a single fenced ```json code block containing one JSON object that conforms to this schema:\n" + ResponseSchema[T]()
}
