/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
)

// Tool is a single capability the executor exposes to the model. Handlers
// return a result map that is serialized back into the conversation; errors
// are reported to the model inside the map rather than aborting the loop.
type Tool struct {
	Name        string
	Description string
	Parameters  []Parameter
	Handle      func(ctx context.Context, args map[string]any) map[string]any
}

// Parameter describes one tool parameter.
type Parameter struct {
	Name        string
	Type        string // "string", "integer", "boolean", "number"
	Description string
	Required    bool
}

// Param extracts a required string-typed argument, returning an error map
// suitable for the model when it is missing or mistyped.
func Param[T any](args map[string]any, name string) (T, map[string]any) {
	var zero T
	value, ok := args[name]
	if !ok {
		return zero, ErrorResult("%s parameter is required", name)
	}
	v, ok := value.(T)
	if !ok {
		return zero, ErrorResult("%s parameter must be of type %T, got %T", name, zero, value)
	}
	return v, nil
}

// ErrorResult builds an error payload for the model.
func ErrorResult(format string, args ...any) map[string]any {
	return map[string]any{"error": fmt.Sprintf(format, args...)}
}

// definition converts the tool into the provider's schema representation.
func (t Tool) definition() anthropic.ToolParam {
	properties := make(map[string]any, len(t.Parameters))
	var required []string
	for _, p := range t.Parameters {
		properties[p.Name] = map[string]any{
			"type":        p.Type,
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return anthropic.ToolParam{
		Name:        t.Name,
		Description: anthropic.String(t.Description),
		InputSchema: anthropic.ToolInputSchemaParam{
			Type:       "object",
			Properties: properties,
			Required:   required,
		},
	}
}
