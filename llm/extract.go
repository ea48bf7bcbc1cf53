/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package llm

import (
	"bytes"
	"encoding/json"
	"strings"

	"prbench.dev/prbench/faults"
)

// ExtractJSON pulls JSON content out of a model response that may wrap it in
// markdown code fences. Without fences the trimmed input is returned as-is.
func ExtractJSON(responseText string) string {
	// Prefer an explicit ```json block on its own lines.
	lines := strings.Split(responseText, "\n")
	var buf bytes.Buffer
	inBlock := false
	found := false
	for _, line := range lines {
		if !inBlock && line == "```json" {
			inBlock = true
			found = true
			continue
		}
		if inBlock && line == "```" {
			break
		}
		if inBlock {
			if buf.Len() > 0 {
				buf.WriteString("\n")
			}
			buf.WriteString(line)
		}
	}
	if found {
		return strings.TrimSpace(buf.String())
	}

	// Fallback: strip inline fences and stray whitespace.
	responseText = strings.TrimSpace(responseText)
	responseText = strings.TrimPrefix(responseText, "```json")
	responseText = strings.TrimPrefix(responseText, "```")
	responseText = strings.TrimSuffix(responseText, "```")
	return strings.TrimSpace(responseText)
}

// Extract parses a model response into T. Models sometimes drop the opening
// brace when primed with "{"; a second attempt re-wraps before giving up
// with a malformed-output fault.
func Extract[T any](responseText string) (T, error) {
	var result T
	content := ExtractJSON(responseText)

	if err := json.Unmarshal([]byte(content), &result); err == nil {
		return result, nil
	}
	if !strings.HasPrefix(content, "{") {
		if err := json.Unmarshal([]byte("{"+content), &result); err == nil {
			return result, nil
		}
	}
	return result, faults.New(faults.MalformedOutput, "llm.Extract",
		"response is not valid JSON for %T: %.200s", result, content)
}
