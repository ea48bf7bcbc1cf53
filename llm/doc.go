/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

// Package llm runs tool-augmented model conversations against the Anthropic
// API and parses the final response into typed results.
//
// An executor is constructed once per pipeline stage with that stage's
// system instructions; Execute then drives a single conversation: prompt
// out, tool calls dispatched to their handlers, final text parsed as JSON
// into the stage's response type. Transient API failures (429, 503, 504,
// 529) retry with exponential backoff; everything else surfaces as an API
// fault. Unparseable final output is a malformed-output fault, which stages
// may retry with the same input.
package llm
