/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

// Package prompts holds the templates for every LLM stage and a small
// binding layer for filling their placeholders. Templates are immutable;
// binding returns a new value, and Build refuses to render a template with
// unbound placeholders so a stage can never ship a prompt with a hole in it.
package prompts
