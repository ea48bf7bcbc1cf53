/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

// Package tools exposes read-only repository inspection to LLM stages: a
// bounded file hierarchy listing, single-file reads constrained to the
// worktree, and the pull request diff. Each synthesis stage receives a
// closed capability set so that, in particular, question generation can
// never read the diff.
package tools
