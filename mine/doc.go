/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

// Package mine lists merged pull requests from GitHub and turns each one
// into a benchmark input: metadata, base commit, and raw unified diff.
// Filters drop PRs too small or too large to support a meaningful question.
package mine
