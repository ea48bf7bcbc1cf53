/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

// Package agentrun executes candidate models against benchmark questions.
// Candidates get an ephemeral checkout of the base commit and file
// inspection tools, but never the diff they are scored against.
package agentrun
