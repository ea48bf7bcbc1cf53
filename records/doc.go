/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

// Package records defines the data model shared by every pipeline stage and
// the line-delimited JSON persistence it flows through.
//
// Each record type validates itself at the parse boundary, so malformed
// model output is rejected before it reaches disk or a downstream stage.
// Files are append-only; every line is a self-contained JSON object, and
// consumers join stages by PR number rather than line position.
package records
