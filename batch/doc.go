/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

// Package batch fans work items out to a bounded worker pool. Failures stay
// with their item instead of aborting the run, cancellation stops scheduling
// but lets in-flight work finish, and a run ends with a per-fault-kind
// summary.
package batch
