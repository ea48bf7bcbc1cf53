/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

// Package synth turns one mined pull request into a benchmark item: a
// question, a reference answer, and a scored rubric. Each PR is processed
// inside an ephemeral checkout of its base commit so the model sees the
// repository exactly as it stood before the change. The question stage never
// sees the diff; the answer and rubric stages do.
package synth
