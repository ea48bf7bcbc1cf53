/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

// Package multiturn runs the bounded feedback loop: answer, grade, hint,
// revise, regrade. Feedback targets the weakest criterion (ties go to the
// rubric's first-listed one), must survive an opacity check against the
// reference answer, and is the only new context a revision receives.
package multiturn
