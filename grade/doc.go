/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

// Package grade scores candidate answers against rubrics. A Grader walks the
// rubric one criterion at a time and asks a Judge for a level and a
// justification, handing it the ground-truth diff to fact-check the answer;
// out-of-range or empty verdicts are re-asked a bounded
// number of times and never clamped. Judges exist for Anthropic, OpenAI, and
// Gemini so candidates and graders can run on different providers.
package grade
