/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package prompts

// Question asks the model to synthesize one deep technical question about a
// merged pull request. The diff is deliberately absent from both the prompt
// and the tool set at this stage.
var Question = MustNew(`You are studying a merged pull request in a real repository.

Pull request metadata:
{{pr_metadata}}

Repository layout (three levels deep):
{{hierarchy}}

Explore the repository with the tools available to you, then write ONE
question about this change that a senior engineer joining the project would
need answered. The question must:
- be answerable only by reading the repository and the change itself
- require understanding of the surrounding code, not just the PR title
- have a concrete, verifiable answer (not a matter of opinion)

Also report which files you consulted while forming the question.

{{format_instructions}}`)

// Answer asks the model to produce the reference answer. This stage may read
// the diff.
var Answer = MustNew(`You are answering a question about a merged pull request.

Pull request metadata:
{{pr_metadata}}

Question:
{{question}}

Use the tools to read the diff and any relevant files in the repository, then
write a complete, technically precise answer. Cite specific files, symbols,
and behavior. Do not speculate beyond what the repository shows.

{{format_instructions}}`)

// Candidate presents a benchmark question to the model under evaluation.
// Unlike Answer, it never points at the diff; the candidate only has the
// repository to work from.
var Candidate = MustNew(`You are answering a question about a repository.

Pull request metadata:
{{pr_metadata}}

Question:
{{question}}

Use the tools to explore the repository, then write a complete, technically
precise answer. Cite specific files, symbols, and behavior. Do not speculate
beyond what the repository shows.

{{format_instructions}}`)

// Rubric asks the model to derive grading criteria from the question, the
// reference answer, and the change itself.
var Rubric = MustNew(`You are constructing a grading rubric for the question and
reference answer below, about a merged pull request.

Pull request metadata:
{{pr_metadata}}

Files changed by the pull request:
{{changed_paths}}

Question:
{{question}}

Reference answer:
{{answer}}

Use the tools to read the diff and the changed files so every criterion is
anchored in what actually changed. Produce between 4 and 6 criteria. Each
criterion evaluates one independent, checkable aspect of a candidate answer. Each criterion has exactly 5 levels,
scored 0 through 4, where level 0 describes a complete miss and level 4
describes full credit. Levels must be strictly increasing in quality. Ground
every criterion in concrete content of the change; never grade style or tone.

{{format_instructions}}`)

// Grade scores a candidate answer against a single criterion, with the
// ground-truth change available for fact-checking.
var Grade = MustNew(`You are grading one candidate answer against one rubric
criterion.

Question:
{{question}}

Ground-truth change (unified diff):
{{diff}}

Criterion:
{{criterion}}

Candidate answer:
{{candidate}}

Choose the single level (0 through 4) whose description best matches the
candidate answer, and justify the choice in one or two sentences quoting the
relevant part of the answer. Verify factual claims against the ground-truth
change. Grade only against this criterion; ignore everything the other
criteria cover.

{{format_instructions}}`)

// Feedback produces Socratic guidance for the weakest criterion without
// revealing reference answer content.
var Feedback = MustNew(`A candidate answered the question below and was graded
against a rubric. Their weakest criterion is shown with the level they
reached.

Question:
{{question}}

Candidate answer:
{{candidate}}

Weakest criterion:
{{criterion}}

Level reached: {{score}}

Write a short Socratic hint that points the candidate toward what their
answer is missing for this criterion. The hint must:
- ask a guiding question or name an area to re-examine
- never state the missing fact itself
- never quote or paraphrase the reference answer

{{format_instructions}}`)

// Revise asks a candidate to improve its answer given feedback. The revision
// deliberately sees only the question, the prior answer, and the feedback.
var Revise = MustNew(`You previously answered the question below. A reviewer
left feedback. Revise your answer to address it.

Question:
{{question}}

Your previous answer:
{{answer}}

Reviewer feedback:
{{feedback}}

Use the tools to re-examine the repository where the feedback suggests, then
write a complete revised answer. Keep what was correct; fix what the
feedback targets.

{{format_instructions}}`)
