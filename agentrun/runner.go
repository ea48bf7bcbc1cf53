/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package agentrun

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/chainguard-dev/clog"

	"prbench.dev/prbench/faults"
	"prbench.dev/prbench/llm"
	"prbench.dev/prbench/prompts"
	"prbench.dev/prbench/records"
	"prbench.dev/prbench/tools"
	"prbench.dev/prbench/worktree"
)

const candidateSystem = "You are an engineer answering questions about a codebase. Ground every claim in the repository; say so when the repository does not support an answer."

type candidateResponse struct {
	Answer string `json:"answer" jsonschema:"required" jsonschema_description:"The complete answer."`
}

// Runner produces candidate answers for benchmark questions. Each answer is
// generated inside an ephemeral checkout of the PR's base commit with
// repository access only; the diff the candidate is scored on stays hidden.
type Runner struct {
	exec  llm.Interface[candidateResponse]
	trees *worktree.Manager
	model string
}

// New builds a runner for one candidate model.
func New(client anthropic.Client, trees *worktree.Manager, model string) (*Runner, error) {
	exec, err := llm.New(client, candidateSystem, llm.WithModel[candidateResponse](model))
	if err != nil {
		return nil, fmt.Errorf("building candidate executor: %w", err)
	}
	return newWith(exec, trees, model), nil
}

func newWith(exec llm.Interface[candidateResponse], trees *worktree.Manager, model string) *Runner {
	return &Runner{exec: exec, trees: trees, model: model}
}

// Model returns the candidate model identifier, recorded on graded answers.
func (r *Runner) Model() string {
	return r.model
}

// Answer runs the candidate against one question.
func (r *Runner) Answer(ctx context.Context, pr records.PullRequest, question string) (string, error) {
	prompt, err := prompts.BuildWith(prompts.Candidate, map[string]any{
		"pr_metadata":         pr.Metadata(),
		"question":            question,
		"format_instructions": llm.FormatInstructions[candidateResponse](),
	})
	if err != nil {
		return "", err
	}
	return r.run(ctx, pr, prompt)
}

// Revise asks the candidate to improve a prior answer. The prompt carries
// only the question, the prior answer, and the feedback; prior grading
// detail stays hidden.
func (r *Runner) Revise(ctx context.Context, pr records.PullRequest, question, prior, feedback string) (string, error) {
	prompt, err := prompts.BuildWith(prompts.Revise, map[string]any{
		"question":            question,
		"answer":              prior,
		"feedback":            feedback,
		"format_instructions": llm.FormatInstructions[candidateResponse](),
	})
	if err != nil {
		return "", err
	}
	return r.run(ctx, pr, prompt)
}

func (r *Runner) run(ctx context.Context, pr records.PullRequest, prompt string) (string, error) {
	var answer string
	err := r.trees.With(ctx, pr.BaseCommit, func(wt *worktree.Worktree) error {
		// The candidate never sees the diff: the capability set excludes
		// read_diff and the inspector carries no diff text.
		insp := tools.NewInspector(wt, "")
		clog.FromContext(ctx).With("pr", pr.Number).With("model", r.model).Info("Running candidate")

		resp, err := r.exec.Execute(ctx, prompt, tools.ForStage(insp, tools.CandidateStage))
		if err != nil {
			return err
		}
		if resp.Answer == "" {
			return faults.New(faults.MalformedOutput, "agentrun.run", "candidate returned an empty answer")
		}
		answer = resp.Answer
		return nil
	})
	return answer, err
}
