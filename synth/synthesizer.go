/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package synth

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/chainguard-dev/clog"

	"prbench.dev/prbench/faults"
	"prbench.dev/prbench/llm"
	"prbench.dev/prbench/mine"
	"prbench.dev/prbench/prompts"
	"prbench.dev/prbench/records"
	"prbench.dev/prbench/tools"
	"prbench.dev/prbench/worktree"
)

// Stage names the pipeline step a PR has reached, for logs and fault ops.
type Stage string

const (
	StageQuestion Stage = "question"
	StageAnswer   Stage = "answer"
	StageRubric   Stage = "rubric"
)

// defaultStageAttempts is how many times one stage is re-asked with the same
// input when the model returns malformed or structurally invalid output.
const defaultStageAttempts = 3

type questionResponse struct {
	Question string   `json:"question" jsonschema:"required" jsonschema_description:"One deep technical question about the change."`
	Sources  []string `json:"sources" jsonschema_description:"Repository paths consulted while forming the question."`
}

type answerResponse struct {
	Answer string `json:"answer" jsonschema:"required" jsonschema_description:"The complete reference answer."`
}

type rubricResponse struct {
	Criteria []records.Criterion `json:"criteria" jsonschema:"required" jsonschema_description:"Between 4 and 6 criteria, each with exactly 5 levels ordered worst to best."`
}

const (
	questionSystem = "You are a senior engineer writing onboarding questions about real code changes. You ground every question in what the repository actually contains."
	answerSystem   = "You are a senior engineer writing precise, verifiable reference answers grounded in repository content."
	rubricSystem   = "You are an assessment designer turning reference answers into objective scoring rubrics."
)

// Synthesizer drives one PR through question, answer, and rubric generation
// inside an ephemeral checkout of the PR's base commit.
type Synthesizer struct {
	questions llm.Interface[questionResponse]
	answers   llm.Interface[answerResponse]
	rubrics   llm.Interface[rubricResponse]
	trees     *worktree.Manager

	stageAttempts int
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithStageAttempts overrides how often a stage retries malformed output.
func WithStageAttempts(n int) Option {
	return func(s *Synthesizer) {
		if n > 0 {
			s.stageAttempts = n
		}
	}
}

// New builds a Synthesizer with one executor per stage, all on the same
// client and model.
func New(client anthropic.Client, trees *worktree.Manager, model string, opts ...Option) (*Synthesizer, error) {
	questions, err := llm.New(client, questionSystem, llm.WithModel[questionResponse](model))
	if err != nil {
		return nil, fmt.Errorf("building question executor: %w", err)
	}
	answers, err := llm.New(client, answerSystem, llm.WithModel[answerResponse](model))
	if err != nil {
		return nil, fmt.Errorf("building answer executor: %w", err)
	}
	rubrics, err := llm.New(client, rubricSystem, llm.WithModel[rubricResponse](model))
	if err != nil {
		return nil, fmt.Errorf("building rubric executor: %w", err)
	}
	return newWith(questions, answers, rubrics, trees, opts...), nil
}

func newWith(
	questions llm.Interface[questionResponse],
	answers llm.Interface[answerResponse],
	rubrics llm.Interface[rubricResponse],
	trees *worktree.Manager,
	opts ...Option,
) *Synthesizer {
	s := &Synthesizer{
		questions:     questions,
		answers:       answers,
		rubrics:       rubrics,
		trees:         trees,
		stageAttempts: defaultStageAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result is the full synthesis output for one PR.
type Result struct {
	QA     records.QARecord
	Rubric records.Rubric
}

// Synthesize checks out the PR's base commit and runs the three stages in
// order. The worktree is removed on every exit path.
func (s *Synthesizer) Synthesize(ctx context.Context, pr records.PullRequest) (Result, error) {
	var result Result
	if err := pr.Validate(); err != nil {
		return result, faults.Wrap(faults.MalformedOutput, "synth.Synthesize", err)
	}

	err := s.trees.With(ctx, pr.BaseCommit, func(wt *worktree.Worktree) error {
		insp := tools.NewInspector(wt, pr.Diff)
		log := clog.FromContext(ctx).With("pr", pr.Number)

		hierarchy, err := insp.ListFiles()
		if err != nil {
			return err
		}

		log.With("stage", StageQuestion).Info("Synthesizing")
		question, err := s.question(ctx, pr, insp, hierarchy)
		if err != nil {
			return err
		}

		log.With("stage", StageAnswer).Info("Synthesizing")
		answer, err := s.answer(ctx, pr, insp, question.Question)
		if err != nil {
			return err
		}

		log.With("stage", StageRubric).Info("Synthesizing")
		rubric, err := s.rubric(ctx, pr, insp, question.Question, answer.Answer)
		if err != nil {
			return err
		}

		result = Result{
			QA: records.QARecord{
				PRNumber:   pr.Number,
				BaseCommit: pr.BaseCommit,
				Question:   question.Question,
				Answer:     answer.Answer,
				Sources:    question.Sources,
			},
			Rubric: records.Rubric{
				PRNumber: pr.Number,
				Title:    pr.Title,
				Criteria: rubric.Criteria,
			},
		}
		return nil
	})
	return result, err
}

// question runs the question stage. The model never sees the diff here, in
// the prompt or in the tool set.
func (s *Synthesizer) question(ctx context.Context, pr records.PullRequest, insp *tools.Inspector, hierarchy string) (questionResponse, error) {
	prompt, err := prompts.BuildWith(prompts.Question, map[string]any{
		"pr_metadata":         pr.Metadata(),
		"hierarchy":           hierarchy,
		"format_instructions": llm.FormatInstructions[questionResponse](),
	})
	if err != nil {
		return questionResponse{}, err
	}
	return attempt(ctx, s.questions, prompt, tools.ForStage(insp, tools.QuestionStage), s.stageAttempts, func(r questionResponse) error {
		if r.Question == "" {
			return faults.New(faults.MalformedOutput, "synth.question", "model returned an empty question")
		}
		return nil
	})
}

func (s *Synthesizer) answer(ctx context.Context, pr records.PullRequest, insp *tools.Inspector, question string) (answerResponse, error) {
	prompt, err := prompts.BuildWith(prompts.Answer, map[string]any{
		"pr_metadata":         pr.Metadata(),
		"question":            question,
		"format_instructions": llm.FormatInstructions[answerResponse](),
	})
	if err != nil {
		return answerResponse{}, err
	}
	return attempt(ctx, s.answers, prompt, tools.ForStage(insp, tools.AnswerStage), s.stageAttempts, func(r answerResponse) error {
		if r.Answer == "" {
			return faults.New(faults.MalformedOutput, "synth.answer", "model returned an empty answer")
		}
		return nil
	})
}

// rubric derives the grading criteria with the full toolset, including the
// diff, so every criterion is anchored in the change itself. The changed
// paths go into the prompt up front.
func (s *Synthesizer) rubric(ctx context.Context, pr records.PullRequest, insp *tools.Inspector, question, answer string) (rubricResponse, error) {
	stats, err := mine.DiffStats(pr.Diff)
	if err != nil {
		return rubricResponse{}, err
	}
	prompt, err := prompts.BuildWith(prompts.Rubric, map[string]any{
		"pr_metadata":         pr.Metadata(),
		"changed_paths":       strings.Join(stats.Paths, "\n"),
		"question":            question,
		"answer":              answer,
		"format_instructions": llm.FormatInstructions[rubricResponse](),
	})
	if err != nil {
		return rubricResponse{}, err
	}
	return attempt(ctx, s.rubrics, prompt, tools.ForStage(insp, tools.RubricStage), s.stageAttempts, func(r rubricResponse) error {
		rubric := records.Rubric{PRNumber: pr.Number, Criteria: r.Criteria}
		if err := rubric.Validate(); err != nil {
			return faults.Wrap(faults.MalformedOutput, "synth.rubric", err)
		}
		return nil
	})
}

// attempt executes one stage, re-asking with the identical prompt when the
// model's output is malformed. Any other fault aborts immediately.
func attempt[T any](ctx context.Context, exec llm.Interface[T], prompt string, toolset []llm.Tool, attempts int, validate func(T) error) (T, error) {
	var zero T
	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		resp, err := exec.Execute(ctx, prompt, toolset)
		if err == nil {
			err = validate(resp)
			if err == nil {
				return resp, nil
			}
		}
		if faults.KindOf(err) != faults.MalformedOutput {
			return zero, err
		}
		lastErr = err
		clog.FromContext(ctx).With("attempt", i+1).Warnf("Stage output malformed: %v", err)
	}
	return zero, lastErr
}
