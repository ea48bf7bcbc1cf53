/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package grade

import (
	"context"
	"fmt"

	"github.com/chainguard-dev/clog"

	"prbench.dev/prbench/faults"
	"prbench.dev/prbench/llm"
	"prbench.dev/prbench/prompts"
	"prbench.dev/prbench/records"
)

// judgeSystem frames every provider the same way.
const judgeSystem = "You are a strict grader. You score answers only against the rubric criterion you are given, never against your own opinion of the answer."

// gradeResponse is the JSON shape every judge provider must produce.
type gradeResponse struct {
	Score         int    `json:"score" jsonschema:"required" jsonschema_description:"The level reached, 0 through 4."`
	Justification string `json:"justification" jsonschema:"required" jsonschema_description:"One or two sentences citing the answer."`
}

// Judge scores one candidate answer against one rubric criterion, with the
// ground-truth diff available to fact-check the answer's claims.
type Judge interface {
	Score(ctx context.Context, question, diff string, criterion records.Criterion, candidate string) (records.CriterionGrade, error)
}

// defaultJudgeAttempts bounds per-criterion retries on malformed verdicts.
const defaultJudgeAttempts = 3

// Grader applies a full rubric to one candidate answer, one criterion at a
// time.
type Grader struct {
	judge    Judge
	attempts int
}

// Option configures a Grader.
type Option func(*Grader)

// WithJudgeAttempts overrides how often a malformed verdict is re-asked.
func WithJudgeAttempts(n int) Option {
	return func(g *Grader) {
		if n > 0 {
			g.attempts = n
		}
	}
}

// NewGrader wraps a judge.
func NewGrader(judge Judge, opts ...Option) *Grader {
	g := &Grader{judge: judge, attempts: defaultJudgeAttempts}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Grade scores the candidate answer against every criterion in rubric order.
// Grading the same answer twice against the same rubric yields the same
// record shape; the judge sees one criterion at a time so criteria cannot
// bleed into each other.
func (g *Grader) Grade(ctx context.Context, question, diff string, rubric records.Rubric, model, answer string) (records.GradedAnswer, error) {
	var graded records.GradedAnswer
	if err := rubric.Validate(); err != nil {
		return graded, faults.Wrap(faults.MalformedOutput, "grade.Grade", err)
	}
	if answer == "" {
		return graded, faults.New(faults.MalformedOutput, "grade.Grade", "candidate answer is empty")
	}

	log := clog.FromContext(ctx).With("pr", rubric.PRNumber)
	grades := make([]records.CriterionGrade, 0, len(rubric.Criteria))
	for _, criterion := range rubric.Criteria {
		verdict, err := g.score(ctx, question, diff, criterion, answer)
		if err != nil {
			return graded, fmt.Errorf("grading criterion %q: %w", criterion.Name, err)
		}
		log.With("criterion", criterion.Name).With("score", verdict.Score).Debug("Graded criterion")
		grades = append(grades, verdict)
	}

	graded = records.GradedAnswer{
		PRNumber:     rubric.PRNumber,
		Model:        model,
		Answer:       answer,
		Grades:       grades,
		ScorePercent: records.Percent(grades),
	}
	return graded, graded.Validate()
}

// score asks the judge, re-asking on malformed verdicts up to the attempt
// budget. The criterion name always comes from the rubric, not the model.
func (g *Grader) score(ctx context.Context, question, diff string, criterion records.Criterion, answer string) (records.CriterionGrade, error) {
	var lastErr error
	for i := 0; i < g.attempts; i++ {
		if err := ctx.Err(); err != nil {
			return records.CriterionGrade{}, err
		}
		verdict, err := g.judge.Score(ctx, question, diff, criterion, answer)
		if err == nil {
			verdict.Name = criterion.Name
			if err = verdict.Validate(); err == nil {
				return verdict, nil
			}
			err = faults.Wrap(faults.MalformedOutput, "grade.score", err)
		}
		if faults.KindOf(err) != faults.MalformedOutput {
			return records.CriterionGrade{}, err
		}
		lastErr = err
		clog.FromContext(ctx).With("attempt", i+1).Warnf("Judge verdict malformed: %v", err)
	}
	return records.CriterionGrade{}, lastErr
}

// judgePrompt renders the per-criterion grading prompt shared by all
// providers.
func judgePrompt(question, diff string, criterion records.Criterion, candidate string) (string, error) {
	return prompts.BuildWith(prompts.Grade, map[string]any{
		"question":            question,
		"diff":                diff,
		"criterion":           criterion,
		"candidate":           candidate,
		"format_instructions": llm.FormatInstructions[gradeResponse](),
	})
}

// toGrade converts a provider response, leaving Name for the caller.
func toGrade(r gradeResponse) records.CriterionGrade {
	return records.CriterionGrade{Score: r.Score, Justification: r.Justification}
}
