/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package multiturn

import (
	"context"
	"fmt"

	"github.com/chainguard-dev/clog"

	"prbench.dev/prbench/grade"
	"prbench.dev/prbench/records"
)

// Candidate is the answering side of the loop. *agentrun.Runner satisfies
// it.
type Candidate interface {
	Model() string
	Answer(ctx context.Context, pr records.PullRequest, question string) (string, error)
	Revise(ctx context.Context, pr records.PullRequest, question, prior, feedback string) (string, error)
}

// defaultMaxRounds bounds the feedback loop.
const defaultMaxRounds = 3

// Round is one feedback-and-revise cycle with its regrade.
type Round struct {
	Turn   records.FeedbackTurn
	Graded records.GradedAnswer
}

// Transcript is the full history of one candidate on one benchmark item.
type Transcript struct {
	PRNumber  int
	Model     string
	Initial   records.GradedAnswer
	Rounds    []Round
	Converged bool
}

// Final returns the last grading, initial when no round ran.
func (t *Transcript) Final() records.GradedAnswer {
	if len(t.Rounds) == 0 {
		return t.Initial
	}
	return t.Rounds[len(t.Rounds)-1].Graded
}

// Loop drives answer, grade, feedback, revise until the answer is perfect or
// the round budget runs out.
type Loop struct {
	candidate Candidate
	grader    *grade.Grader
	feedback  Source
	maxRounds int
}

// Option configures a Loop.
type Option func(*Loop)

// WithMaxRounds overrides the round budget.
func WithMaxRounds(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.maxRounds = n
		}
	}
}

// NewLoop assembles a feedback loop.
func NewLoop(candidate Candidate, grader *grade.Grader, feedback Source, opts ...Option) *Loop {
	l := &Loop{
		candidate: candidate,
		grader:    grader,
		feedback:  feedback,
		maxRounds: defaultMaxRounds,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run produces the initial answer, then cycles feedback and revision. The
// feedback each round targets the weakest criterion and the candidate's
// revision sees only the question, its prior answer, and that feedback.
func (l *Loop) Run(ctx context.Context, pr records.PullRequest, qa records.QARecord, rubric records.Rubric) (Transcript, error) {
	log := clog.FromContext(ctx).With("pr", pr.Number).With("model", l.candidate.Model())

	answer, err := l.candidate.Answer(ctx, pr, qa.Question)
	if err != nil {
		return Transcript{}, fmt.Errorf("initial answer: %w", err)
	}
	graded, err := l.grader.Grade(ctx, qa.Question, pr.Diff, rubric, l.candidate.Model(), answer)
	if err != nil {
		return Transcript{}, fmt.Errorf("initial grading: %w", err)
	}

	transcript := Transcript{
		PRNumber: pr.Number,
		Model:    l.candidate.Model(),
		Initial:  graded,
	}

	for round := 1; round <= l.maxRounds; round++ {
		if graded.Perfect() {
			transcript.Converged = true
			return transcript, nil
		}

		criterion, score := weakest(rubric, graded.Grades)
		log.With("round", round).With("criterion", criterion.Name).With("score", score).
			Info("Generating feedback")

		feedback, err := l.feedback.Feedback(ctx, qa, answer, criterion, score)
		if err != nil {
			return transcript, fmt.Errorf("round %d feedback: %w", round, err)
		}

		revised, err := l.candidate.Revise(ctx, pr, qa.Question, answer, feedback)
		if err != nil {
			return transcript, fmt.Errorf("round %d revision: %w", round, err)
		}
		graded, err = l.grader.Grade(ctx, qa.Question, pr.Diff, rubric, l.candidate.Model(), revised)
		if err != nil {
			return transcript, fmt.Errorf("round %d regrading: %w", round, err)
		}

		transcript.Rounds = append(transcript.Rounds, Round{
			Turn: records.FeedbackTurn{
				PRNumber:      pr.Number,
				Round:         round,
				Feedback:      feedback,
				RevisedAnswer: revised,
			},
			Graded: graded,
		})
		answer = revised
	}

	transcript.Converged = graded.Perfect()
	return transcript, nil
}

// weakest picks the criterion with the lowest score. Ties go to the one
// listed first in the rubric.
func weakest(rubric records.Rubric, grades []records.CriterionGrade) (records.Criterion, int) {
	byName := make(map[string]int, len(grades))
	for _, g := range grades {
		byName[g.Name] = g.Score
	}
	best := 0
	lowest := records.LevelCount
	for i, c := range rubric.Criteria {
		if score, ok := byName[c.Name]; ok && score < lowest {
			lowest = score
			best = i
		}
	}
	return rubric.Criteria[best], byName[rubric.Criteria[best].Name]
}
