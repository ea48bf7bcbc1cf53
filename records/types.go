/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package records

import (
	"errors"
	"fmt"
	"time"
)

// LevelCount is the number of ordered performance levels per rubric
// criterion. Level index equals the score it describes (0 lowest, 4 highest).
const LevelCount = 5

// PullRequest is a merged pull request mined from the source host.
// Immutable once mined.
type PullRequest struct {
	Number       int       `json:"number"`
	Title        string    `json:"title"`
	Body         string    `json:"body,omitempty"`
	Author       string    `json:"author,omitempty"`
	URL          string    `json:"url,omitempty"`
	MergedAt     time.Time `json:"merged_at"`
	BaseRef      string    `json:"base_ref,omitempty"`
	BaseCommit   string    `json:"base_commit"`
	Diff         string    `json:"diff,omitempty"`
	Additions    int       `json:"additions,omitempty"`
	Deletions    int       `json:"deletions,omitempty"`
	ChangedFiles int       `json:"changed_files,omitempty"`
}

// Validate checks the fields downstream stages depend on.
func (p *PullRequest) Validate() error {
	switch {
	case p.Number <= 0:
		return errors.New("pull request number must be positive")
	case p.BaseCommit == "":
		return fmt.Errorf("pull request %d has no base commit", p.Number)
	}
	return nil
}

// Metadata returns the PR without its diff, for stages that must not see the
// change outcome.
func (p *PullRequest) Metadata() PullRequest {
	meta := *p
	meta.Diff = ""
	return meta
}

// QARecord is a synthesized question and ideal answer for one PR.
type QARecord struct {
	PRNumber   int      `json:"pr_number"`
	BaseCommit string   `json:"base_commit"`
	Question   string   `json:"question"`
	Answer     string   `json:"answer"`
	Sources    []string `json:"sources,omitempty"`
}

// Validate rejects records that would poison downstream stages.
func (q *QARecord) Validate() error {
	switch {
	case q.PRNumber <= 0:
		return errors.New("qa record needs a positive pr_number")
	case q.Question == "":
		return fmt.Errorf("qa record for PR %d has an empty question", q.PRNumber)
	case q.Answer == "":
		return fmt.Errorf("qa record for PR %d has an empty answer", q.PRNumber)
	}
	return nil
}

// Criterion is one rubric dimension with exactly LevelCount ordered level
// descriptions, index = score.
type Criterion struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Levels      []string `json:"levels"`
}

// Validate enforces the 5-level structure.
func (c *Criterion) Validate() error {
	if c.Name == "" {
		return errors.New("criterion needs a name")
	}
	if len(c.Levels) != LevelCount {
		return fmt.Errorf("criterion %q has %d levels, want %d", c.Name, len(c.Levels), LevelCount)
	}
	for i, level := range c.Levels {
		if level == "" {
			return fmt.Errorf("criterion %q level %d is empty", c.Name, i)
		}
	}
	return nil
}

// Rubric is the scored grading schema for one PR's QARecord. Immutable after
// creation.
type Rubric struct {
	PRNumber int         `json:"pr_number"`
	Title    string      `json:"title,omitempty"`
	Criteria []Criterion `json:"criteria"`
}

// MinCriteria and MaxCriteria bound how many dimensions a rubric may carry.
const (
	MinCriteria = 4
	MaxCriteria = 6
)

// Validate enforces criteria count and per-criterion structure.
func (r *Rubric) Validate() error {
	if n := len(r.Criteria); n < MinCriteria || n > MaxCriteria {
		return fmt.Errorf("rubric has %d criteria, want %d-%d", n, MinCriteria, MaxCriteria)
	}
	for i := range r.Criteria {
		if err := r.Criteria[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// CandidateAnswer is one model's ungraded answer to a benchmark question.
type CandidateAnswer struct {
	PRNumber int    `json:"pr_number"`
	Model    string `json:"model"`
	Answer   string `json:"answer"`
}

// Validate rejects answers that cannot be graded.
func (c *CandidateAnswer) Validate() error {
	switch {
	case c.PRNumber <= 0:
		return errors.New("candidate answer needs a positive pr_number")
	case c.Model == "":
		return fmt.Errorf("candidate answer for PR %d has no model", c.PRNumber)
	case c.Answer == "":
		return fmt.Errorf("candidate answer for PR %d is empty", c.PRNumber)
	}
	return nil
}

// CriterionGrade is the judge's verdict on one criterion.
type CriterionGrade struct {
	Name          string `json:"name"`
	Score         int    `json:"score"`
	Justification string `json:"justification"`
}

// Validate clamps nothing; out-of-range scores are rejected outright.
func (g *CriterionGrade) Validate() error {
	if g.Name == "" {
		return errors.New("criterion grade needs a name")
	}
	if g.Score < 0 || g.Score >= LevelCount {
		return fmt.Errorf("criterion %q scored %d, want 0-%d", g.Name, g.Score, LevelCount-1)
	}
	if g.Justification == "" {
		return fmt.Errorf("criterion %q grade has no justification", g.Name)
	}
	return nil
}

// GradedAnswer ties one candidate answer to one rubric's verdicts.
type GradedAnswer struct {
	PRNumber     int              `json:"pr_number"`
	Model        string           `json:"model,omitempty"`
	Answer       string           `json:"answer,omitempty"`
	Grades       []CriterionGrade `json:"grades"`
	ScorePercent float64          `json:"score_percent"`
}

// Validate checks every per-criterion grade.
func (a *GradedAnswer) Validate() error {
	if a.PRNumber <= 0 {
		return errors.New("graded answer needs a positive pr_number")
	}
	if len(a.Grades) == 0 {
		return fmt.Errorf("graded answer for PR %d has no grades", a.PRNumber)
	}
	for i := range a.Grades {
		if err := a.Grades[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Percent computes the percentage score across grades (4 points per
// criterion at full marks).
func Percent(grades []CriterionGrade) float64 {
	if len(grades) == 0 {
		return 0
	}
	total := 0
	for _, g := range grades {
		total += g.Score
	}
	maximum := (LevelCount - 1) * len(grades)
	return float64(total) / float64(maximum) * 100
}

// Perfect reports whether every criterion reached full marks.
func (a *GradedAnswer) Perfect() bool {
	for _, g := range a.Grades {
		if g.Score < LevelCount-1 {
			return false
		}
	}
	return len(a.Grades) > 0
}

// FeedbackTurn records one multi-turn round: the Socratic feedback derived
// from a weak criterion and the answer revised in response.
type FeedbackTurn struct {
	PRNumber      int    `json:"pr_number"`
	Round         int    `json:"round"`
	Feedback      string `json:"feedback"`
	RevisedAnswer string `json:"revised_answer"`
}

// Validate checks the round bookkeeping.
func (f *FeedbackTurn) Validate() error {
	switch {
	case f.PRNumber <= 0:
		return errors.New("feedback turn needs a positive pr_number")
	case f.Round <= 0:
		return fmt.Errorf("feedback turn for PR %d has round %d, want >= 1", f.PRNumber, f.Round)
	case f.Feedback == "":
		return fmt.Errorf("feedback turn for PR %d has no feedback", f.PRNumber)
	}
	return nil
}
