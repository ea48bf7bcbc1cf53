/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package grade

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"prbench.dev/prbench/faults"
	"prbench.dev/prbench/records"
)

// stubJudge scores deterministically by keyword: answers mentioning the
// criterion name in full get 4, partial mentions 2, everything else 0.
type stubJudge struct {
	calls int
	diffs []string
}

func (s *stubJudge) Score(ctx context.Context, question, diff string, criterion records.Criterion, candidate string) (records.CriterionGrade, error) {
	s.calls++
	s.diffs = append(s.diffs, diff)
	score := 0
	switch {
	case strings.Contains(candidate, criterion.Name):
		score = 4
	case strings.Contains(candidate, strings.Fields(criterion.Name)[0]):
		score = 2
	}
	return records.CriterionGrade{Score: score, Justification: "keyword match"}, nil
}

// flakyJudge returns malformed verdicts before succeeding.
type flakyJudge struct {
	badVerdicts int
	calls       int
}

func (f *flakyJudge) Score(ctx context.Context, question, diff string, criterion records.Criterion, candidate string) (records.CriterionGrade, error) {
	f.calls++
	if f.calls <= f.badVerdicts {
		return records.CriterionGrade{Score: 9, Justification: "off the scale"}, nil
	}
	return records.CriterionGrade{Score: 3, Justification: "solid"}, nil
}

const testDiff = "diff --git a/config/env.go b/config/env.go\n+\tUserStoreURL string\n"

func criterion(name string) records.Criterion {
	return records.Criterion{
		Name:        name,
		Description: "mentions " + name,
		Levels:      []string{"no mention", "vague", "partial", "near", "exact"},
	}
}

func testRubric() records.Rubric {
	return records.Rubric{
		PRNumber: 12,
		Criteria: []records.Criterion{
			criterion("UserStoreURL env"),
			criterion("users route"),
			criterion("handler wiring"),
			criterion("config struct"),
		},
	}
}

func TestGradeScoresEveryCriterion(t *testing.T) {
	judge := &stubJudge{}
	g := NewGrader(judge)

	answer := "The change adds the UserStoreURL env variable and registers the users route in the config struct."
	graded, err := g.Grade(context.Background(), "what changed?", testDiff, testRubric(), "candidate-x", answer)
	if err != nil {
		t.Fatalf("Grade() = %v", err)
	}

	if judge.calls != 4 {
		t.Errorf("judge called %d times, want 4", judge.calls)
	}
	wantScores := []int{4, 4, 0, 4}
	var gotScores []int
	for _, gr := range graded.Grades {
		gotScores = append(gotScores, gr.Score)
	}
	if diff := cmp.Diff(wantScores, gotScores); diff != "" {
		t.Errorf("scores mismatch (-want +got):\n%s", diff)
	}
	// 12 of 16 points.
	if graded.ScorePercent != 75 {
		t.Errorf("ScorePercent = %v, want 75", graded.ScorePercent)
	}
	if graded.Perfect() {
		t.Error("Perfect() = true with a zero-scored criterion")
	}
	// Every verdict is fact-checked against the ground-truth change.
	for i, diff := range judge.diffs {
		if diff != testDiff {
			t.Errorf("judge call %d received diff %q, want the ground truth", i, diff)
		}
	}
}

func TestGradeZeroesUnmentionedChanges(t *testing.T) {
	g := NewGrader(&stubJudge{})

	answer := "The change refactors logging and renames a helper."
	graded, err := g.Grade(context.Background(), "what changed?", testDiff, testRubric(), "m", answer)
	if err != nil {
		t.Fatalf("Grade() = %v", err)
	}
	if got := graded.Grades[0].Score; got != 0 {
		t.Errorf("env-var criterion scored %d for an answer that never names it, want 0", got)
	}
	if got := graded.Grades[1].Score; got != 0 {
		t.Errorf("route criterion scored %d for an answer that never names it, want 0", got)
	}
}

func TestGradeIsDeterministic(t *testing.T) {
	answer := "The change adds the UserStoreURL env variable."
	first, err := NewGrader(&stubJudge{}).Grade(context.Background(), "q", testDiff, testRubric(), "m", answer)
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewGrader(&stubJudge{}).Grade(context.Background(), "q", testDiff, testRubric(), "m", answer)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("grading the same answer twice diverged (-first +second):\n%s", diff)
	}
}

func TestGradeRetriesMalformedVerdict(t *testing.T) {
	judge := &flakyJudge{badVerdicts: 1}
	g := NewGrader(judge)

	rubric := testRubric()
	graded, err := g.Grade(context.Background(), "q", testDiff, rubric, "m", "some answer")
	if err != nil {
		t.Fatalf("Grade() = %v", err)
	}
	// One retry on the first criterion, then one call per remaining criterion.
	if judge.calls != len(rubric.Criteria)+1 {
		t.Errorf("judge called %d times, want %d", judge.calls, len(rubric.Criteria)+1)
	}
	if graded.Grades[0].Score != 3 {
		t.Errorf("first criterion score = %d, want 3", graded.Grades[0].Score)
	}
}

func TestGradeGivesUpOnPersistentMalformedVerdicts(t *testing.T) {
	judge := &flakyJudge{badVerdicts: 100}
	g := NewGrader(judge, WithJudgeAttempts(2))

	_, err := g.Grade(context.Background(), "q", testDiff, testRubric(), "m", "some answer")
	if faults.KindOf(err) != faults.MalformedOutput {
		t.Fatalf("Grade() = %v, want MalformedOutput fault", err)
	}
	if judge.calls != 2 {
		t.Errorf("judge called %d times, want 2", judge.calls)
	}
}

func TestGradeRejectsEmptyAnswer(t *testing.T) {
	g := NewGrader(&stubJudge{})
	if _, err := g.Grade(context.Background(), "q", testDiff, testRubric(), "m", ""); err == nil {
		t.Fatal("Grade() accepted an empty answer")
	}
}

func TestGradeRejectsInvalidRubric(t *testing.T) {
	g := NewGrader(&stubJudge{})
	rubric := testRubric()
	rubric.Criteria = rubric.Criteria[:2]
	if _, err := g.Grade(context.Background(), "q", testDiff, rubric, "m", "answer"); err == nil {
		t.Fatal("Grade() accepted a rubric with too few criteria")
	}
}

func TestGradeNamesComeFromRubric(t *testing.T) {
	g := NewGrader(&stubJudge{})
	graded, err := g.Grade(context.Background(), "q", testDiff, testRubric(), "m", "answer about config")
	if err != nil {
		t.Fatal(err)
	}
	for i, criterion := range testRubric().Criteria {
		if graded.Grades[i].Name != criterion.Name {
			t.Errorf("grade %d named %q, want %q", i, graded.Grades[i].Name, criterion.Name)
		}
	}
}
