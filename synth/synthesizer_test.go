/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package synth

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"prbench.dev/prbench/faults"
	"prbench.dev/prbench/llm"
	"prbench.dev/prbench/records"
	"prbench.dev/prbench/worktree"
)

// fakeExec replays canned responses and records every call.
type fakeExec[T any] struct {
	responses []T
	errs      []error
	calls     int
	prompts   []string
	toolNames [][]string
}

func (f *fakeExec[T]) Execute(ctx context.Context, prompt string, toolset []llm.Tool) (T, error) {
	i := f.calls
	f.calls++
	f.prompts = append(f.prompts, prompt)
	var names []string
	for _, t := range toolset {
		names = append(names, t.Name)
	}
	f.toolNames = append(f.toolNames, names)

	var zero T
	if i < len(f.errs) && f.errs[i] != nil {
		return zero, f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return zero, faults.New(faults.Unknown, "fake", "no canned response for call %d", i)
}

func initRepo(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	for name, content := range map[string]string{
		"main.go":       "package main\n",
		"config/env.go": "package config\n\ntype Config struct {\n\tPort int\n}\n",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := wt.Add(name); err != nil {
			t.Fatal(err)
		}
	}
	hash, err := wt.Commit("initial", &gogit.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@test", When: time.Now()},
	})
	if err != nil {
		t.Fatal(err)
	}
	return dir, hash.String()
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

func validCriteria() []records.Criterion {
	c := records.Criterion{
		Name:        "env var",
		Description: "Names the new configuration variable.",
		Levels:      []string{"misses it", "hints at config", "names the area", "names it imprecisely", "names UserStoreURL"},
	}
	return []records.Criterion{c, c, c, c}
}

const testDiff = `diff --git a/config/env.go b/config/env.go
index 1111111..2222222 100644
--- a/config/env.go
+++ b/config/env.go
@@ -3,4 +3,6 @@ package config
 type Config struct {
 	Port int
+	// UserStoreURL points at the user service backend.
+	UserStoreURL string
 }
`

func testPR(commit string) records.PullRequest {
	return records.PullRequest{
		Number:     7,
		Title:      "add user store config",
		MergedAt:   time.Now(),
		BaseCommit: commit,
		Diff:       testDiff,
	}
}

func TestSynthesizeHappyPath(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	repoPath, commit := initRepo(t)

	mgr, err := worktree.NewManager(ctx, repoPath, worktree.WithBaseDir(t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}

	questions := &fakeExec[questionResponse]{responses: []questionResponse{
		{Question: "What does the new config field control?", Sources: []string{"config/env.go"}},
	}}
	answers := &fakeExec[answerResponse]{responses: []answerResponse{
		{Answer: "UserStoreURL points the service at the user store backend."},
	}}
	rubrics := &fakeExec[rubricResponse]{responses: []rubricResponse{
		{Criteria: validCriteria()},
	}}

	s := newWith(questions, answers, rubrics, mgr)
	result, err := s.Synthesize(ctx, testPR(commit))
	if err != nil {
		t.Fatalf("Synthesize() = %v", err)
	}

	if result.QA.PRNumber != 7 || result.QA.BaseCommit != commit {
		t.Errorf("QA record bookkeeping = %+v", result.QA)
	}
	if result.QA.Question == "" || result.QA.Answer == "" {
		t.Errorf("QA record incomplete: %+v", result.QA)
	}
	if err := result.Rubric.Validate(); err != nil {
		t.Errorf("rubric invalid: %v", err)
	}

	// The question stage must not see the diff, in tools or prompt.
	for _, name := range questions.toolNames[0] {
		if name == "read_diff" {
			t.Error("question stage received read_diff")
		}
	}
	if strings.Contains(questions.prompts[0], "UserStoreURL") {
		t.Error("question prompt leaked diff content")
	}
	if !strings.Contains(questions.prompts[0], "config/") {
		t.Error("question prompt is missing the file hierarchy")
	}

	var answerHasDiff bool
	for _, name := range answers.toolNames[0] {
		if name == "read_diff" {
			answerHasDiff = true
		}
	}
	if !answerHasDiff {
		t.Error("answer stage did not receive read_diff")
	}

	// The rubric stage grounds its criteria in the change: it gets the full
	// toolset and the changed paths up front.
	var rubricHasDiff bool
	for _, name := range rubrics.toolNames[0] {
		if name == "read_diff" {
			rubricHasDiff = true
		}
	}
	if !rubricHasDiff {
		t.Error("rubric stage did not receive read_diff")
	}
	if !strings.Contains(rubrics.prompts[0], "config/env.go") {
		t.Error("rubric prompt is missing the changed paths")
	}
}

func TestSynthesizeRetriesMalformedRubric(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	repoPath, commit := initRepo(t)

	mgr, err := worktree.NewManager(ctx, repoPath, worktree.WithBaseDir(t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}

	questions := &fakeExec[questionResponse]{responses: []questionResponse{{Question: "q"}}}
	answers := &fakeExec[answerResponse]{responses: []answerResponse{{Answer: "a"}}}
	rubrics := &fakeExec[rubricResponse]{responses: []rubricResponse{
		{Criteria: validCriteria()[:3]}, // too few criteria
		{Criteria: validCriteria()},
	}}

	s := newWith(questions, answers, rubrics, mgr)
	result, err := s.Synthesize(ctx, testPR(commit))
	if err != nil {
		t.Fatalf("Synthesize() = %v", err)
	}
	if rubrics.calls != 2 {
		t.Errorf("rubric stage called %d times, want 2", rubrics.calls)
	}
	if err := result.Rubric.Validate(); err != nil {
		t.Errorf("final rubric invalid: %v", err)
	}
}

func TestSynthesizeAbortsOnAPIFault(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	repoPath, commit := initRepo(t)

	mgr, err := worktree.NewManager(ctx, repoPath, worktree.WithBaseDir(t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}

	apiErr := faults.New(faults.API, "llm.Execute", "401 unauthorized")
	questions := &fakeExec[questionResponse]{errs: []error{apiErr, apiErr, apiErr}}
	s := newWith(questions, &fakeExec[answerResponse]{}, &fakeExec[rubricResponse]{}, mgr)

	_, err = s.Synthesize(ctx, testPR(commit))
	if faults.KindOf(err) != faults.API {
		t.Fatalf("Synthesize() = %v, want API fault", err)
	}
	if questions.calls != 1 {
		t.Errorf("question stage called %d times, want 1 (no retry on API faults)", questions.calls)
	}
}

func TestSynthesizeExhaustsMalformedRetries(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	repoPath, commit := initRepo(t)

	mgr, err := worktree.NewManager(ctx, repoPath, worktree.WithBaseDir(t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}

	// Empty questions are malformed; the stage re-asks with the same input.
	questions := &fakeExec[questionResponse]{responses: []questionResponse{{}, {}, {}}}
	s := newWith(questions, &fakeExec[answerResponse]{}, &fakeExec[rubricResponse]{}, mgr, WithStageAttempts(2))

	_, err = s.Synthesize(ctx, testPR(commit))
	if faults.KindOf(err) != faults.MalformedOutput {
		t.Fatalf("Synthesize() = %v, want MalformedOutput fault", err)
	}
	if questions.calls != 2 {
		t.Errorf("question stage called %d times, want 2", questions.calls)
	}
}

func TestSynthesizeRejectsInvalidPR(t *testing.T) {
	s := newWith(&fakeExec[questionResponse]{}, &fakeExec[answerResponse]{}, &fakeExec[rubricResponse]{}, nil)
	_, err := s.Synthesize(context.Background(), records.PullRequest{})
	if err == nil {
		t.Fatal("Synthesize() accepted an invalid PR")
	}
}
