/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package prompts

import (
	"strings"
	"testing"
)

func TestBindAndBuild(t *testing.T) {
	tmpl, err := New("Question: {{question}}\nAnswer: {{answer}}")
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	bound, err := tmpl.Bind("question", "why?")
	if err != nil {
		t.Fatalf("Bind(question) = %v", err)
	}
	bound, err = bound.Bind("answer", "because")
	if err != nil {
		t.Fatalf("Bind(answer) = %v", err)
	}
	got, err := bound.Build()
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}
	if got != "Question: why?\nAnswer: because" {
		t.Errorf("Build() = %q", got)
	}
}

func TestBuildRejectsUnbound(t *testing.T) {
	tmpl := MustNew("{{a}} and {{b}}")
	bound, err := tmpl.Bind("a", "x")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := bound.Build(); err == nil || !strings.Contains(err.Error(), "unbound placeholder: b") {
		t.Errorf("Build() = %v, want unbound placeholder error", err)
	}
}

func TestBindImmutability(t *testing.T) {
	tmpl := MustNew("{{x}}")
	if _, err := tmpl.Bind("x", "first"); err != nil {
		t.Fatal(err)
	}
	// The original template must still be bindable.
	if _, err := tmpl.Bind("x", "second"); err != nil {
		t.Errorf("second Bind on original = %v, want nil", err)
	}
}

func TestBindRejectsRebind(t *testing.T) {
	tmpl := MustNew("{{x}}")
	bound, err := tmpl.Bind("x", "v")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := bound.Bind("x", "again"); err == nil {
		t.Error("rebinding bound placeholder succeeded, want error")
	}
}

func TestBindUnknownName(t *testing.T) {
	tmpl := MustNew("{{x}}")
	if _, err := tmpl.Bind("y", "v"); err == nil {
		t.Error("binding unknown placeholder succeeded, want error")
	}
}

func TestBindJSON(t *testing.T) {
	tmpl := MustNew("data:\n{{payload}}")
	bound, err := tmpl.BindJSON("payload", map[string]int{"n": 7})
	if err != nil {
		t.Fatal(err)
	}
	got, err := bound.Build()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, `"n": 7`) {
		t.Errorf("Build() = %q, want JSON payload", got)
	}
}

func TestNewRejectsMalformed(t *testing.T) {
	for _, text := range []string{"{{unclosed", "{{bad name}}", "{{1num}}"} {
		if _, err := New(text); err == nil {
			t.Errorf("New(%q) succeeded, want error", text)
		}
	}
}

func TestStageTemplatesParse(t *testing.T) {
	cases := map[string]struct {
		tmpl *Template
		want []string
	}{
		"question":  {Question, []string{"pr_metadata", "hierarchy", "format_instructions"}},
		"answer":    {Answer, []string{"pr_metadata", "question", "format_instructions"}},
		"candidate": {Candidate, []string{"pr_metadata", "question", "format_instructions"}},
		"rubric":    {Rubric, []string{"pr_metadata", "changed_paths", "question", "answer", "format_instructions"}},
		"grade":     {Grade, []string{"question", "diff", "criterion", "candidate", "format_instructions"}},
		"feedback":  {Feedback, []string{"question", "candidate", "criterion", "score", "format_instructions"}},
		"revise":    {Revise, []string{"question", "answer", "feedback", "format_instructions"}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := tc.tmpl.Placeholders()
			for _, p := range tc.want {
				if _, ok := got[p]; !ok {
					t.Errorf("missing placeholder %q, have %v", p, got)
				}
			}
		})
	}
}
