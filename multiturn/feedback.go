/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package multiturn

import (
	"context"
	"strconv"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/chainguard-dev/clog"

	"prbench.dev/prbench/faults"
	"prbench.dev/prbench/llm"
	"prbench.dev/prbench/prompts"
	"prbench.dev/prbench/records"
)

// Source produces Socratic feedback for one weak criterion. Implementations
// must not reveal reference answer content.
type Source interface {
	Feedback(ctx context.Context, qa records.QARecord, candidate string, criterion records.Criterion, score int) (string, error)
}

const feedbackSystem = "You are a Socratic reviewer. You guide with questions and pointers; you never hand over the missing fact."

type feedbackResponse struct {
	Feedback string `json:"feedback" jsonschema:"required" jsonschema_description:"A short Socratic hint."`
}

// defaultFeedbackAttempts bounds regeneration when a hint leaks answer
// content.
const defaultFeedbackAttempts = 3

// leakWindow is the n-gram length treated as a leak: any run of this many
// consecutive reference-answer words appearing in the feedback fails the
// opacity check.
const leakWindow = 6

// anthropicSource generates feedback with a Claude model, regenerating when
// the hint leaks reference answer content.
type anthropicSource struct {
	exec     llm.Interface[feedbackResponse]
	attempts int
}

// SourceOption configures a feedback source.
type SourceOption func(*anthropicSource)

// WithFeedbackAttempts overrides the regeneration budget for leaky hints.
func WithFeedbackAttempts(n int) SourceOption {
	return func(s *anthropicSource) {
		if n > 0 {
			s.attempts = n
		}
	}
}

// NewAnthropicSource builds the default feedback source.
func NewAnthropicSource(client anthropic.Client, model string, opts ...SourceOption) (Source, error) {
	exec, err := llm.New(client, feedbackSystem,
		llm.WithModel[feedbackResponse](model),
		llm.WithTemperature[feedbackResponse](0.5),
	)
	if err != nil {
		return nil, err
	}
	s := &anthropicSource{exec: exec, attempts: defaultFeedbackAttempts}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *anthropicSource) Feedback(ctx context.Context, qa records.QARecord, candidate string, criterion records.Criterion, score int) (string, error) {
	prompt, err := prompts.BuildWith(prompts.Feedback, map[string]any{
		"question":            qa.Question,
		"candidate":           candidate,
		"criterion":           criterion,
		"score":               strconv.Itoa(score),
		"format_instructions": llm.FormatInstructions[feedbackResponse](),
	})
	if err != nil {
		return "", err
	}

	log := clog.FromContext(ctx)
	for i := 0; i < s.attempts; i++ {
		resp, err := s.exec.Execute(ctx, prompt, nil)
		if err != nil {
			return "", err
		}
		if resp.Feedback == "" {
			return "", faults.New(faults.MalformedOutput, "multiturn.Feedback", "model returned empty feedback")
		}
		if !LeaksAnswer(resp.Feedback, qa.Answer) && !LeaksRubric(resp.Feedback, criterion) {
			return resp.Feedback, nil
		}
		log.With("attempt", i+1).Warn("Feedback leaked reference answer or rubric content, regenerating")
	}
	return "", faults.New(faults.MalformedOutput, "multiturn.Feedback",
		"feedback kept leaking answer or rubric content after %d attempts", s.attempts)
}

// LeaksAnswer reports whether feedback contains any leakWindow-word run of
// the reference answer, compared case-insensitively.
func LeaksAnswer(feedback, reference string) bool {
	words := strings.Fields(strings.ToLower(reference))
	if len(words) < leakWindow {
		return false
	}
	haystack := normalize(feedback)
	for i := 0; i+leakWindow <= len(words); i++ {
		if strings.Contains(haystack, strings.Join(words[i:i+leakWindow], " ")) {
			return true
		}
	}
	return false
}

// LeaksRubric reports whether feedback quotes the criterion's name or any of
// its level descriptions verbatim, compared case-insensitively.
func LeaksRubric(feedback string, criterion records.Criterion) bool {
	haystack := normalize(feedback)
	if name := normalize(criterion.Name); name != "" && strings.Contains(haystack, name) {
		return true
	}
	for _, level := range criterion.Levels {
		if text := normalize(level); text != "" && strings.Contains(haystack, text) {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
