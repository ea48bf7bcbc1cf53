/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package grade

import (
	"context"
	"errors"

	"google.golang.org/genai"

	"prbench.dev/prbench/faults"
	"prbench.dev/prbench/llm"
	"prbench.dev/prbench/records"
)

// geminiJudge grades with a Gemini model.
type geminiJudge struct {
	client *genai.Client
	model  string
}

// NewGeminiJudge builds a judge on the Gemini API.
func NewGeminiJudge(ctx context.Context, apiKey, model string) (Judge, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, faults.Wrap(faults.API, "grade.NewGeminiJudge", err)
	}
	return &geminiJudge{client: client, model: model}, nil
}

func (j *geminiJudge) Score(ctx context.Context, question, diff string, criterion records.Criterion, candidate string) (records.CriterionGrade, error) {
	prompt, err := judgePrompt(question, diff, criterion, candidate)
	if err != nil {
		return records.CriterionGrade{}, err
	}

	temperature := float32(0.0)
	result, err := j.client.Models.GenerateContent(ctx, j.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			Temperature:       &temperature,
			SystemInstruction: genai.NewContentFromText(judgeSystem, genai.RoleUser),
		},
	)
	if err != nil {
		return records.CriterionGrade{}, faults.Wrap(faults.API, "grade.gemini.Score", err)
	}
	text := result.Text()
	if text == "" {
		return records.CriterionGrade{}, faults.New(faults.MalformedOutput, "grade.gemini.Score", "empty completion")
	}

	resp, err := llm.Extract[gradeResponse](text)
	if err != nil {
		return records.CriterionGrade{}, err
	}
	return toGrade(resp), nil
}
