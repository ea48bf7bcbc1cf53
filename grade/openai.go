/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package grade

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"prbench.dev/prbench/faults"
	"prbench.dev/prbench/llm"
	"prbench.dev/prbench/records"
)

// openaiJudge grades with an OpenAI chat model.
type openaiJudge struct {
	client openai.Client
	model  openai.ChatModel
}

// NewOpenAIJudge builds a judge on the OpenAI API.
func NewOpenAIJudge(apiKey, model string) (Judge, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}
	chatModel := openai.ChatModel(model)
	if model == "" {
		chatModel = openai.ChatModelGPT4o
	}
	return &openaiJudge{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  chatModel,
	}, nil
}

func (j *openaiJudge) Score(ctx context.Context, question, diff string, criterion records.Criterion, candidate string) (records.CriterionGrade, error) {
	prompt, err := judgePrompt(question, diff, criterion, candidate)
	if err != nil {
		return records.CriterionGrade{}, err
	}

	completion, err := j.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       j.model,
		Temperature: openai.Float(0.0),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(judgeSystem),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return records.CriterionGrade{}, classifyOpenAIError("grade.openai.Score", err)
	}
	if len(completion.Choices) == 0 {
		return records.CriterionGrade{}, faults.New(faults.MalformedOutput, "grade.openai.Score", "no choices in completion")
	}

	resp, err := llm.Extract[gradeResponse](completion.Choices[0].Message.Content)
	if err != nil {
		return records.CriterionGrade{}, err
	}
	return toGrade(resp), nil
}

func classifyOpenAIError(op string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429, 500, 503:
			return faults.Transient(op, err)
		}
	}
	return faults.Wrap(faults.API, op, err)
}
