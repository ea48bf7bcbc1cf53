/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package grade

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"

	"prbench.dev/prbench/llm"
	"prbench.dev/prbench/records"
)

// anthropicJudge grades with a Claude model. Grading needs no tools; the
// verdict must follow from the criterion and answer alone.
type anthropicJudge struct {
	exec llm.Interface[gradeResponse]
}

// NewAnthropicJudge builds a judge on an Anthropic client. Temperature is
// pinned to zero so repeated grading of the same answer stays stable.
func NewAnthropicJudge(client anthropic.Client, model string) (Judge, error) {
	exec, err := llm.New(client, judgeSystem,
		llm.WithModel[gradeResponse](model),
		llm.WithTemperature[gradeResponse](0.0),
	)
	if err != nil {
		return nil, err
	}
	return &anthropicJudge{exec: exec}, nil
}

func (j *anthropicJudge) Score(ctx context.Context, question, diff string, criterion records.Criterion, candidate string) (records.CriterionGrade, error) {
	prompt, err := judgePrompt(question, diff, criterion, candidate)
	if err != nil {
		return records.CriterionGrade{}, err
	}
	resp, err := j.exec.Execute(ctx, prompt, nil)
	if err != nil {
		return records.CriterionGrade{}, err
	}
	return toGrade(resp), nil
}
