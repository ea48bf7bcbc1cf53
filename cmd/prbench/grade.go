/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"fmt"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"

	"prbench.dev/prbench/batch"
	"prbench.dev/prbench/grade"
	"prbench.dev/prbench/llm"
	"prbench.dev/prbench/records"
)

func newGradeCmd(manifest func() (Manifest, error)) *cobra.Command {
	var (
		prsPath     string
		qaPath      string
		rubricsPath string
		answersPath string
		out         string
		judge       string
	)

	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Grade candidate answers against their rubrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			m, err := manifest()
			if err != nil {
				return err
			}
			if judge != "" {
				m.Judge = judge
			}

			sec, err := loadSecrets(ctx)
			if err != nil {
				return err
			}
			j, err := buildJudge(ctx, m, sec)
			if err != nil {
				return err
			}
			grader := grade.NewGrader(j)

			prs, err := records.ReadAll[records.PullRequest](prsPath)
			if err != nil {
				return err
			}
			diffs := make(map[int]string, len(prs))
			for _, pr := range prs {
				diffs[pr.Number] = pr.Diff
			}
			qas, err := records.ReadAll[records.QARecord](qaPath)
			if err != nil {
				return err
			}
			questions := make(map[int]string, len(qas))
			for _, qa := range qas {
				questions[qa.PRNumber] = qa.Question
			}
			rubrics, err := records.ReadAll[records.Rubric](rubricsPath)
			if err != nil {
				return err
			}
			byNumber := make(map[int]records.Rubric, len(rubrics))
			for _, r := range rubrics {
				byNumber[r.PRNumber] = r
			}

			answers, err := records.ReadAll[records.CandidateAnswer](answersPath)
			if err != nil {
				return err
			}

			w, err := records.NewWriter(out)
			if err != nil {
				return err
			}
			defer w.Close()

			outcomes := batch.Run(ctx, m.Concurrency, answers, func(ctx context.Context, a records.CandidateAnswer) (records.GradedAnswer, error) {
				rubric, ok := byNumber[a.PRNumber]
				if !ok {
					return records.GradedAnswer{}, fmt.Errorf("no rubric for PR %d", a.PRNumber)
				}
				question, ok := questions[a.PRNumber]
				if !ok {
					return records.GradedAnswer{}, fmt.Errorf("no question for PR %d", a.PRNumber)
				}
				diff, ok := diffs[a.PRNumber]
				if !ok {
					return records.GradedAnswer{}, fmt.Errorf("no mined PR for PR %d", a.PRNumber)
				}
				graded, err := grader.Grade(ctx, question, diff, rubric, a.Model, a.Answer)
				if err != nil {
					return graded, err
				}
				return graded, w.Append(&graded)
			})

			var sum float64
			var graded int
			for _, o := range outcomes {
				if o.Err == nil {
					sum += o.Value.ScorePercent
					graded++
				}
			}
			log := clog.FromContext(ctx).With("judge", m.Judge).With("out", out)
			if graded > 0 {
				log = log.With("mean_percent", fmt.Sprintf("%.1f", sum/float64(graded)))
			}
			log.Info("Grading complete")
			return batch.Summarize(outcomes).Render(cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&prsPath, "prs", "prs.jsonl", "Mined PRs JSONL path")
	cmd.Flags().StringVar(&qaPath, "qa", "qa.jsonl", "Question/answer JSONL path")
	cmd.Flags().StringVar(&rubricsPath, "rubrics", "rubrics.jsonl", "Rubrics JSONL path")
	cmd.Flags().StringVar(&answersPath, "answers", "answers.jsonl", "Candidate answers JSONL path")
	cmd.Flags().StringVar(&out, "out", "grades.jsonl", "Graded answers output path")
	cmd.Flags().StringVar(&judge, "judge", "", "Judge provider: anthropic, openai, or gemini (overrides manifest)")
	return cmd
}

// buildJudge wires the grading provider named in the manifest.
func buildJudge(ctx context.Context, m Manifest, sec secrets) (grade.Judge, error) {
	switch m.Judge {
	case "", "anthropic":
		client, err := llm.NewClient(sec.AnthropicAPIKey)
		if err != nil {
			return nil, err
		}
		model := m.JudgeModel
		if model == "" {
			model = m.Model
		}
		return grade.NewAnthropicJudge(client, model)
	case "openai":
		return grade.NewOpenAIJudge(sec.OpenAIAPIKey, m.JudgeModel)
	case "gemini":
		return grade.NewGeminiJudge(ctx, sec.GeminiAPIKey, m.JudgeModel)
	default:
		return nil, fmt.Errorf("unknown judge provider %q", m.Judge)
	}
}
