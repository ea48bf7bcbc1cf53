/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"

	"prbench.dev/prbench/agentrun"
	"prbench.dev/prbench/batch"
	"prbench.dev/prbench/grade"
	"prbench.dev/prbench/llm"
	"prbench.dev/prbench/multiturn"
	"prbench.dev/prbench/records"
	"prbench.dev/prbench/worktree"
)

func newMultiturnCmd(manifest func() (Manifest, error)) *cobra.Command {
	var (
		prsPath     string
		qaPath      string
		rubricsPath string
		turnsOut    string
		finalOut    string
		rounds      int
	)

	cmd := &cobra.Command{
		Use:   "multiturn",
		Short: "Run the bounded feedback loop for each benchmark item",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			m, err := manifest()
			if err != nil {
				return err
			}
			if rounds > 0 {
				m.MaxRounds = rounds
			}
			if m.RepoPath == "" {
				return errors.New("repo_path is required (local clone of the mined repository)")
			}

			sec, err := loadSecrets(ctx)
			if err != nil {
				return err
			}
			client, err := llm.NewClient(sec.AnthropicAPIKey)
			if err != nil {
				return err
			}

			items, err := joinQA(prsPath, qaPath)
			if err != nil {
				return err
			}
			rubrics, err := records.ReadAll[records.Rubric](rubricsPath)
			if err != nil {
				return err
			}
			byNumber := make(map[int]records.Rubric, len(rubrics))
			for _, r := range rubrics {
				byNumber[r.PRNumber] = r
			}

			trees, err := worktree.NewManager(ctx, m.RepoPath)
			if err != nil {
				return err
			}
			candidate, err := agentrun.New(client, trees, m.CandidateModel)
			if err != nil {
				return err
			}
			judge, err := buildJudge(ctx, m, sec)
			if err != nil {
				return err
			}
			source, err := multiturn.NewAnthropicSource(client, m.Model)
			if err != nil {
				return err
			}
			loop := multiturn.NewLoop(candidate, grade.NewGrader(judge), source,
				multiturn.WithMaxRounds(m.MaxRounds))

			turnsWriter, err := records.NewWriter(turnsOut)
			if err != nil {
				return err
			}
			defer turnsWriter.Close()
			finalWriter, err := records.NewWriter(finalOut)
			if err != nil {
				return err
			}
			defer finalWriter.Close()

			outcomes := batch.Run(ctx, m.Concurrency, items, func(ctx context.Context, it item) (multiturn.Transcript, error) {
				rubric, ok := byNumber[it.pr.Number]
				if !ok {
					return multiturn.Transcript{}, fmt.Errorf("no rubric for PR %d", it.pr.Number)
				}
				transcript, err := loop.Run(ctx, it.pr, it.qa, rubric)
				if err != nil {
					return transcript, err
				}
				for i := range transcript.Rounds {
					if err := turnsWriter.Append(&transcript.Rounds[i].Turn); err != nil {
						return transcript, err
					}
				}
				final := transcript.Final()
				return transcript, finalWriter.Append(&final)
			})

			var converged int
			for _, o := range outcomes {
				if o.Err == nil && o.Value.Converged {
					converged++
				}
			}
			clog.FromContext(ctx).With("converged", converged).With("turns", turnsOut).
				With("final", finalOut).Info("Feedback loops complete")
			return batch.Summarize(outcomes).Render(cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&prsPath, "prs", "prs.jsonl", "Mined PRs JSONL path")
	cmd.Flags().StringVar(&qaPath, "qa", "qa.jsonl", "Question/answer JSONL path")
	cmd.Flags().StringVar(&rubricsPath, "rubrics", "rubrics.jsonl", "Rubrics JSONL path")
	cmd.Flags().StringVar(&turnsOut, "turns-out", "turns.jsonl", "Feedback turns output path")
	cmd.Flags().StringVar(&finalOut, "final-out", "final.jsonl", "Final graded answers output path")
	cmd.Flags().IntVar(&rounds, "rounds", 0, "Maximum feedback rounds (overrides manifest)")
	return cmd
}
