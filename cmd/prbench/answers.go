/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"

	"prbench.dev/prbench/agentrun"
	"prbench.dev/prbench/batch"
	"prbench.dev/prbench/llm"
	"prbench.dev/prbench/records"
	"prbench.dev/prbench/worktree"
)

// item is one unit of candidate work: a QA record joined with its PR.
type item struct {
	pr records.PullRequest
	qa records.QARecord
}

func newAnswersCmd(manifest func() (Manifest, error)) *cobra.Command {
	var (
		prsPath string
		qaPath  string
		out     string
		model   string
		resume  bool
	)

	cmd := &cobra.Command{
		Use:   "answers",
		Short: "Run a candidate model against the benchmark questions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			m, err := manifest()
			if err != nil {
				return err
			}
			if model != "" {
				m.CandidateModel = model
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
			if resume {
				items, err = withoutAnswered(items, out, m.CandidateModel)
				if err != nil {
					return err
				}
			}

			trees, err := worktree.NewManager(ctx, m.RepoPath)
			if err != nil {
				return err
			}
			runner, err := agentrun.New(client, trees, m.CandidateModel)
			if err != nil {
				return err
			}

			w, err := records.NewWriter(out)
			if err != nil {
				return err
			}
			defer w.Close()

			outcomes := batch.Run(ctx, m.Concurrency, items, func(ctx context.Context, it item) (records.CandidateAnswer, error) {
				answer, err := runner.Answer(ctx, it.pr, it.qa.Question)
				if err != nil {
					return records.CandidateAnswer{}, err
				}
				rec := records.CandidateAnswer{
					PRNumber: it.pr.Number,
					Model:    runner.Model(),
					Answer:   answer,
				}
				return rec, w.Append(&rec)
			})

			clog.FromContext(ctx).With("model", m.CandidateModel).With("out", out).Info("Candidate answers written")
			return batch.Summarize(outcomes).Render(cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&prsPath, "prs", "prs.jsonl", "Mined PRs JSONL path")
	cmd.Flags().StringVar(&qaPath, "qa", "qa.jsonl", "Question/answer JSONL path")
	cmd.Flags().StringVar(&out, "out", "answers.jsonl", "Candidate answers output path")
	cmd.Flags().StringVar(&model, "model", "", "Candidate model (overrides manifest)")
	cmd.Flags().BoolVar(&resume, "resume", false, "Skip questions this model already answered in the output")
	return cmd
}

// joinQA pairs each QA record with its PR by number. Questions whose PR is
// missing are an input error, not a skip.
func joinQA(prsPath, qaPath string) ([]item, error) {
	prs, err := records.ReadAll[records.PullRequest](prsPath)
	if err != nil {
		return nil, err
	}
	byNumber := make(map[int]records.PullRequest, len(prs))
	for _, pr := range prs {
		byNumber[pr.Number] = pr
	}

	qas, err := records.ReadAll[records.QARecord](qaPath)
	if err != nil {
		return nil, err
	}
	items := make([]item, 0, len(qas))
	for _, qa := range qas {
		pr, ok := byNumber[qa.PRNumber]
		if !ok {
			return nil, fmt.Errorf("qa record for PR %d has no mined PR in %s", qa.PRNumber, prsPath)
		}
		items = append(items, item{pr: pr, qa: qa})
	}
	return items, nil
}

func withoutAnswered(items []item, path, model string) ([]item, error) {
	existing, err := records.ReadAll[records.CandidateAnswer](path)
	if errors.Is(err, os.ErrNotExist) {
		return items, nil
	}
	if err != nil {
		return nil, err
	}
	done := make(map[int]bool, len(existing))
	for _, a := range existing {
		if a.Model == model {
			done[a.PRNumber] = true
		}
	}
	var remaining []item
	for _, it := range items {
		if !done[it.pr.Number] {
			remaining = append(remaining, it)
		}
	}
	return remaining, nil
}
