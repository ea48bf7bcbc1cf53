/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"errors"
	"os"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"

	"prbench.dev/prbench/batch"
	"prbench.dev/prbench/llm"
	"prbench.dev/prbench/records"
	"prbench.dev/prbench/synth"
	"prbench.dev/prbench/worktree"
)

func newDatasetCmd(manifest func() (Manifest, error)) *cobra.Command {
	var (
		prsPath    string
		qaOut      string
		rubricsOut string
		resume     bool
	)

	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Synthesize question, answer, and rubric for each mined PR",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			m, err := manifest()
			if err != nil {
				return err
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

			prs, err := records.ReadAll[records.PullRequest](prsPath)
			if err != nil {
				return err
			}
			if resume {
				prs, err = withoutDone(prs, qaOut)
				if err != nil {
					return err
				}
			}

			trees, err := worktree.NewManager(ctx, m.RepoPath)
			if err != nil {
				return err
			}
			synthesizer, err := synth.New(client, trees, m.Model)
			if err != nil {
				return err
			}

			qaWriter, err := records.NewWriter(qaOut)
			if err != nil {
				return err
			}
			defer qaWriter.Close()
			rubricWriter, err := records.NewWriter(rubricsOut)
			if err != nil {
				return err
			}
			defer rubricWriter.Close()

			outcomes := batch.Run(ctx, m.Concurrency, prs, func(ctx context.Context, pr records.PullRequest) (synth.Result, error) {
				result, err := synthesizer.Synthesize(ctx, pr)
				if err != nil {
					return result, err
				}
				// Appending here keeps finished items on disk even when the
				// run is interrupted.
				if err := qaWriter.Append(&result.QA); err != nil {
					return result, err
				}
				return result, rubricWriter.Append(&result.Rubric)
			})

			clog.FromContext(ctx).With("qa", qaOut).With("rubrics", rubricsOut).Info("Dataset written")
			return batch.Summarize(outcomes).Render(cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&prsPath, "prs", "prs.jsonl", "Mined PRs JSONL path")
	cmd.Flags().StringVar(&qaOut, "qa-out", "qa.jsonl", "Question/answer output path")
	cmd.Flags().StringVar(&rubricsOut, "rubrics-out", "rubrics.jsonl", "Rubric output path")
	cmd.Flags().BoolVar(&resume, "resume", false, "Skip PRs already present in the QA output")
	return cmd
}

// withoutDone drops PRs that already have a QA record in path. A missing
// file means a fresh run.
func withoutDone(prs []records.PullRequest, path string) ([]records.PullRequest, error) {
	existing, err := records.ReadAll[records.QARecord](path)
	if errors.Is(err, os.ErrNotExist) {
		return prs, nil
	}
	if err != nil {
		return nil, err
	}
	done := make(map[int]bool, len(existing))
	for _, qa := range existing {
		done[qa.PRNumber] = true
	}
	var remaining []records.PullRequest
	for _, pr := range prs {
		if !done[pr.Number] {
			remaining = append(remaining, pr)
		}
	}
	return remaining, nil
}
