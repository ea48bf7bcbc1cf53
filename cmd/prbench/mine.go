/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"errors"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"

	"prbench.dev/prbench/mine"
	"prbench.dev/prbench/records"
)

func newMineCmd(manifest func() (Manifest, error)) *cobra.Command {
	var (
		repo  string
		out   string
		limit int
		since string
	)

	cmd := &cobra.Command{
		Use:   "mine",
		Short: "Mine merged pull requests into a JSONL file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			m, err := manifest()
			if err != nil {
				return err
			}
			if repo != "" {
				m.Repo = repo
			}
			if limit > 0 {
				m.Limit = limit
			}
			owner, name, err := m.splitRepo()
			if err != nil {
				return err
			}

			sec, err := loadSecrets(ctx)
			if err != nil {
				return err
			}
			if sec.GitHubToken == "" {
				return errors.New("GITHUB_TOKEN is required")
			}

			opts := []mine.Option{
				mine.WithLimit(m.Limit),
				mine.WithMinChangedFiles(m.MinChangedFiles),
				mine.WithMaxDiffBytes(m.MaxDiffBytes),
			}
			if since != "" {
				t, err := time.Parse(time.DateOnly, since)
				if err != nil {
					return err
				}
				opts = append(opts, mine.WithSince(t))
			}

			miner, err := mine.NewMiner(ctx, sec.GitHubToken, owner, name, opts...)
			if err != nil {
				return err
			}
			prs, err := miner.Mine(ctx)
			if err != nil {
				return err
			}

			w, err := records.NewWriter(out)
			if err != nil {
				return err
			}
			defer w.Close()
			for i := range prs {
				if err := w.Append(&prs[i]); err != nil {
					return err
				}
			}
			clog.FromContext(ctx).With("count", len(prs)).With("out", out).Info("Mined pull requests")
			return nil
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "", "Source repository as owner/name (overrides manifest)")
	cmd.Flags().StringVar(&out, "out", "prs.jsonl", "Output JSONL path")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum PRs to mine (overrides manifest)")
	cmd.Flags().StringVar(&since, "since", "", "Skip PRs merged before this date (YYYY-MM-DD)")
	return cmd
}
