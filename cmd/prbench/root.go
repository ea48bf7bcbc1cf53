/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"

	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"
)

// secrets are the API credentials, environment-only so they never land in a
// manifest that gets committed.
type secrets struct {
	GitHubToken     string `env:"GITHUB_TOKEN"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	GeminiAPIKey    string `env:"GEMINI_API_KEY"`
}

func loadSecrets(ctx context.Context) (secrets, error) {
	var sec secrets
	err := envconfig.Process(ctx, &sec)
	return sec, err
}

func newRootCmd() *cobra.Command {
	var manifestPath string

	root := &cobra.Command{
		Use:   "prbench",
		Short: "Build and run PR-comprehension benchmarks",
		Long: `prbench builds benchmarks from merged pull requests: it mines PRs,
synthesizes a question, reference answer, and rubric for each one inside a
checkout of the PR's base commit, runs candidate models against the
questions, grades their answers criterion by criterion, and optionally loops
Socratic feedback until an answer is perfect or the round budget runs out.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	root.PersistentFlags().StringVar(&manifestPath, "manifest", "", "Run manifest (YAML); flags override its values")

	manifest := func() (Manifest, error) { return loadManifest(manifestPath) }

	root.AddCommand(
		newMineCmd(manifest),
		newDatasetCmd(manifest),
		newAnswersCmd(manifest),
		newGradeCmd(manifest),
		newMultiturnCmd(manifest),
	)
	return root
}
