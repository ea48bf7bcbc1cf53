/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest is the run configuration. Everything here is safe to commit;
// credentials come from the environment instead.
type Manifest struct {
	// Repo is the source repository as owner/name.
	Repo string `yaml:"repo"`
	// RepoPath is a local clone of Repo used for base-commit checkouts.
	RepoPath string `yaml:"repo_path"`

	// Model synthesizes questions, answers, rubrics, and feedback.
	Model string `yaml:"model"`
	// CandidateModel answers benchmark questions.
	CandidateModel string `yaml:"candidate_model"`
	// Judge picks the grading provider: anthropic, openai, or gemini.
	Judge string `yaml:"judge"`
	// JudgeModel overrides the provider's default grading model.
	JudgeModel string `yaml:"judge_model"`

	Concurrency     int `yaml:"concurrency"`
	Limit           int `yaml:"limit"`
	MinChangedFiles int `yaml:"min_changed_files"`
	MaxDiffBytes    int `yaml:"max_diff_bytes"`
	MaxRounds       int `yaml:"max_rounds"`
}

func defaultManifest() Manifest {
	return Manifest{
		Model:           "claude-sonnet-4-5",
		CandidateModel:  "claude-sonnet-4-5",
		Judge:           "anthropic",
		Concurrency:     4,
		MinChangedFiles: 1,
		MaxDiffBytes:    1 << 20,
		MaxRounds:       3,
	}
}

// loadManifest overlays the YAML file, when given, onto the defaults.
// Unknown keys are errors so typos do not silently fall back to defaults.
func loadManifest(path string) (Manifest, error) {
	m := defaultManifest()
	if path == "" {
		return m, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return m, fmt.Errorf("opening manifest: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return m, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return m, nil
}

// splitRepo parses the owner/name form.
func (m Manifest) splitRepo() (string, string, error) {
	owner, name, ok := strings.Cut(m.Repo, "/")
	if !ok || owner == "" || name == "" {
		return "", "", fmt.Errorf("repo must be owner/name, got %q", m.Repo)
	}
	return owner, name, nil
}
