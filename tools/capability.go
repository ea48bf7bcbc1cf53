/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package tools

import (
	"context"

	"prbench.dev/prbench/llm"
)

// Capability names one inspection tool an LLM stage may call.
type Capability string

const (
	CapListFiles Capability = "list_files"
	CapReadFile  Capability = "read_file"
	CapReadDiff  Capability = "read_diff"
)

// QuestionStage withholds the diff so question synthesis cannot leak the
// answer, and CandidateStage withholds it so the model under evaluation
// cannot read the change it is scored on. AnswerStage and RubricStage see
// everything.
var (
	QuestionStage  = []Capability{CapListFiles, CapReadFile}
	CandidateStage = []Capability{CapListFiles, CapReadFile}
	AnswerStage    = []Capability{CapListFiles, CapReadFile, CapReadDiff}
	RubricStage    = []Capability{CapListFiles, CapReadFile, CapReadDiff}
)

// ForStage builds the tool definitions for one stage. Capabilities outside
// the closed set are ignored rather than granted.
func ForStage(insp *Inspector, caps []Capability) []llm.Tool {
	var ts []llm.Tool
	for _, c := range caps {
		switch c {
		case CapListFiles:
			ts = append(ts, listFilesTool(insp))
		case CapReadFile:
			ts = append(ts, readFileTool(insp))
		case CapReadDiff:
			ts = append(ts, readDiffTool(insp))
		}
	}
	return ts
}

func listFilesTool(insp *Inspector) llm.Tool {
	return llm.Tool{
		Name:        string(CapListFiles),
		Description: "List the repository file hierarchy, directories first, up to three levels deep.",
		Handle: func(ctx context.Context, args map[string]any) map[string]any {
			listing, err := insp.ListFiles()
			if err != nil {
				return llm.ErrorResult("%s", err)
			}
			return map[string]any{"files": listing}
		},
	}
}

func readFileTool(insp *Inspector) llm.Tool {
	return llm.Tool{
		Name:        string(CapReadFile),
		Description: "Read the full content of one file, by path relative to the repository root.",
		Parameters: []llm.Parameter{{
			Name:        "path",
			Type:        "string",
			Description: "File path relative to the repository root.",
			Required:    true,
		}},
		Handle: func(ctx context.Context, args map[string]any) map[string]any {
			path, errResult := llm.Param[string](args, "path")
			if errResult != nil {
				return errResult
			}
			content, err := insp.ReadFile(path)
			if err != nil {
				return llm.ErrorResult("%s", err)
			}
			return map[string]any{"content": content}
		},
	}
}

func readDiffTool(insp *Inspector) llm.Tool {
	return llm.Tool{
		Name:        string(CapReadDiff),
		Description: "Read the pull request's unified diff.",
		Handle: func(ctx context.Context, args map[string]any) map[string]any {
			return map[string]any{"diff": insp.Diff()}
		},
	}
}
