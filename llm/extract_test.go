/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package llm

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"prbench.dev/prbench/faults"
)

type sample struct {
	Question string `json:"question"`
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want sample
	}{{
		name: "bare json",
		in:   `{"question": "why?"}`,
		want: sample{Question: "why?"},
	}, {
		name: "fenced block",
		in:   "Here you go:\n```json\n{\"question\": \"how?\"}\n```\nDone.",
		want: sample{Question: "how?"},
	}, {
		name: "inline fences",
		in:   "```json\n{\"question\": \"when?\"}\n```",
		want: sample{Question: "when?"},
	}, {
		name: "missing opening brace",
		in:   `"question": "who?"}`,
		want: sample{Question: "who?"},
	}, {
		name: "surrounding whitespace",
		in:   "\n\n  {\"question\": \"where?\"}  \n",
		want: sample{Question: "where?"},
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract[sample](tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Extract mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractMalformed(t *testing.T) {
	_, err := Extract[sample]("I could not produce JSON, sorry.")
	if err == nil {
		t.Fatal("expected error")
	}
	if !faults.IsKind(err, faults.MalformedOutput) {
		t.Errorf("kind = %q, want %q", faults.KindOf(err), faults.MalformedOutput)
	}
}

func TestResponseSchemaMentionsFields(t *testing.T) {
	schema := ResponseSchema[sample]()
	if want := `"question"`; !strings.Contains(schema, want) {
		t.Errorf("schema missing %s:\n%s", want, schema)
	}
}
