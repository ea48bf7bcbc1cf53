/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package faults

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{{
		name: "direct",
		err:  New(Checkout, "worktree.Create", "commit %s not found", "deadbeef"),
		want: Checkout,
	}, {
		name: "wrapped once",
		err:  fmt.Errorf("processing PR 42: %w", Wrap(NotFound, "tools.ReadFile", errors.New("no such file"))),
		want: NotFound,
	}, {
		name: "wrapped twice",
		err:  fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", Transient("llm.Execute", errors.New("429")))),
		want: API,
	}, {
		name: "plain error",
		err:  errors.New("boom"),
		want: Unknown,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsTransient(t *testing.T) {
	if !IsTransient(Transient("llm.Execute", errors.New("overloaded"))) {
		t.Error("Transient error not reported as transient")
	}
	if IsTransient(New(API, "mine.ListMerged", "bad credentials")) {
		t.Error("non-transient API error reported as transient")
	}
	if IsTransient(nil) {
		t.Error("nil reported as transient")
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(Resource, "op", nil) != nil {
		t.Error("Wrap(nil) should be nil")
	}
	if Transient("op", nil) != nil {
		t.Error("Transient(nil) should be nil")
	}
}

func TestUnwrap(t *testing.T) {
	sentinel := errors.New("disk full")
	err := Wrap(Resource, "worktree.Create", sentinel)
	if !errors.Is(err, sentinel) {
		t.Error("wrapped error lost its cause")
	}
	if !IsKind(err, Resource) {
		t.Error("IsKind(Resource) = false")
	}
}
