/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package batch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"prbench.dev/prbench/faults"
	"prbench.dev/prbench/records"
)

func prs(n int) []records.PullRequest {
	out := make([]records.PullRequest, n)
	for i := range out {
		out[i] = records.PullRequest{
			Number:     i + 1,
			MergedAt:   time.Now(),
			BaseCommit: "0123456789abcdef0123456789abcdef01234567",
		}
	}
	return out
}

func TestRunPreservesOrderAndIsolatesFailures(t *testing.T) {
	input := prs(10)
	outcomes := Run(context.Background(), 4, input, func(ctx context.Context, pr records.PullRequest) (int, error) {
		if pr.Number%3 == 0 {
			return 0, faults.New(faults.Checkout, "test", "pr %d failed", pr.Number)
		}
		return pr.Number * 10, nil
	})

	if len(outcomes) != 10 {
		t.Fatalf("got %d outcomes, want 10", len(outcomes))
	}
	for i, o := range outcomes {
		if o.Item.Number != i+1 {
			t.Errorf("outcome %d is for PR %d, order not preserved", i, o.Item.Number)
		}
		if o.Item.Number%3 == 0 {
			if faults.KindOf(o.Err) != faults.Checkout {
				t.Errorf("PR %d: err = %v, want checkout fault", o.Item.Number, o.Err)
			}
		} else if o.Err != nil || o.Value != o.Item.Number*10 {
			t.Errorf("PR %d: value = %d, err = %v", o.Item.Number, o.Value, o.Err)
		}
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	var current, peak atomic.Int32
	var mu sync.Mutex

	Run(context.Background(), 3, prs(12), func(ctx context.Context, pr records.PullRequest) (struct{}, error) {
		n := current.Add(1)
		mu.Lock()
		if n > peak.Load() {
			peak.Store(n)
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		current.Add(-1)
		return struct{}{}, nil
	})

	if p := peak.Load(); p > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", p)
	}
}

func TestRunStopsSchedulingOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var started atomic.Int32

	outcomes := Run(ctx, 1, prs(20), func(ctx context.Context, pr records.PullRequest) (struct{}, error) {
		if started.Add(1) == 2 {
			cancel()
		}
		time.Sleep(time.Millisecond)
		return struct{}{}, nil
	})

	var skipped int
	for _, o := range outcomes {
		if errors.Is(o.Err, context.Canceled) {
			skipped++
		}
	}
	if skipped == 0 {
		t.Error("cancellation did not stop scheduling")
	}
	if int(started.Load())+skipped != 20 {
		t.Errorf("started %d + skipped %d != 20", started.Load(), skipped)
	}
}

func TestSummarize(t *testing.T) {
	outcomes := []Outcome[int, int]{
		{Err: nil},
		{Err: nil},
		{Err: faults.New(faults.Checkout, "op", "x")},
		{Err: faults.New(faults.API, "op", "y")},
		{Err: faults.New(faults.API, "op", "z")},
	}
	s := Summarize(outcomes)
	if s.Total != 5 || s.Succeeded != 2 {
		t.Errorf("Summarize() = %+v", s)
	}
	if s.Failed[faults.API] != 2 || s.Failed[faults.Checkout] != 1 {
		t.Errorf("failure counts = %v", s.Failed)
	}

	var sb strings.Builder
	if err := s.Render(&sb); err != nil {
		t.Fatalf("Render() = %v", err)
	}
	out := sb.String()
	for _, want := range []string{"succeeded", "failed: api", "failed: checkout", "total"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary table missing %q:\n%s", want, out)
		}
	}
}

func TestFailed(t *testing.T) {
	outcomes := []Outcome[int, struct{}]{
		{Item: 1},
		{Item: 2, Err: errors.New("boom")},
		{Item: 3},
		{Item: 4, Err: errors.New("boom")},
	}
	got := Failed(outcomes)
	if len(got) != 2 || got[0] != 2 || got[1] != 4 {
		t.Errorf("Failed() = %v, want [2 4]", got)
	}
}
