/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package batch

import (
	"context"

	"github.com/chainguard-dev/clog"
	"golang.org/x/sync/semaphore"
)

// Task processes one item and produces one value.
type Task[I, T any] func(ctx context.Context, item I) (T, error)

// Outcome pairs one item with its result. Exactly one of Value and Err is
// meaningful.
type Outcome[I, T any] struct {
	Item  I
	Value T
	Err   error
}

// Run executes the task for every item with at most concurrency running at
// once. One item's failure is recorded in its outcome and never stops the
// others; cancelling the context stops scheduling new items and the ones
// never started carry the context error. Outcomes come back in input order.
func Run[I, T any](ctx context.Context, concurrency int, items []I, task Task[I, T]) []Outcome[I, T] {
	if concurrency < 1 {
		concurrency = 1
	}
	log := clog.FromContext(ctx)

	outcomes := make([]Outcome[I, T], len(items))
	sem := semaphore.NewWeighted(int64(concurrency))
	for i, item := range items {
		outcomes[i].Item = item
		if err := sem.Acquire(ctx, 1); err != nil {
			outcomes[i].Err = err
			continue
		}
		go func(i int, item I) {
			defer sem.Release(1)
			value, err := task(ctx, item)
			if err != nil {
				log.Errorf("Task failed: %v", err)
			}
			outcomes[i] = Outcome[I, T]{Item: item, Value: value, Err: err}
		}(i, item)
	}

	// Draining the semaphore waits for in-flight tasks even when ctx is
	// already cancelled.
	for range concurrency {
		if err := sem.Acquire(context.Background(), 1); err != nil {
			break
		}
	}
	return outcomes
}

// Failed returns the items whose tasks errored, for retry hints.
func Failed[I, T any](outcomes []Outcome[I, T]) []I {
	var items []I
	for _, o := range outcomes {
		if o.Err != nil {
			items = append(items, o.Item)
		}
	}
	return items
}
