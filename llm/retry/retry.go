/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

// Package retry bounds repeated attempts at flaky remote calls: exponential
// backoff with jitter between attempts, a hard cap on how many retries one
// operation gets, and context-aware waits.
package retry

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/chainguard-dev/clog"

	"prbench.dev/prbench/faults"
)

// Config bounds one retry loop.
type Config struct {
	// MaxRetries is how many times a failed call is re-attempted. 0 means
	// one attempt, no retries.
	MaxRetries int
	// BaseBackoff is the wait before the first retry; it doubles per retry.
	BaseBackoff time.Duration
	// MaxBackoff caps the doubling.
	MaxBackoff time.Duration
	// MaxJitter is the upper bound of the random slack added to each wait.
	MaxJitter time.Duration
}

// Validate rejects negative bounds.
func (c Config) Validate() error {
	if c.MaxRetries < 0 {
		return errors.New("max retries cannot be negative")
	}
	if c.BaseBackoff < 0 || c.MaxBackoff < 0 || c.MaxJitter < 0 {
		return errors.New("backoff durations cannot be negative")
	}
	return nil
}

// DefaultConfig suits quota-style rate limits, which recover slowly.
func DefaultConfig() Config {
	return Config{
		MaxRetries:  5,
		BaseBackoff: 1 * time.Second,
		MaxBackoff:  60 * time.Second,
		MaxJitter:   500 * time.Millisecond,
	}
}

// wait sleeps out the backoff before the given retry (1-based). The context
// cuts the wait short.
func (c Config) wait(ctx context.Context, retry int) error {
	d := min(c.BaseBackoff<<(retry-1), c.MaxBackoff) + jitter(c.MaxJitter)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func jitter(bound time.Duration) time.Duration {
	if bound <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(bound)))
	if err != nil {
		return 0
	}
	return time.Duration(n.Int64())
}

// Do runs fn until it succeeds, fails permanently, or the retry budget runs
// out. Only errors the retryable predicate accepts are retried; a nil
// predicate retries errors carrying a transient fault.
func Do[T any](ctx context.Context, cfg Config, operation string, retryable func(error) bool, fn func() (T, error)) (T, error) {
	if retryable == nil {
		retryable = faults.IsTransient
	}
	log := clog.FromContext(ctx).With("op", operation)

	var zero T
	for retry := 0; ; retry++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		if !retryable(err) {
			return zero, err
		}
		if retry == cfg.MaxRetries {
			return zero, fmt.Errorf("%s: gave up after %d attempts: %w", operation, retry+1, err)
		}
		log.With("retry", retry+1).With("budget", cfg.MaxRetries).
			Warnf("Transient failure, backing off: %v", err)
		if werr := cfg.wait(ctx, retry+1); werr != nil {
			return zero, werr
		}
	}
}
