/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"prbench.dev/prbench/faults"
)

var errTransient = errors.New("429 slow down")

func fastConfig(retries int) Config {
	return Config{MaxRetries: retries, BaseBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
}

func TestDoSucceedsAfterRetries(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), fastConfig(3), "test", func(error) bool { return true }, func() (string, error) {
		calls++
		if calls < 3 {
			return "", errTransient
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if got != "ok" || calls != 3 {
		t.Errorf("got %q after %d calls", got, calls)
	}
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	permanent := errors.New("400 bad request")
	calls := 0
	_, err := Do(context.Background(), fastConfig(5), "test", func(err error) bool {
		return errors.Is(err, errTransient)
	}, func() (int, error) {
		calls++
		return 0, permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("err = %v, want permanent", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDoExhaustsBudget(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastConfig(2), "test", func(error) bool { return true }, func() (int, error) {
		calls++
		return 0, errTransient
	})
	if !errors.Is(err, errTransient) {
		t.Fatalf("err = %v, want wrapped transient", err)
	}
	if calls != 3 { // initial attempt + 2 retries
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoDefaultsToTransientFaults(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), fastConfig(3), "test", nil, func() (string, error) {
		calls++
		if calls < 2 {
			return "", faults.Transient("test", errTransient)
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if got != "ok" || calls != 2 {
		t.Errorf("got %q after %d calls", got, calls)
	}

	permanent := errors.New("schema mismatch")
	calls = 0
	_, err = Do(context.Background(), fastConfig(3), "test", nil, func() (int, error) {
		calls++
		return 0, permanent
	})
	if !errors.Is(err, permanent) || calls != 1 {
		t.Errorf("non-transient error retried: err = %v after %d calls", err, calls)
	}
}

func TestDoHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := Config{MaxRetries: 5, BaseBackoff: time.Hour, MaxBackoff: time.Hour}
	_, err := Do(ctx, cfg, "test", func(error) bool { return true }, func() (int, error) {
		return 0, errTransient
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if err := (Config{MaxRetries: -1}).Validate(); err == nil {
		t.Error("negative retries accepted")
	}
}
