/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

// Package main implements the prbench CLI: mining merged pull requests,
// synthesizing question/answer/rubric benchmark items from them, running
// candidate models, grading their answers, and driving multi-turn feedback.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
