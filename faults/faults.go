/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package faults

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for retry policy and run summaries.
type Kind string

const (
	// Checkout covers bad commits and repository state preventing a worktree.
	Checkout Kind = "checkout"
	// NotFound covers inspection-tool paths that do not exist or escape the
	// worktree root.
	NotFound Kind = "not_found"
	// API covers LLM and source-host call failures, including rate limits.
	API Kind = "api"
	// MalformedOutput covers model responses that do not parse into the
	// expected structure.
	MalformedOutput Kind = "malformed_output"
	// Resource covers disk and filesystem exhaustion.
	Resource Kind = "resource"
	// Unknown is reported for errors that carry no Kind.
	Unknown Kind = "unknown"
)

// Error wraps an underlying error with a Kind and the operation that failed.
// Transient marks failures worth retrying with backoff (rate limits,
// timeouts); everything else fails the PR immediately.
type Error struct {
	Kind      Kind
	Op        string
	Transient bool
	Err       error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error with a formatted message.
func New(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap annotates err with a kind and operation. Returns nil when err is nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Transient annotates err as a retryable API failure.
func Transient(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: API, Op: op, Transient: true, Err: err}
}

// KindOf extracts the Kind from an error chain, or Unknown.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Unknown
}

// IsKind reports whether any error in the chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == kind
}

// IsTransient reports whether the error chain carries a transient failure.
func IsTransient(err error) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Transient
}
