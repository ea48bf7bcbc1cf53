/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

// Package worktree manages ephemeral git checkouts, one per PR task.
//
// A Manager is bound to a local repository and hands out detached worktrees
// rooted at a requested commit. Ownership is exclusive: a worktree belongs to
// exactly one task for its whole lifetime and is destroyed unconditionally
// when the task ends, whether it succeeded, failed, or was interrupted. The
// scoped form is the one callers should reach for:
//
//	err := mgr.With(ctx, pr.BaseCommit, func(wt *worktree.Worktree) error {
//		// read files under wt.Root()
//		return nil
//	})
//
// Commit resolution goes through go-git; the checkouts themselves are linked
// worktrees created and removed with the git CLI, which go-git does not
// support.
package worktree
