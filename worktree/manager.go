/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package worktree

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/chainguard-dev/clog"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"prbench.dev/prbench/faults"
)

const worktreeDirPrefix = "prbench-wt-"

// Manager creates and destroys ephemeral checkouts of a single repository.
// Each checkout is rooted at one commit and owned exclusively by one task;
// worktrees are never pooled or reused across tasks.
type Manager struct {
	repoPath string
	repo     *gogit.Repository
	baseDir  string
}

// Option configures a Manager.
type Option func(*Manager)

// WithBaseDir places worktrees under dir instead of the system temp dir.
func WithBaseDir(dir string) Option {
	return func(m *Manager) { m.baseDir = dir }
}

// NewManager opens the repository at repoPath and prunes stale worktree
// registrations left behind by earlier interrupted runs.
func NewManager(ctx context.Context, repoPath string, opts ...Option) (*Manager, error) {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, fmt.Errorf("resolving repo path: %w", err)
	}
	repo, err := gogit.PlainOpenWithOptions(abs, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, faults.Wrap(faults.Checkout, "worktree.NewManager",
			fmt.Errorf("opening repository %s: %w", abs, err))
	}

	m := &Manager{repoPath: abs, repo: repo, baseDir: os.TempDir()}
	for _, opt := range opts {
		opt(m)
	}

	if out, err := m.git(ctx, "worktree", "prune"); err != nil {
		clog.FromContext(ctx).With("output", out).Warnf("Failed to prune worktrees: %v", err)
	}
	return m, nil
}

// Worktree is an isolated checkout at one commit. It is valid until Remove.
type Worktree struct {
	mgr    *Manager
	root   string
	commit string
}

// Root returns the absolute path of the checkout.
func (w *Worktree) Root() string { return w.root }

// Commit returns the commit the checkout is rooted at.
func (w *Worktree) Commit() string { return w.commit }

// Create produces a detached checkout of commit under the manager's base
// directory. The caller owns the returned Worktree and must Remove it;
// prefer With, which guarantees removal on every exit path.
func (m *Manager) Create(ctx context.Context, commit string) (*Worktree, error) {
	if _, err := m.repo.CommitObject(plumbing.NewHash(commit)); err != nil {
		return nil, faults.Wrap(faults.Checkout, "worktree.Create",
			fmt.Errorf("commit %s not found in %s: %w", commit, m.repoPath, err))
	}

	dir, err := os.MkdirTemp(m.baseDir, worktreeDirPrefix)
	if err != nil {
		return nil, classifyFS("worktree.Create", err)
	}
	// git worktree add refuses an existing directory; reserve the name, then
	// hand the path to git.
	if err := os.Remove(dir); err != nil {
		return nil, classifyFS("worktree.Create", err)
	}

	clog.FromContext(ctx).With("commit", commit).With("path", dir).Debug("Creating worktree")
	if out, err := m.git(ctx, "worktree", "add", "--detach", dir, commit); err != nil {
		os.RemoveAll(dir)
		return nil, classifyGit("worktree.Create", out, err)
	}

	return &Worktree{mgr: m, root: dir, commit: commit}, nil
}

// Remove tears the checkout down unconditionally. The directory is removed
// even when git refuses, so an interrupted run never leaves orphans on disk.
func (w *Worktree) Remove(ctx context.Context) error {
	if out, err := w.mgr.git(ctx, "worktree", "remove", "--force", w.root); err != nil {
		clog.FromContext(ctx).With("path", w.root).With("output", out).
			Warnf("git worktree remove failed, removing directory directly: %v", err)
		if rmErr := os.RemoveAll(w.root); rmErr != nil {
			return classifyFS("worktree.Remove", rmErr)
		}
		// Leave the stale registration for the next prune.
	}
	return nil
}

// With runs fn against a fresh checkout of commit and removes the checkout
// on every exit path, including when fn returns an error or panics.
func (m *Manager) With(ctx context.Context, commit string, fn func(*Worktree) error) error {
	wt, err := m.Create(ctx, commit)
	if err != nil {
		return err
	}
	defer func() {
		if err := wt.Remove(ctx); err != nil {
			clog.FromContext(ctx).With("commit", commit).Warnf("Failed to remove worktree: %v", err)
		}
	}()
	return fn(wt)
}

func (m *Manager) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", m.repoPath}, args...)...)
	out, err := cmd.CombinedOutput()
	return strings.TrimSpace(string(out)), err
}

func classifyGit(op, output string, err error) error {
	combined := fmt.Errorf("%w: %s", err, output)
	if strings.Contains(output, "No space left on device") {
		return faults.Wrap(faults.Resource, op, combined)
	}
	return faults.Wrap(faults.Checkout, op, combined)
}

// classifyFS maps filesystem failures (ENOSPC, EDQUOT, permissions) to the
// resource kind; they abort the task without retry.
func classifyFS(op string, err error) error {
	return faults.Wrap(faults.Resource, op, err)
}
