/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"prbench.dev/prbench/faults"
	"prbench.dev/prbench/worktree"
)

// MaxDepth bounds how deep the rendered hierarchy descends.
const MaxDepth = 3

// ignoredDirs are build and dependency trees that would drown the hierarchy.
var ignoredDirs = map[string]struct{}{
	".git": {}, ".next": {}, "node_modules": {}, "__pycache__": {},
	"venv": {}, ".venv": {}, ".idea": {}, "vendor": {}, "dist": {},
}

// Inspector provides read-only access to one PR's worktree and diff. All
// paths are validated against the worktree root; traversal outside it is a
// not-found fault.
type Inspector struct {
	root string
	diff string
}

// NewInspector binds an inspector to a worktree and the PR's unified diff.
func NewInspector(wt *worktree.Worktree, diff string) *Inspector {
	return &Inspector{root: wt.Root(), diff: diff}
}

// newInspectorAt exists for tests that exercise path validation without a
// real git checkout.
func newInspectorAt(root, diff string) *Inspector {
	return &Inspector{root: root, diff: diff}
}

// resolve ensures path stays inside the worktree root. Absolute paths are
// escapes, not paths to re-root.
func (i *Inspector) resolve(path string) (string, error) {
	if filepath.IsAbs(path) {
		return "", faults.New(faults.NotFound, "tools.ReadFile", "path %q escapes worktree", path)
	}
	full := filepath.Join(i.root, filepath.Clean(path))
	rel, err := filepath.Rel(i.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", faults.New(faults.NotFound, "tools.ReadFile", "path %q escapes worktree", path)
	}
	return full, nil
}

// ReadFile returns the full text content of path.
func (i *Inspector) ReadFile(path string) (string, error) {
	full, err := i.resolve(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", faults.Wrap(faults.NotFound, "tools.ReadFile", err)
	}
	return string(data), nil
}

// ListFiles renders the worktree hierarchy down to MaxDepth: directories
// before files, alphabetical within each level, directories suffixed with
// "/".
func (i *Inspector) ListFiles() (string, error) {
	var lines []string
	if err := walk(i.root, "", 0, &lines); err != nil {
		return "", faults.Wrap(faults.NotFound, "tools.ListFiles", err)
	}
	return strings.Join(lines, "\n"), nil
}

// Diff returns the PR's unified diff.
func (i *Inspector) Diff() string {
	return i.diff
}

func walk(dir, prefix string, depth int, lines *[]string) error {
	if depth >= MaxDepth {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}

	var dirs, files []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if e.IsDir() {
			if _, skip := ignoredDirs[name]; skip {
				continue
			}
			dirs = append(dirs, name)
		} else {
			files = append(files, name)
		}
	}
	sort.Strings(dirs)
	sort.Strings(files)

	for _, name := range dirs {
		rel := name
		if prefix != "" {
			rel = prefix + "/" + name
		}
		*lines = append(*lines, rel+"/")
		if err := walk(filepath.Join(dir, name), rel, depth+1, lines); err != nil {
			return err
		}
	}
	for _, name := range files {
		rel := name
		if prefix != "" {
			rel = prefix + "/" + name
		}
		*lines = append(*lines, rel)
	}
	return nil
}
