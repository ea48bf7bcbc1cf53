/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package records

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Validator is implemented by record types that check themselves at the
// parse boundary. Malformed LLM output is rejected here rather than
// propagated.
type Validator interface {
	Validate() error
}

// Writer appends self-contained JSON lines to a file. Each Append marshals
// the record fully before taking the lock and writes it as a single line, so
// concurrent tasks never interleave partial records.
type Writer struct {
	mu sync.Mutex
	f  *os.File
}

// NewWriter opens (or creates) path for appending.
func NewWriter(path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating output dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return &Writer{f: f}, nil
}

// Append validates the record, marshals it, and writes one complete line.
func (w *Writer) Append(rec Validator) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("refusing to write invalid record: %w", err)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}
	data = append(data, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.f.Write(data); err != nil {
		return fmt.Errorf("appending record: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.f.Close()
}

// ReadAll decodes every line of a JSONL file into T, validating each record.
// Consumers join across files by PR number, never by line position.
func ReadAll[T any, PT interface {
	*T
	Validator
}](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode[T, PT](f)
}

// Decode reads JSONL records from r. Each line must be independently
// parseable; a bad line fails the whole read so corruption is surfaced
// rather than silently skipped.
func Decode[T any, PT interface {
	*T
	Validator
}](r io.Reader) ([]T, error) {
	var out []T
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec T
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if err := PT(&rec).Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning records: %w", err)
	}
	return out, nil
}
