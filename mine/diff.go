/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package mine

import (
	"github.com/waigani/diffparser"

	"prbench.dev/prbench/faults"
)

// Stats summarizes a unified diff.
type Stats struct {
	Paths     []string
	Additions int
	Deletions int
}

// DiffStats parses a unified diff and reports the changed paths, in diff
// order, plus added and removed line counts. Deleted files report their
// original path.
func DiffStats(diff string) (Stats, error) {
	parsed, err := diffparser.Parse(diff)
	if err != nil {
		return Stats{}, faults.Wrap(faults.MalformedOutput, "mine.DiffStats", err)
	}

	var stats Stats
	for _, file := range parsed.Files {
		path := file.NewName
		if path == "" {
			path = file.OrigName
		}
		if path != "" {
			stats.Paths = append(stats.Paths, path)
		}
		for _, hunk := range file.Hunks {
			for _, line := range hunk.WholeRange.Lines {
				switch line.Mode {
				case diffparser.ADDED:
					stats.Additions++
				case diffparser.REMOVED:
					stats.Deletions++
				}
			}
		}
	}
	return stats, nil
}
