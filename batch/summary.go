/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package batch

import (
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"prbench.dev/prbench/faults"
)

// Summary aggregates a run's outcomes by result: successes plus failures per
// fault kind.
type Summary struct {
	Total     int
	Succeeded int
	Failed    map[faults.Kind]int
}

// Summarize tallies the outcomes of one run.
func Summarize[I, T any](outcomes []Outcome[I, T]) Summary {
	s := Summary{Total: len(outcomes), Failed: make(map[faults.Kind]int)}
	for _, o := range outcomes {
		if o.Err == nil {
			s.Succeeded++
			continue
		}
		s.Failed[faults.KindOf(o.Err)]++
	}
	return s
}

// Render writes the summary as a markdown table.
func (s Summary) Render(w io.Writer) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Result", "Count"}),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{Left: tw.On, Top: tw.Off, Right: tw.On, Bottom: tw.Off},
		}),
	)

	if err := table.Append([]string{"succeeded", fmt.Sprintf("%d", s.Succeeded)}); err != nil {
		return err
	}
	kinds := make([]faults.Kind, 0, len(s.Failed))
	for kind := range s.Failed {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	for _, kind := range kinds {
		if err := table.Append([]string{"failed: " + string(kind), fmt.Sprintf("%d", s.Failed[kind])}); err != nil {
			return err
		}
	}
	if err := table.Append([]string{"total", fmt.Sprintf("%d", s.Total)}); err != nil {
		return err
	}
	return table.Render()
}
