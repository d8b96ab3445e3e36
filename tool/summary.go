// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package tool

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/cockroachdb/crlib/crhumanize"
	"github.com/cockroachdb/stacktree/tracetree"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// maxTraceDepth bounds the trace depths tracked by the depth histogram.
const maxTraceDepth = 1 << 20

// summaryT implements the summary command.
type summaryT struct {
	Root *cobra.Command

	pipeline
	top      int
	showTree bool
}

func newSummary(logger Logger) *summaryT {
	s := &summaryT{pipeline: pipeline{logger: logger}}
	s.Root = &cobra.Command{
		Use:   "summary <log>",
		Short: "print a summary of the stack traces in a log",
		Long: `
Aggregate the stack traces in a log file and print the number of traces, the
shape of the resulting tree, the hottest leaves (innermost frames) and the
distribution of trace depths.
`,
		Args: cobra.ExactArgs(1),
		RunE: s.run,
	}
	s.registerFlags(s.Root)
	s.Root.Flags().IntVar(
		&s.top, "top", 10, "number of leaves to list (0 lists all)")
	s.Root.Flags().BoolVar(
		&s.showTree, "tree", false, "also print the compressed tree")
	return s
}

// leaf is a leaf of the compressed tree.
type leaf struct {
	node  *tracetree.Node
	depth int
}

func (s *summaryT) run(cmd *cobra.Command, args []string) error {
	depths := hdrhistogram.New(1, maxTraceDepth, 3)
	t, err := s.build(args[0], func(block []string) {
		if len(block) > 0 {
			_ = depths.RecordValue(int64(min(len(block), maxTraceDepth)))
		}
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s\n", t.Stats())
	if depths.TotalCount() > 0 {
		fmt.Fprintf(w, "trace depth: p50=%d p90=%d p99=%d max=%d\n",
			depths.ValueAtQuantile(50), depths.ValueAtQuantile(90),
			depths.ValueAtQuantile(99), depths.Max())
	}
	s.writeLeaves(w, t)
	if s.showTree {
		fmt.Fprintf(w, "\n%s", t)
	}
	return nil
}

// writeLeaves writes a table of the leaves with the highest frequencies.
func (s *summaryT) writeLeaves(w io.Writer, t *tracetree.Tree) {
	var leaves []leaf
	t.Root().Walk(func(n *tracetree.Node, depth int) bool {
		if depth > 0 && n.IsLeaf() {
			leaves = append(leaves, leaf{node: n, depth: depth})
		}
		return true
	})
	if len(leaves) == 0 {
		return
	}
	slices.SortStableFunc(leaves, func(a, b leaf) int {
		return -cmp.Compare(a.node.Frequency(), b.node.Frequency())
	})
	if s.top > 0 && len(leaves) > s.top {
		leaves = leaves[:s.top]
	}

	traces := t.Traces()
	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader([]string{"Traces", "Share", "Depth", "Innermost frame"})
	tbl.SetAutoWrapText(false)
	tbl.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, l := range leaves {
		labels := l.node.Labels()
		tbl.Append([]string{
			string(crhumanize.Count(int64(l.node.Frequency()), crhumanize.Compact)),
			fmt.Sprintf("%.1f%%", 100*float64(l.node.Frequency())/float64(traces)),
			strconv.Itoa(l.depth),
			labels[len(labels)-1],
		})
	}
	tbl.Render()
}
