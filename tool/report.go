// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package tool

import (
	"bufio"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/stacktree/report"
	"github.com/spf13/cobra"
)

// reportT implements the report command.
type reportT struct {
	Root *cobra.Command

	pipeline
	output string
	title  string
}

func newReport(logger Logger) *reportT {
	r := &reportT{pipeline: pipeline{logger: logger}}
	r.Root = &cobra.Command{
		Use:   "report <log>",
		Short: "render an HTML report of the stack traces in a log",
		Long: `
Aggregate the stack traces in a log file into a tree of shared call paths and
write it as a collapsible HTML document to <log>.html.

Traces are separated by lines starting with the delimiter and the log is read
up to the first line starting with the terminal marker. Frames are printed
innermost first; the report starts at the outermost frames.
`,
		Args: cobra.ExactArgs(1),
		RunE: r.run,
	}
	r.registerFlags(r.Root)
	return r
}

func (r *reportT) registerFlags(cmd *cobra.Command) {
	r.pipeline.registerFlags(cmd)
	cmd.Flags().StringVarP(
		&r.output, "output", "o", "", "path of the report (default <log>.html)")
	cmd.Flags().StringVar(
		&r.title, "title", "", "title of the report (default derived from the log name)")
}

func (r *reportT) run(cmd *cobra.Command, args []string) error {
	path := args[0]
	t, err := r.build(path, nil)
	if err != nil {
		return err
	}

	output := r.output
	if output == "" {
		output = report.OutputPath(path, report.Extension)
	}
	title := r.title
	if title == "" {
		title = report.TitleFor(path)
	}
	if err := writeReport(output, func(w *bufio.Writer) error {
		return report.Render(w, t, report.Options{Title: title})
	}); err != nil {
		return err
	}
	r.infof("wrote %s", output)
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", output)
	return nil
}

// writeReport creates the file at path and fills it using fn. The file is
// removed if fn or any write fails.
func writeReport(path string, fn func(w *bufio.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating report")
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(path)
		}
	}()

	w := bufio.NewWriter(f)
	if err := fn(w); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return errors.Wrapf(err, "writing report")
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "writing report")
	}
	return nil
}
