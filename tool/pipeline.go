// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package tool

import (
	"regexp"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/stacktree/frame"
	"github.com/cockroachdb/stacktree/logscan"
	"github.com/cockroachdb/stacktree/tracetree"
	"github.com/spf13/cobra"
)

// pipeline holds the flags shared by all commands that aggregate a log file
// into a tree.
type pipeline struct {
	logger Logger

	delimiter    string
	terminal     string
	groupBy      string
	framePattern string
	verbose      bool
}

func (p *pipeline) registerFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(
		&p.delimiter, "delimiter", logscan.DefaultDelimiter,
		"prefix of the lines separating two traces")
	cmd.Flags().StringVar(
		&p.terminal, "terminal", logscan.DefaultTerminal,
		"prefix of the line after which the log is ignored")
	cmd.Flags().StringVar(
		&p.groupBy, "group-by", frame.CallSite,
		"how frames are grouped: call-site (the fragment inside the trailing parentheses) or line")
	cmd.Flags().StringVar(
		&p.framePattern, "frame-pattern", "",
		"regular expression whose first capture group (or whole match) groups frames; overrides --group-by")
	cmd.Flags().BoolVarP(
		&p.verbose, "verbose", "v", false, "log progress")
}

func (p *pipeline) identifier() (frame.Identifier, error) {
	if p.framePattern != "" {
		re, err := regexp.Compile(p.framePattern)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid --frame-pattern")
		}
		return frame.ByPattern(re), nil
	}
	return frame.Parse(p.groupBy)
}

func (p *pipeline) infof(format string, args ...interface{}) {
	if p.verbose {
		p.logger.Infof(format, args...)
	}
}

// build scans the log at path, inserts every trace block into a new tree and
// compresses it. If observe is non-nil it is called for every block before
// the block is inserted.
func (p *pipeline) build(path string, observe func(block []string)) (*tracetree.Tree, error) {
	id, err := p.identifier()
	if err != nil {
		return nil, err
	}
	t := tracetree.New(tracetree.WithIdentifier(id))
	opts := logscan.Options{Delimiter: p.delimiter, Terminal: p.terminal}
	blocks := 0
	err = logscan.ReadFile(path, opts, func(block []string) {
		blocks++
		if observe != nil {
			observe(block)
		}
		t.InsertReversed(block)
	})
	if err != nil {
		return nil, err
	}
	p.infof("%s: scanned %d blocks, %d traces", path, blocks, t.Traces())
	t.Compress()
	p.infof("%s: %s", path, t.Stats())
	return t, nil
}
